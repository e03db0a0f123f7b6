package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samims/sitepulse/internal/kafka"
	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/service"
)

func newCheckCmd() *cobra.Command {
	var (
		strategy string
		force    bool
		strict   bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "check <type>...",
		Short: "Run health checks against the monitoring URL",
		Long: `Run one or more health checks through the upstream API and print the
normalized results. Types: reachability, ssl, broken-links, lighthouse,
domain, mixed-content, or "all".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseCheckArgs(args)
			if err != nil {
				return err
			}

			cfg, l, err := cliRuntime(cmd)
			if err != nil {
				return err
			}
			deps, err := openCore(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer deps.close()

			// one-shot runs never alert
			checks := service.NewHealthCheckService(deps.api, deps.settings, kafka.NopPublisher{}, cfg.MonitoringURLOverride, l)

			results := make([]model.HealthCheckResult, 0, len(types))
			failed := 0
			for _, ct := range types {
				res := checks.Run(cmd.Context(), service.CheckRequest{Type: ct, Strategy: strategy, ForceFetch: force})
				if res.Status != model.StatusOK {
					failed++
				}
				results = append(results, res)
			}

			var out any = results
			if len(results) == 1 {
				out = results[0]
			}
			if err := printValue(cmd.OutOrStdout(), output, out); err != nil {
				return err
			}
			if strict && failed > 0 {
				return fmt.Errorf("%d of %d checks not ok", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "lighthouse strategy (mobile or desktop)")
	cmd.Flags().BoolVar(&force, "force", false, "bypass the upstream result cache")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a check is not ok")
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format (json or yaml)")
	return cmd
}

func parseCheckArgs(args []string) ([]model.CheckType, error) {
	var types []model.CheckType
	seen := make(map[model.CheckType]bool)
	for _, arg := range args {
		if arg == "all" {
			for _, ct := range model.CheckTypes {
				if !seen[ct] {
					seen[ct] = true
					types = append(types, ct)
				}
			}
			continue
		}
		ct, err := model.ParseCheckType(arg)
		if err != nil {
			return nil, err
		}
		if !seen[ct] {
			seen[ct] = true
			types = append(types, ct)
		}
	}
	return types, nil
}
