package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samims/sitepulse/internal/service"
)

type settingRow struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	DateUpdated string `json:"dateUpdated"`
}

func newSettingsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the stored plugin settings",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatJSON, "output format (json or yaml)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List every stored setting (the API key is masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := cliRuntime(cmd)
			if err != nil {
				return err
			}
			deps, err := openCore(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer deps.close()

			rows, err := deps.store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]settingRow, 0, len(rows))
			for _, row := range rows {
				value := service.DecodeValue(row.Value)
				if row.Key == service.KeyAPIKey {
					value = service.MaskAPIKey(row.Value)
				}
				out = append(out, settingRow{
					Key:         row.Key,
					Value:       value,
					DateUpdated: row.DateUpdated.UTC().Format(service.SettingTimeLayout),
				})
			}
			return printValue(cmd.OutOrStdout(), output, out)
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one decoded setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := cliRuntime(cmd)
			if err != nil {
				return err
			}
			deps, err := openCore(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer deps.close()

			// the key is masked from its raw text, whatever it would decode to
			if args[0] == service.KeyAPIKey {
				key, err := deps.settings.APIKey(cmd.Context())
				if err != nil {
					return err
				}
				var value any
				if key != "" {
					value = service.MaskAPIKey(key)
				}
				return printValue(cmd.OutOrStdout(), output, value)
			}

			value, err := deps.settings.Get(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), output, value)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting; an empty value deletes it",
		Long: `Store a setting. The value is stored as given, so "1" and "0" read back
as booleans and numeric text reads back as a number. JSON objects and arrays
are stored verbatim.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := cliRuntime(cmd)
			if err != nil {
				return err
			}
			if args[0] == service.KeyMonitoringURL && args[1] != "" {
				if err := service.ValidateURL(args[1]); err != nil {
					return err
				}
			}
			deps, err := openCore(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer deps.close()

			if err := deps.settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Delete a setting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := cliRuntime(cmd)
			if err != nil {
				return err
			}
			deps, err := openCore(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer deps.close()

			if err := deps.settings.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, set, del)
	return cmd
}
