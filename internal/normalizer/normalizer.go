// Package normalizer flattens upstream healthcheck envelopes into the
// HealthCheckResult consumed by the dashboard.
//
// Field extraction defaults rather than validates: missing fields become zero
// values, empty lists or the documented defaults. Only a payload whose shape
// contradicts the expected types makes Normalize fail, and callers degrade
// that into an error result with Degraded.
package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

// MissingURLMessage is shown when no monitoring URL is configured.
const MissingURLMessage = "Monitoring URL is not set. Please configure it in the plugin settings."

// Options carries request parameters some checks echo back.
type Options struct {
	// Strategy is the lighthouse strategy forwarded upstream.
	Strategy string
}

// Normalize maps one upstream healthcheck response to a flat result for ct.
func Normalize(ct model.CheckType, raw json.RawMessage, opts Options) (model.HealthCheckResult, error) {
	r, ok := rules[ct]
	if !ok {
		return model.HealthCheckResult{}, appErr.NewValidation("unknown check type %q", ct)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.HealthCheckResult{}, fmt.Errorf("%w: healthcheck envelope: %v", appErr.ErrMalformedResponse, err)
	}

	detailRaw := env.Result.Details[ct.UpstreamKey()]
	var detail checkDetail
	if err := decodeMeta(detailRaw, &detail); err != nil {
		return model.HealthCheckResult{}, fmt.Errorf("%w: %s details: %v", appErr.ErrMalformedResponse, ct, err)
	}

	res := model.HealthCheckResult{
		CheckType:  ct,
		URL:        string(env.URL),
		CheckedAt:  string(env.CheckedAt),
		DurationMs: int64(math.Round(env.Result.DurationMs)),
	}

	// a scalar error wins before meta is looked at
	if msg := errorText(detail.Error); msg != "" {
		return failed(res, msg, nil), nil
	}

	if r.listErrors {
		var m struct {
			Errors []string `json:"errors"`
		}
		if err := decodeMeta(detail.Meta, &m); err != nil {
			return model.HealthCheckResult{}, fmt.Errorf("%w: %s errors: %v", appErr.ErrMalformedResponse, ct, err)
		}
		if len(m.Errors) > 0 {
			return failed(res, m.Errors[0], m.Errors), nil
		}
	}

	details, err := r.details(detailRaw, detail.Meta, opts)
	if err != nil {
		return model.HealthCheckResult{}, fmt.Errorf("%w: %s meta: %v", appErr.ErrMalformedResponse, ct, err)
	}
	res.Details = details

	if detail.OK {
		res.Status = model.StatusOK
		res.Message = r.okMessage
	} else {
		res.Status = model.StatusError
		res.Message = r.failMessage
	}
	return res, nil
}

func failed(res model.HealthCheckResult, msg string, errs []string) model.HealthCheckResult {
	res.Status = model.StatusError
	res.Message = msg
	res.Error = msg
	res.Details = model.ErrorDetails{URL: res.URL, CheckedAt: res.CheckedAt, Errors: errs}
	return res
}

// Degraded builds the error result shown when calling upstream or normalizing
// its answer failed.
func Degraded(ct model.CheckType, url string, err error) model.HealthCheckResult {
	checkedAt := time.Now().UTC().Format(time.RFC3339)
	return model.HealthCheckResult{
		CheckType: ct,
		URL:       url,
		CheckedAt: checkedAt,
		Status:    model.StatusError,
		Message:   err.Error(),
		Error:     err.Error(),
		Details:   model.ErrorDetails{URL: url, CheckedAt: checkedAt},
	}
}

// Warning builds a result for a check that was not run.
func Warning(ct model.CheckType, msg string) model.HealthCheckResult {
	return model.HealthCheckResult{
		CheckType: ct,
		Status:    model.StatusWarning,
		Message:   msg,
	}
}
