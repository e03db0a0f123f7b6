package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/samims/sitepulse/internal/client"
	appErr "github.com/samims/sitepulse/internal/errors"
)

// Upstream is the subset of *client.Client the services depend on.
type Upstream interface {
	Do(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// call issues a management API request and decodes the envelope's data into T.
func call[T any](ctx context.Context, api Upstream, method, path string, body any, query url.Values) (T, error) {
	var out T
	raw, err := api.Do(ctx, method, path, body, query)
	if err != nil {
		return out, err
	}
	data, err := client.DecodeEnvelope(method, path, raw)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %s %s: %v", appErr.ErrMalformedResponse, method, path, err)
	}
	return out, nil
}

// exec is call for endpoints whose data is ignored.
func exec(ctx context.Context, api Upstream, method, path string, body any) error {
	_, err := call[json.RawMessage](ctx, api, method, path, body, nil)
	return err
}

func resourcePath(base, id string, rest ...string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", appErr.NewValidation("id is required")
	}
	parts := append([]string{base, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/"), nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return appErr.NewValidation("invalid URL %q", raw)
	}
	return nil
}

// ValidateEmails requires at least one bare address and rejects display names.
func ValidateEmails(emails []string) error {
	if len(emails) == 0 {
		return appErr.NewValidation("at least one recipient is required")
	}
	for _, e := range emails {
		addr, err := mail.ParseAddress(e)
		if err != nil || addr.Address != strings.TrimSpace(e) {
			return appErr.NewValidation("invalid email address %q", e)
		}
	}
	return nil
}

var _ Upstream = (*client.Client)(nil)
