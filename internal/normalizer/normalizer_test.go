package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

func envelopeFor(ct model.CheckType, detail string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"url": "https://example.com",
		"checkedAt": "2024-05-01T10:00:00Z",
		"result": {
			"summary": {"ok": true, "message": "done"},
			"details": {%q: %s},
			"durationMs": 1234.6
		}
	}`, ct.UpstreamKey(), detail))
}

func TestNormalize_ErrorShortCircuits(t *testing.T) {
	for _, ct := range model.CheckTypes {
		t.Run(string(ct), func(t *testing.T) {
			// meta has the wrong shape for every check; it must not be read
			raw := envelopeFor(ct, `{"ok": true, "error": "SSL handshake failed", "meta": {"chain": 5, "brokenLinks": "x", "errors": 7, "items": 1, "redirects": 2}}`)

			got, err := Normalize(ct, raw, Options{})
			require.NoError(t, err)

			assert.Equal(t, model.StatusError, got.Status)
			assert.Equal(t, "SSL handshake failed", got.Message)
			assert.Equal(t, "SSL handshake failed", got.Error)
			assert.Equal(t, model.ErrorDetails{URL: "https://example.com", CheckedAt: "2024-05-01T10:00:00Z"}, got.Details)
		})
	}
}

func TestNormalize_OKMessages(t *testing.T) {
	want := map[model.CheckType]string{
		model.CheckReachability: "Website is reachable",
		model.CheckSSL:          "SSL certificate is valid",
		model.CheckBrokenLinks:  "No broken links found",
		model.CheckLighthouse:   "Lighthouse audit completed",
		model.CheckDomain:       "Domain is healthy",
		model.CheckMixedContent: "No mixed content detected",
	}
	for _, ct := range model.CheckTypes {
		t.Run(string(ct), func(t *testing.T) {
			got, err := Normalize(ct, envelopeFor(ct, `{"ok": true, "meta": {}}`), Options{})
			require.NoError(t, err)

			assert.Equal(t, model.StatusOK, got.Status)
			assert.Equal(t, want[ct], got.Message)
			assert.Empty(t, got.Error)
			assert.Equal(t, ct, got.CheckType)
			assert.Equal(t, "https://example.com", got.URL)
			assert.Equal(t, int64(1235), got.DurationMs)
		})
	}
}

func TestNormalize_FailMessage(t *testing.T) {
	got, err := Normalize(model.CheckReachability, envelopeFor(model.CheckReachability, `{"ok": false, "meta": {"httpStatus": 503}}`), Options{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusError, got.Status)
	assert.Equal(t, "Website reachability issues detected!", got.Message)
	assert.Equal(t, 503, got.Details.(model.ReachabilityDetails).HTTPStatus)
}

func TestNormalize_MissingDetailDefaults(t *testing.T) {
	raw := json.RawMessage(`{"url": "https://example.com", "result": {}}`)

	got, err := Normalize(model.CheckReachability, raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusError, got.Status)
	d := got.Details.(model.ReachabilityDetails)
	assert.Equal(t, 0, d.HTTPStatus)
	assert.Equal(t, "", d.FinalURL)
	assert.Equal(t, []model.Redirect{}, d.Redirects)
	assert.Equal(t, []string{}, d.ResolvedIPs)
	assert.Nil(t, d.TLSInfo)
}

func TestNormalize_Reachability(t *testing.T) {
	raw := envelopeFor(model.CheckReachability, `{"ok": true, "meta": {
		"httpStatus": 200,
		"finalURL": "https://www.example.com/",
		"redirects": [{"url": "http://example.com", "statusCode": 301}],
		"resolvedIPs": ["93.184.216.34"],
		"tlsInfo": {"protocol": "TLSv1.3"},
		"responseTimeMs": 87.2
	}}`)

	got, err := Normalize(model.CheckReachability, raw, Options{})
	require.NoError(t, err)

	d := got.Details.(model.ReachabilityDetails)
	assert.Equal(t, 200, d.HTTPStatus)
	assert.Equal(t, "https://www.example.com/", d.FinalURL)
	assert.Equal(t, []model.Redirect{{URL: "http://example.com", StatusCode: 301}}, d.Redirects)
	assert.Equal(t, []string{"93.184.216.34"}, d.ResolvedIPs)
	assert.JSONEq(t, `{"protocol": "TLSv1.3"}`, string(d.TLSInfo))
	assert.Equal(t, int64(87), d.ResponseTimeMs)
}

func TestNormalize_SSLLeafLookup(t *testing.T) {
	tests := []struct {
		name      string
		chain     string
		wantLeaf  string
		wantChain int
	}{
		{
			name:      "leaf present",
			chain:     `[{"depth": 1, "type": "intermediate", "info": {"cn": "R3"}}, {"depth": 0, "type": "leaf", "info": {"cn": "example.com"}}]`,
			wantLeaf:  `{"cn": "example.com"}`,
			wantChain: 2,
		},
		{
			name:      "no leaf at depth zero",
			chain:     `[{"depth": 0, "type": "intermediate", "info": {"cn": "R3"}}, {"depth": 1, "type": "leaf", "info": {"cn": "example.com"}}]`,
			wantChain: 2,
		},
		{
			name:      "depth missing",
			chain:     `[{"type": "leaf", "info": {"cn": "example.com"}}]`,
			wantChain: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := envelopeFor(model.CheckSSL, `{"ok": true, "meta": {"chain": `+tt.chain+`}}`)
			got, err := Normalize(model.CheckSSL, raw, Options{})
			require.NoError(t, err)

			d := got.Details.(model.SSLDetails)
			if tt.wantLeaf == "" {
				assert.Nil(t, d.LeafCertificate)
			} else {
				assert.JSONEq(t, tt.wantLeaf, string(d.LeafCertificate))
			}
			assert.Len(t, d.Chain, tt.wantChain)
		})
	}
}

func TestNormalize_SSLDefaults(t *testing.T) {
	got, err := Normalize(model.CheckSSL, envelopeFor(model.CheckSSL, `{"ok": true}`), Options{})
	require.NoError(t, err)

	d := got.Details.(model.SSLDetails)
	assert.True(t, d.DomainCoverage.Covered)
	assert.True(t, d.ChainValid)
	assert.Equal(t, []string{}, d.DomainCoverage.Names)
	assert.Empty(t, d.Chain)
	assert.Nil(t, d.LeafCertificate)
}

func TestNormalize_BrokenLinksFlattening(t *testing.T) {
	t.Run("single external item", func(t *testing.T) {
		raw := envelopeFor(model.CheckBrokenLinks, `{"ok": false, "meta": {"brokenLinks": [{"items": [{"url": "a", "external": true}]}]}}`)
		got, err := Normalize(model.CheckBrokenLinks, raw, Options{})
		require.NoError(t, err)

		d := got.Details.(model.BrokenLinksDetails)
		require.Len(t, d.Items, 1)
		assert.Equal(t, "a", d.Items[0].URL)
		assert.Equal(t, model.LinkExternal, d.Items[0].Type)
		assert.Equal(t, 1, d.TotalBroken)
		assert.Equal(t, "Broken links detected!", got.Message)
	})

	t.Run("several pages", func(t *testing.T) {
		raw := envelopeFor(model.CheckBrokenLinks, `{"ok": false, "meta": {
			"pagesScanned": 12,
			"linksChecked": 340,
			"brokenLinks": [
				{"pageUrl": "https://example.com/", "items": [
					{"url": "https://example.com/missing", "statusCode": 404, "anchorText": "Docs", "external": 0},
					{"url": "https://other.org/x", "statusCode": 500, "external": "1", "resolved": 1, "classification": "server_error"}
				]},
				{"pageUrl": "https://example.com/blog", "items": [
					{"url": "https://example.com/old", "pageUrl": "https://example.com/blog/post", "statusCode": 410}
				]},
				{"items": []}
			]
		}}`)
		got, err := Normalize(model.CheckBrokenLinks, raw, Options{})
		require.NoError(t, err)

		d := got.Details.(model.BrokenLinksDetails)
		assert.Equal(t, 12, d.PagesScanned)
		assert.Equal(t, 340, d.LinksChecked)
		require.Len(t, d.Items, 3)

		assert.Equal(t, model.BrokenLinkItem{
			URL: "https://example.com/missing", PageURL: "https://example.com/", StatusCode: 404,
			Type: model.LinkInternal, AnchorText: "Docs",
		}, d.Items[0])
		assert.Equal(t, model.LinkExternal, d.Items[1].Type)
		assert.True(t, d.Items[1].Resolved)
		assert.Equal(t, "server_error", d.Items[1].Classification)
		assert.Equal(t, "https://example.com/blog/post", d.Items[2].PageURL)
	})

	t.Run("no broken links", func(t *testing.T) {
		got, err := Normalize(model.CheckBrokenLinks, envelopeFor(model.CheckBrokenLinks, `{"ok": true, "meta": {}}`), Options{})
		require.NoError(t, err)

		d := got.Details.(model.BrokenLinksDetails)
		assert.Equal(t, []model.BrokenLinkItem{}, d.Items)
		assert.Zero(t, d.TotalBroken)
	})
}

func TestNormalize_LighthousePassthrough(t *testing.T) {
	block := `{"ok": true, "meta": {"scores": {"performance": 0.93, "seo": 1}}}`
	got, err := Normalize(model.CheckLighthouse, envelopeFor(model.CheckLighthouse, block), Options{Strategy: model.StrategyDesktop})
	require.NoError(t, err)

	d := got.Details.(model.LighthouseDetails)
	assert.Equal(t, model.StrategyDesktop, d.Strategy)
	assert.JSONEq(t, block, string(d.Lighthouse))
}

func TestNormalize_DomainErrorList(t *testing.T) {
	raw := envelopeFor(model.CheckDomain, `{"ok": false, "meta": {"errors": ["WHOIS lookup timed out", "No NS records"], "registrar": "ignored"}}`)

	got, err := Normalize(model.CheckDomain, raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusError, got.Status)
	assert.Equal(t, "WHOIS lookup timed out", got.Message)
	d := got.Details.(model.ErrorDetails)
	assert.Equal(t, []string{"WHOIS lookup timed out", "No NS records"}, d.Errors)
}

func TestNormalize_DomainDetails(t *testing.T) {
	raw := envelopeFor(model.CheckDomain, `{"ok": true, "meta": {
		"domain": "example.com",
		"registrar": "IANA",
		"expiresAt": "2030-08-13T04:00:00Z",
		"daysUntilExpiry": 1900,
		"nameservers": ["a.iana-servers.net"],
		"errors": []
	}}`)

	got, err := Normalize(model.CheckDomain, raw, Options{})
	require.NoError(t, err)

	d := got.Details.(model.DomainDetails)
	assert.Equal(t, "IANA", d.Registrar)
	assert.Equal(t, "2030-08-13T04:00:00Z", d.ExpiresAt)
	assert.Equal(t, 1900, d.DaysUntilExpiry)
	assert.Equal(t, []string{"a.iana-servers.net"}, d.Nameservers)
}

func TestNormalize_MixedContent(t *testing.T) {
	raw := envelopeFor(model.CheckMixedContent, `{"ok": false, "meta": {"pagesScanned": 3, "items": [{"url": "http://cdn.example.com/a.js", "pageUrl": "https://example.com/", "element": "script"}]}}`)

	got, err := Normalize(model.CheckMixedContent, raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Mixed content detected!", got.Message)
	d := got.Details.(model.MixedContentDetails)
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, "script", d.Items[0].Element)
}

func TestNormalize_MalformedShape(t *testing.T) {
	tests := []struct {
		name string
		ct   model.CheckType
		raw  string
	}{
		{name: "not json", ct: model.CheckSSL, raw: `not json`},
		{name: "details not an object", ct: model.CheckSSL, raw: `{"result": {"details": {"ssl": [1]}}}`},
		{name: "chain wrong type", ct: model.CheckSSL, raw: `{"result": {"details": {"ssl": {"ok": true, "meta": {"chain": "x"}}}}}`},
		{name: "domain errors wrong type", ct: model.CheckDomain, raw: `{"result": {"details": {"domain": {"meta": {"errors": [1]}}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.ct, json.RawMessage(tt.raw), Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErr.ErrMalformedResponse))
		})
	}
}

func TestDegradedAndWarning(t *testing.T) {
	d := Degraded(model.CheckSSL, "https://example.com", errors.New("connection refused"))
	assert.Equal(t, model.StatusError, d.Status)
	assert.Equal(t, "connection refused", d.Message)
	assert.NotEmpty(t, d.CheckedAt)

	w := Warning(model.CheckDomain, MissingURLMessage)
	assert.Equal(t, model.StatusWarning, w.Status)
	assert.Equal(t, MissingURLMessage, w.Message)
}
