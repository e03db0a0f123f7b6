package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CheckType is one of the monitored aspects of a website.
type CheckType string

const (
	CheckReachability CheckType = "reachability"
	CheckSSL          CheckType = "ssl"
	CheckBrokenLinks  CheckType = "broken_links"
	CheckLighthouse   CheckType = "lighthouse"
	CheckDomain       CheckType = "domain"
	CheckMixedContent CheckType = "mixed_content"
)

// CheckTypes lists every check type in dashboard order.
var CheckTypes = []CheckType{
	CheckReachability,
	CheckSSL,
	CheckBrokenLinks,
	CheckLighthouse,
	CheckDomain,
	CheckMixedContent,
}

// ParseCheckType accepts both snake_case and kebab-case names.
func ParseCheckType(s string) (CheckType, error) {
	ct := CheckType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range CheckTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unknown check type %q", s)
}

// UpstreamKey is the key used by the health-check API for this check, both in
// the request's checks[] and in result.details.
func (c CheckType) UpstreamKey() string {
	switch c {
	case CheckBrokenLinks:
		return "brokenLinks"
	case CheckMixedContent:
		return "mixedContent"
	default:
		return string(c)
	}
}

type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)

// HealthCheckResult is one evaluation of one check type against one URL,
// flattened for the dashboard. Details holds one of the *Details types below.
type HealthCheckResult struct {
	CheckType  CheckType `json:"checkType"`
	URL        string    `json:"url"`
	CheckedAt  string    `json:"checkedAt"`
	Status     Status    `json:"status"`
	Message    string    `json:"message"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
	Details    any       `json:"details"`
}

// ErrorDetails is the minimal payload of a failed check. Errors is only set
// by the domain check, which reports a list.
type ErrorDetails struct {
	URL       string   `json:"url"`
	CheckedAt string   `json:"checkedAt"`
	Errors    []string `json:"errors,omitempty"`
}

type Redirect struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

type ReachabilityDetails struct {
	HTTPStatus     int             `json:"httpStatus"`
	FinalURL       string          `json:"finalURL"`
	Redirects      []Redirect      `json:"redirects"`
	ResolvedIPs    []string        `json:"resolvedIPs"`
	TLSInfo        json.RawMessage `json:"tlsInfo"`
	ResponseTimeMs int64           `json:"responseTimeMs"`
}

type DomainCoverage struct {
	Covered bool     `json:"covered"`
	Names   []string `json:"names"`
}

type CertificateEntry struct {
	Depth int             `json:"depth"`
	Type  string          `json:"type"`
	Info  json.RawMessage `json:"info"`
}

type SSLDetails struct {
	LeafCertificate json.RawMessage    `json:"leafCertificate"`
	DomainCoverage  DomainCoverage     `json:"domainCoverage"`
	Chain           []CertificateEntry `json:"chain"`
	ChainValid      bool               `json:"chainValid"`
}

const (
	LinkInternal = "internal"
	LinkExternal = "external"
)

// BrokenLinkItem is one broken link found on a scanned page.
type BrokenLinkItem struct {
	URL            string `json:"url"`
	PageURL        string `json:"pageUrl"`
	StatusCode     int    `json:"statusCode"`
	Type           string `json:"type"`
	AnchorText     string `json:"anchorText"`
	Resolved       bool   `json:"resolved"`
	Classification string `json:"classification"`
}

type BrokenLinksDetails struct {
	PagesScanned int              `json:"pagesScanned"`
	LinksChecked int              `json:"linksChecked"`
	TotalBroken  int              `json:"totalBroken"`
	Items        []BrokenLinkItem `json:"items"`
}

type LighthouseDetails struct {
	Strategy   string          `json:"strategy,omitempty"`
	Lighthouse json.RawMessage `json:"lighthouse"`
}

type DomainDetails struct {
	Domain          string          `json:"domain"`
	Registrar       string          `json:"registrar"`
	ExpiresAt       string          `json:"expiresAt"`
	DaysUntilExpiry int             `json:"daysUntilExpiry"`
	Nameservers     []string        `json:"nameservers"`
	DNSRecords      json.RawMessage `json:"dnsRecords"`
}

type MixedContentItem struct {
	URL     string `json:"url"`
	PageURL string `json:"pageUrl"`
	Element string `json:"element"`
}

type MixedContentDetails struct {
	PagesScanned int                `json:"pagesScanned"`
	Count        int                `json:"count"`
	Items        []MixedContentItem `json:"items"`
}
