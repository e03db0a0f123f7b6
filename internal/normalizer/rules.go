package normalizer

import (
	"encoding/json"

	"github.com/samims/sitepulse/internal/model"
)

// rule describes how one check type is flattened.
type rule struct {
	okMessage   string
	failMessage string
	// listErrors marks checks that report meta.errors[] instead of a scalar
	// error. Only the domain check does this.
	listErrors bool
	details    func(detail json.RawMessage, meta json.RawMessage, opts Options) (any, error)
}

var rules = map[model.CheckType]rule{
	model.CheckReachability: {
		okMessage:   "Website is reachable",
		failMessage: "Website reachability issues detected!",
		details:     reachabilityDetails,
	},
	model.CheckSSL: {
		okMessage:   "SSL certificate is valid",
		failMessage: "SSL certificate issues detected!",
		details:     sslDetails,
	},
	model.CheckBrokenLinks: {
		okMessage:   "No broken links found",
		failMessage: "Broken links detected!",
		details:     brokenLinksDetails,
	},
	model.CheckLighthouse: {
		okMessage:   "Lighthouse audit completed",
		failMessage: "Lighthouse audit reported issues!",
		details:     lighthouseDetails,
	},
	model.CheckDomain: {
		okMessage:   "Domain is healthy",
		failMessage: "Domain issues detected!",
		listErrors:  true,
		details:     domainDetails,
	},
	model.CheckMixedContent: {
		okMessage:   "No mixed content detected",
		failMessage: "Mixed content detected!",
		details:     mixedContentDetails,
	},
}

// Messages returns the fixed success and failure messages of a check type.
func Messages(ct model.CheckType) (ok, fail string) {
	r := rules[ct]
	return r.okMessage, r.failMessage
}

func reachabilityDetails(_, meta json.RawMessage, _ Options) (any, error) {
	var m struct {
		HTTPStatus     int              `json:"httpStatus"`
		FinalURL       string           `json:"finalURL"`
		Redirects      []model.Redirect `json:"redirects"`
		ResolvedIPs    []string         `json:"resolvedIPs"`
		TLSInfo        json.RawMessage  `json:"tlsInfo"`
		ResponseTimeMs float64          `json:"responseTimeMs"`
	}
	if err := decodeMeta(meta, &m); err != nil {
		return nil, err
	}
	return model.ReachabilityDetails{
		HTTPStatus:     m.HTTPStatus,
		FinalURL:       m.FinalURL,
		Redirects:      nonNil(m.Redirects),
		ResolvedIPs:    nonNil(m.ResolvedIPs),
		TLSInfo:        m.TLSInfo,
		ResponseTimeMs: int64(m.ResponseTimeMs),
	}, nil
}

func sslDetails(_, meta json.RawMessage, _ Options) (any, error) {
	var m struct {
		Chain []struct {
			Depth *int            `json:"depth"`
			Type  string          `json:"type"`
			Info  json.RawMessage `json:"info"`
		} `json:"chain"`
		DomainCoverage struct {
			Covered *bool    `json:"covered"`
			Names   []string `json:"names"`
		} `json:"domainCoverage"`
		ChainValid *bool `json:"chainValid"`
	}
	if err := decodeMeta(meta, &m); err != nil {
		return nil, err
	}

	out := model.SSLDetails{
		DomainCoverage: model.DomainCoverage{
			Covered: boolOr(m.DomainCoverage.Covered, true),
			Names:   nonNil(m.DomainCoverage.Names),
		},
		Chain:      make([]model.CertificateEntry, 0, len(m.Chain)),
		ChainValid: boolOr(m.ChainValid, true),
	}
	for _, c := range m.Chain {
		depth := 0
		if c.Depth != nil {
			depth = *c.Depth
		}
		out.Chain = append(out.Chain, model.CertificateEntry{Depth: depth, Type: c.Type, Info: c.Info})
		if out.LeafCertificate == nil && c.Depth != nil && *c.Depth == 0 && c.Type == "leaf" {
			out.LeafCertificate = c.Info
		}
	}
	return out, nil
}

func brokenLinksDetails(_, meta json.RawMessage, _ Options) (any, error) {
	var m struct {
		PagesScanned int `json:"pagesScanned"`
		LinksChecked int `json:"linksChecked"`
		BrokenLinks  []struct {
			PageURL string `json:"pageUrl"`
			Items   []struct {
				URL            string `json:"url"`
				PageURL        string `json:"pageUrl"`
				StatusCode     int    `json:"statusCode"`
				External       truthy `json:"external"`
				AnchorText     string `json:"anchorText"`
				Resolved       truthy `json:"resolved"`
				Classification string `json:"classification"`
			} `json:"items"`
		} `json:"brokenLinks"`
	}
	if err := decodeMeta(meta, &m); err != nil {
		return nil, err
	}

	items := []model.BrokenLinkItem{}
	for _, page := range m.BrokenLinks {
		for _, it := range page.Items {
			linkType := model.LinkInternal
			if it.External {
				linkType = model.LinkExternal
			}
			pageURL := it.PageURL
			if pageURL == "" {
				pageURL = page.PageURL
			}
			items = append(items, model.BrokenLinkItem{
				URL:            it.URL,
				PageURL:        pageURL,
				StatusCode:     it.StatusCode,
				Type:           linkType,
				AnchorText:     it.AnchorText,
				Resolved:       bool(it.Resolved),
				Classification: it.Classification,
			})
		}
	}

	return model.BrokenLinksDetails{
		PagesScanned: m.PagesScanned,
		LinksChecked: m.LinksChecked,
		TotalBroken:  len(items),
		Items:        items,
	}, nil
}

// lighthouseDetails passes the upstream block through untouched.
func lighthouseDetails(detail, _ json.RawMessage, opts Options) (any, error) {
	return model.LighthouseDetails{Strategy: opts.Strategy, Lighthouse: detail}, nil
}

func domainDetails(_, meta json.RawMessage, _ Options) (any, error) {
	var m struct {
		Domain          string          `json:"domain"`
		Registrar       string          `json:"registrar"`
		ExpiresAt       flexString      `json:"expiresAt"`
		DaysUntilExpiry int             `json:"daysUntilExpiry"`
		Nameservers     []string        `json:"nameservers"`
		DNSRecords      json.RawMessage `json:"dnsRecords"`
	}
	if err := decodeMeta(meta, &m); err != nil {
		return nil, err
	}
	return model.DomainDetails{
		Domain:          m.Domain,
		Registrar:       m.Registrar,
		ExpiresAt:       string(m.ExpiresAt),
		DaysUntilExpiry: m.DaysUntilExpiry,
		Nameservers:     nonNil(m.Nameservers),
		DNSRecords:      m.DNSRecords,
	}, nil
}

func mixedContentDetails(_, meta json.RawMessage, _ Options) (any, error) {
	var m struct {
		PagesScanned int                      `json:"pagesScanned"`
		Items        []model.MixedContentItem `json:"items"`
	}
	if err := decodeMeta(meta, &m); err != nil {
		return nil, err
	}
	return model.MixedContentDetails{
		PagesScanned: m.PagesScanned,
		Count:        len(m.Items),
		Items:        nonNil(m.Items),
	}, nil
}
