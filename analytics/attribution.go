// api/analytics/attribution.go
package analytics

import (
	"net/url"
	"strings"

	"cartpulse/api/models"
)

// searchEngines maps a host substring to the canonical engine name, checked in
// order. Any referrer host containing one of these substrings classifies as
// organic search traffic.
var searchEngines = []struct {
	substr string
	name   string
}{
	{"google", "google"},
	{"bing", "bing"},
	{"yahoo", "yahoo"},
	{"duckduckgo", "duckduckgo"},
	{"baidu", "baidu"},
	{"yandex", "yandex"},
}

// AttributionResolver derives a single canonical traffic verdict per session
// using a strict first-touch priority cascade:
//
//  1. session_start campaign parameters
//  2. landing-page UTM query parameters
//  3. referrer classification (excluding the site's own domains)
//  4. direct
type AttributionResolver struct {
	// OwnedDomains are hosts treated as internal navigation: a referrer whose
	// host equals one of these (or is a subdomain of one) never attributes.
	OwnedDomains []string
}

// NewAttributionResolver builds a resolver; domains are lower-cased and
// stripped of surrounding whitespace.
func NewAttributionResolver(ownedDomains []string) *AttributionResolver {
	r := &AttributionResolver{}
	for _, d := range ownedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			r.OwnedDomains = append(r.OwnedDomains, d)
		}
	}
	return r
}

// Resolve walks the cascade over the session's chronologically ordered events.
// Exactly one verdict is produced; gclid/dclid prefer tier-1 values over
// tier-2 when both exist.
func (r *AttributionResolver) Resolve(events []models.Event, landingURL *string) models.AttributionVerdict {
	verdict := models.AttributionVerdict{
		SourceType: models.AttributionDirect,
		Source:     models.DirectSource,
		Medium:     models.NoneMedium,
		Campaign:   models.NotSetCampaign,
	}

	// Tier 1: session_start campaign parameters.
	for _, ev := range events {
		if ev.Name != models.EventSessionStart {
			continue
		}
		source := ev.Params.Str("source")
		medium := ev.Params.Str("medium")
		if source == nil && medium == nil {
			continue
		}
		verdict.SourceType = models.AttributionSessionStart
		applyStr(&verdict.Source, source)
		applyStr(&verdict.Medium, medium)
		applyStr(&verdict.Campaign, ev.Params.Str("campaign"))
		verdict.Term = ev.Params.Str("term")
		verdict.Content = ev.Params.Str("content")
		verdict.GclID = ev.Params.Str("gclid")
		verdict.DclID = ev.Params.Str("dclid")
		// Click IDs may still come from the landing URL when the
		// session_start event did not carry them.
		gcl, dcl := landingClickIDs(landingURL)
		if verdict.GclID == nil {
			verdict.GclID = gcl
		}
		if verdict.DclID == nil {
			verdict.DclID = dcl
		}
		return verdict
	}

	// Tier 2: first-pageview UTM parameters.
	if q := landingQuery(landingURL); q != nil {
		utmSource := queryStr(q, "utm_source")
		utmMedium := queryStr(q, "utm_medium")
		if utmSource != nil || utmMedium != nil {
			verdict.SourceType = models.AttributionFirstPageUTM
			applyStr(&verdict.Source, utmSource)
			applyStr(&verdict.Medium, utmMedium)
			applyStr(&verdict.Campaign, queryStr(q, "utm_campaign"))
			verdict.Term = queryStr(q, "utm_term")
			verdict.Content = queryStr(q, "utm_content")
			verdict.GclID = queryStr(q, "gclid")
			verdict.DclID = queryStr(q, "dclid")
			return verdict
		}
	}

	// Tier 3: referrer classification on the first external-referrer pageview.
	for _, ev := range events {
		if ev.Name != models.EventPageView {
			continue
		}
		ref := ev.Params.Str("page_referrer")
		if ref == nil || *ref == "" {
			continue
		}
		host := referrerHost(*ref)
		if host == "" || r.isOwnedHost(host) {
			continue
		}
		verdict.SourceType = models.AttributionReferrer
		if engine := classifySearchEngine(host); engine != "" {
			verdict.Source = engine
			verdict.Medium = "organic"
		} else {
			verdict.Source = host
			verdict.Medium = "referral"
		}
		return verdict
	}

	// Tier 4: direct.
	return verdict
}

func (r *AttributionResolver) isOwnedHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range r.OwnedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func classifySearchEngine(host string) string {
	host = strings.ToLower(host)
	for _, e := range searchEngines {
		if strings.Contains(host, e.substr) {
			return e.name
		}
	}
	return ""
}

func referrerHost(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func landingQuery(landingURL *string) url.Values {
	if landingURL == nil || *landingURL == "" {
		return nil
	}
	u, err := url.Parse(*landingURL)
	if err != nil {
		return nil
	}
	return u.Query()
}

func landingClickIDs(landingURL *string) (gclid, dclid *string) {
	q := landingQuery(landingURL)
	if q == nil {
		return nil, nil
	}
	return queryStr(q, "gclid"), queryStr(q, "dclid")
}

func queryStr(q url.Values, key string) *string {
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// applyStr overwrites dst only when src carries a value, keeping the sentinel
// otherwise.
func applyStr(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
