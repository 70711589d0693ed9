// api/analytics/sessions.go
package analytics

import (
	"sort"

	"cartpulse/api/models"
)

// Engagement thresholds. A session counts as engaged with at least 10 seconds
// of accumulated engagement time or a second pageview.
const (
	engagedMsecThreshold     = 10000
	engagedPageviewThreshold = 2
)

// sessionGroup keeps the events of one (visitor, session-id) pair in
// chronological order. Ties on timestamp keep stable input order so landing
// and exit resolution stays deterministic.
type sessionGroup struct {
	key    string
	events []models.Event
}

// groupEvents buckets events by session key, preserving first-seen group order
// and sorting each group chronologically (stable).
func groupEvents(events []models.Event) []sessionGroup {
	index := make(map[string]int)
	var groups []sessionGroup
	for _, ev := range events {
		key := ev.SessionKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, sessionGroup{key: key})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	for i := range groups {
		g := groups[i].events
		sort.SliceStable(g, func(a, b int) bool { return g[a].Timestamp.Before(g[b].Timestamp) })
	}
	return groups
}

// ReconstructSessions turns a flat window of events into one Session per
// distinct (visitorId, sessionId) pair, resolving attribution for each via the
// given resolver.
func ReconstructSessions(events []models.Event, resolver *AttributionResolver) []models.Session {
	groups := groupEvents(events)
	sessions := make([]models.Session, 0, len(groups))
	for _, g := range groups {
		sessions = append(sessions, buildSession(g, resolver))
	}
	return sessions
}

func buildSession(g sessionGroup, resolver *AttributionResolver) models.Session {
	first := g.events[0]
	last := g.events[len(g.events)-1]

	s := models.Session{
		VisitorID:  first.VisitorID,
		SessionID:  first.SessionID,
		SessionKey: g.key,
		Start:      first.Timestamp,
		End:        last.Timestamp,
		EventCount: len(g.events),

		// Device/geo snapshot from the chronologically earliest event.
		DeviceCategory: first.DeviceCategory,
		DeviceOS:       first.DeviceOS,
		Browser:        first.Browser,
		GeoCountry:     first.GeoCountry,
		GeoRegion:      first.GeoRegion,
		GeoCity:        first.GeoCity,
	}
	s.DurationSeconds = s.End.Sub(s.Start).Seconds()

	var landing, exit *models.Event
	for i := range g.events {
		ev := &g.events[i]
		switch ev.Name {
		case models.EventPageView:
			s.PageviewCount++
			if landing == nil {
				landing = ev
			}
			exit = ev
		case models.EventSessionStart:
			s.HasSessionStart = true
		case models.EventPurchase:
			if tid := ev.Params.Str("transaction_id"); tid != nil && *tid != "" {
				s.TransactionCount++
			}
		}
		s.EngagementMsec += ev.Params.NumberOrZero("engagement_time_msec")
	}
	s.Converted = s.TransactionCount > 0

	if landing != nil {
		s.LandingPageURL = landing.Params.Str("page_location")
		s.LandingPageTitle = landing.Params.Str("page_title")
	}
	if exit != nil {
		s.ExitPageURL = exit.Params.Str("page_location")
	}

	s.IsEngaged = s.EngagementMsec >= engagedMsecThreshold || s.PageviewCount >= engagedPageviewThreshold
	s.BounceLike = s.PageviewCount == 1 && !s.IsEngaged

	s.Attribution = resolver.Resolve(g.events, s.LandingPageURL)
	return s
}
