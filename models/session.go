// api/models/session.go
package models

import "time"

// AttributionSourceType identifies which tier of the attribution cascade
// produced a session's verdict.
type AttributionSourceType string

const (
	AttributionSessionStart AttributionSourceType = "session_start"
	AttributionFirstPageUTM AttributionSourceType = "first_pageview_utm"
	AttributionReferrer     AttributionSourceType = "referrer"
	AttributionDirect       AttributionSourceType = "direct"
)

// Sentinel values used when nothing resolves for a field.
const (
	DirectSource   = "(direct)"
	NoneMedium     = "(none)"
	NotSetCampaign = "(not set)"
)

// AttributionVerdict is the single canonical marketing attribution assigned to
// a session. Source, Medium and Campaign always hold a value (sentinels when
// nothing resolved); the remaining fields are nil when absent.
type AttributionVerdict struct {
	SourceType AttributionSourceType `json:"sourceType"`
	Source     string                `json:"source"`
	Medium     string                `json:"medium"`
	Campaign   string                `json:"campaign"`
	Term       *string               `json:"term,omitempty"`
	Content    *string               `json:"content,omitempty"`
	GclID      *string               `json:"gclid,omitempty"`
	DclID      *string               `json:"dclid,omitempty"`
}

// Session is the derived per-(visitor, session-id) record reconstructed from
// the raw event stream. Device and geo fields are a snapshot of the
// chronologically earliest event in the group.
type Session struct {
	VisitorID       string    `json:"visitorId"`
	SessionID       string    `json:"sessionId"`
	SessionKey      string    `json:"sessionKey"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds float64   `json:"durationSeconds"`
	EventCount      int       `json:"eventCount"`
	PageviewCount   int       `json:"pageviewCount"`
	EngagementMsec  float64   `json:"engagementMsec"`
	IsEngaged       bool      `json:"isEngaged"`
	BounceLike      bool      `json:"bounceLike"`
	HasSessionStart bool      `json:"hasSessionStart"`

	LandingPageURL   *string `json:"landingPageUrl,omitempty"`
	LandingPageTitle *string `json:"landingPageTitle,omitempty"`
	ExitPageURL      *string `json:"exitPageUrl,omitempty"`

	Attribution AttributionVerdict `json:"attribution"`

	DeviceCategory string `json:"deviceCategory"`
	DeviceOS       string `json:"deviceOs"`
	Browser        string `json:"browser"`
	GeoCountry     string `json:"geoCountry"`
	GeoRegion      string `json:"geoRegion"`
	GeoCity        string `json:"geoCity"`

	TransactionCount int  `json:"transactionCount"`
	Converted        bool `json:"converted"`
}
