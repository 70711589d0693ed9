// api/models/event.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ParamValue is a tagged union for event parameter values. At most one of the
// pointers is set for a typed value; all nil means the parameter was present
// but null.
type ParamValue struct {
	Str   *string
	Int   *int64
	Float *float64
}

func StringParam(s string) ParamValue { return ParamValue{Str: &s} }
func IntParam(i int64) ParamValue     { return ParamValue{Int: &i} }
func FloatParam(f float64) ParamValue { return ParamValue{Float: &f} }

// IsNull reports whether the value carries no typed representation.
func (v ParamValue) IsNull() bool {
	return v.Str == nil && v.Int == nil && v.Float == nil
}

// MarshalJSON emits the first non-nil representation, or null.
func (v ParamValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Str != nil:
		return json.Marshal(*v.Str)
	case v.Int != nil:
		return json.Marshal(*v.Int)
	case v.Float != nil:
		return json.Marshal(*v.Float)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, integer, float, or null. Numbers are decoded
// through json.Number so integer-valued parameters keep their integer
// representation instead of collapsing to float64.
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = ParamValue{}
	case string:
		*v = ParamValue{Str: &val}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			*v = ParamValue{Int: &i}
			return nil
		}
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("unparseable numeric parameter %q: %w", val.String(), err)
		}
		*v = ParamValue{Float: &f}
	default:
		return fmt.Errorf("unsupported parameter value type %T", raw)
	}
	return nil
}

// Params is the parameter map attached to a single event.
type Params map[string]ParamValue

// ParseParams decodes a raw JSON object (the warehouse `params` column) into a
// typed parameter map. Empty input yields an empty, non-nil map.
func ParseParams(raw []byte) (Params, error) {
	p := Params{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("malformed event params: %w", err)
	}
	return p, nil
}

// Str returns the string value for key, or nil when absent or non-string.
// The pointer refers to a copy, so callers may mutate it freely.
func (p Params) Str(key string) *string {
	if v, ok := p[key]; ok && v.Str != nil {
		s := *v.Str
		return &s
	}
	return nil
}

// Int64 returns the integer value for key, or nil when absent or non-integer.
func (p Params) Int64(key string) *int64 {
	if v, ok := p[key]; ok && v.Int != nil {
		i := *v.Int
		return &i
	}
	return nil
}

// Number returns the numeric value for key, coalescing the float representation
// first and the integer representation second. Returns nil when neither is set.
func (p Params) Number(key string) *float64 {
	v, ok := p[key]
	if !ok {
		return nil
	}
	if v.Float != nil {
		f := *v.Float
		return &f
	}
	if v.Int != nil {
		f := float64(*v.Int)
		return &f
	}
	return nil
}

// NumberOrZero returns the numeric value for key, treating absent as 0.
func (p Params) NumberOrZero(key string) float64 {
	if f := p.Number(key); f != nil {
		return *f
	}
	return 0
}

// FirstStr returns the first non-nil string value among keys, in order.
func (p Params) FirstStr(keys ...string) *string {
	for _, k := range keys {
		if s := p.Str(k); s != nil {
			return s
		}
	}
	return nil
}

// Event represents a single raw clickstream event row from the warehouse.
type Event struct {
	EventID        string    `json:"eventId"`
	Name           string    `json:"eventName"`
	VisitorID      string    `json:"visitorId"`
	SessionID      string    `json:"sessionId"`
	Timestamp      time.Time `json:"timestamp"`
	Params         Params    `json:"params,omitempty"`
	DeviceCategory string    `json:"deviceCategory"`
	DeviceOS       string    `json:"deviceOs"`
	Browser        string    `json:"browser"`
	GeoCountry     string    `json:"geoCountry"`
	GeoRegion      string    `json:"geoRegion"`
	GeoCity        string    `json:"geoCity"`
}

// SessionKey builds the composite join key shared by the session reconstructor
// and the purchase extractor: visitorId + "." + sessionId.
func (e Event) SessionKey() string {
	return e.VisitorID + "." + e.SessionID
}

// Well-known event names.
const (
	EventPageView     = "page_view"
	EventSessionStart = "session_start"
	EventPurchase     = "purchase"
)
