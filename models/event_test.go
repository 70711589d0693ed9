package models

import (
	"encoding/json"
	"testing"
)

func TestParamValue_UnmarshalJSON(t *testing.T) {
	raw := []byte(`{
		"page_location": "https://shop.test/",
		"engagement_time_msec": 10000,
		"value": 99.95,
		"coupon": null
	}`)

	params, err := ParseParams(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := params.Str("page_location"); s == nil || *s != "https://shop.test/" {
		t.Errorf("got string %v", s)
	}
	if i := params.Int64("engagement_time_msec"); i == nil || *i != 10000 {
		t.Errorf("integer JSON numbers must stay integers, got %v", i)
	}
	if params["engagement_time_msec"].Float != nil {
		t.Errorf("integer value must not carry a float representation")
	}
	if f := params.Number("value"); f == nil || *f != 99.95 {
		t.Errorf("got float %v", f)
	}
	if !params["coupon"].IsNull() {
		t.Errorf("null parameter must decode as the null value")
	}
	if s := params.Str("coupon"); s != nil {
		t.Errorf("null parameter must have no string view, got %v", s)
	}
}

func TestParamValue_MarshalRoundTrip(t *testing.T) {
	in := Params{
		"s": StringParam("hello"),
		"i": IntParam(42),
		"f": FloatParam(1.5),
		"n": {},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := ParseParams(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := out.Str("s"); s == nil || *s != "hello" {
		t.Errorf("got %v", s)
	}
	if i := out.Int64("i"); i == nil || *i != 42 {
		t.Errorf("got %v", i)
	}
	if f := out.Number("f"); f == nil || *f != 1.5 {
		t.Errorf("got %v", f)
	}
	if !out["n"].IsNull() {
		t.Errorf("null must round-trip as null")
	}
}

func TestParseParams_Empty(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte("  ")} {
		params, err := ParseParams(raw)
		if err != nil {
			t.Fatalf("empty input must parse: %v", err)
		}
		if params == nil || len(params) != 0 {
			t.Errorf("expected empty non-nil map, got %v", params)
		}
	}
	if _, err := ParseParams([]byte(`{"k": [1,2]}`)); err == nil {
		t.Errorf("array parameter values must be rejected")
	}
}

func TestParams_NumberCoalescesFloatFirst(t *testing.T) {
	p := Params{"v": {Int: int64Ptr(7), Float: floatPtr(7.5)}}
	if f := p.Number("v"); f == nil || *f != 7.5 {
		t.Errorf("float representation must win, got %v", f)
	}

	p = Params{"v": IntParam(7)}
	if f := p.Number("v"); f == nil || *f != 7 {
		t.Errorf("integer must coalesce to numeric, got %v", f)
	}
	if p.NumberOrZero("missing") != 0 {
		t.Errorf("absent key must read as zero")
	}
}

func TestParams_FirstStr(t *testing.T) {
	p := Params{
		"b": StringParam("second"),
		"c": StringParam("third"),
	}
	if s := p.FirstStr("a", "b", "c"); s == nil || *s != "second" {
		t.Errorf("got %v", s)
	}
	if s := p.FirstStr("x", "y"); s != nil {
		t.Errorf("expected nil for all-absent keys, got %v", s)
	}
}

func TestParams_AccessorsReturnCopies(t *testing.T) {
	p := Params{"k": StringParam("original")}
	s := p.Str("k")
	*s = "mutated"
	if got := p.Str("k"); *got != "original" {
		t.Errorf("accessor must not alias map storage, got %q", *got)
	}
}

func TestEvent_SessionKey(t *testing.T) {
	e := Event{VisitorID: "v1", SessionID: "s1"}
	if e.SessionKey() != "v1.s1" {
		t.Errorf("got %s", e.SessionKey())
	}
}

func int64Ptr(i int64) *int64     { return &i }
func floatPtr(f float64) *float64 { return &f }
