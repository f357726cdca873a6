package models

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeSampleSet(t *testing.T) {
	set, err := DecodeSampleSet([]byte("[12.5, 3.0, 88.25, 0.0]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{12.5, 3.0, 88.25, 0.0}
	if len(set) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(set))
	}
	for i := range want {
		if set[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, set[i], want[i])
		}
	}
}

func TestDecodeSampleSetEmpty(t *testing.T) {
	for _, payload := range []string{"[]", "null"} {
		set, err := DecodeSampleSet([]byte(payload))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", payload, err)
		}
		if set == nil || len(set) != 0 {
			t.Fatalf("%s: expected empty non-nil set, got %#v", payload, set)
		}
	}
}

func TestDecodeSampleSetMalformed(t *testing.T) {
	for _, payload := range []string{"", "hello", `{"cpus":[1]}`, `["a","b"]`, "[1,"} {
		if _, err := DecodeSampleSet([]byte(payload)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("%q: expected ErrMalformedPayload, got %v", payload, err)
		}
	}
}

func TestFormatLabel(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00% usage"},
		{12.5, "12.50% usage"},
		{88.25, "88.25% usage"},
		{100, "100.00% usage"},
		{3.14159, "3.14% usage"},
		{0.125, "0.13% usage"},
		{12.625, "12.63% usage"},
		{50.875, "50.88% usage"},
		{1.005, "1.00% usage"},
		{0.001, "0.00% usage"},
		{99.999, "100.00% usage"},
		{math.Copysign(0, -1), "0.00% usage"},
		{-0.125, "-0.13% usage"},
	}
	for _, tc := range cases {
		if got := FormatLabel(tc.in); got != tc.want {
			t.Fatalf("FormatLabel(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeNegativeZeroLabel(t *testing.T) {
	set, err := DecodeSampleSet([]byte("[-0]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := set.Bars()[0].Label; got != "0.00% usage" {
		t.Fatalf("label for -0 = %q, want %q", got, "0.00% usage")
	}
}

func TestBarsKeepOrder(t *testing.T) {
	bars := SampleSet{20, 30}.Bars()
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Label != "20.00% usage" || bars[1].Label != "30.00% usage" {
		t.Fatalf("unexpected labels: %q, %q", bars[0].Label, bars[1].Label)
	}
}
