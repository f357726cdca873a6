// Package models holds the data carried from the feed to the renderer.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned when a feed message is not a JSON array
// of numbers.
var ErrMalformedPayload = errors.New("malformed sample payload")

// SampleSet is one message's per-core CPU utilization, in percent.
// Values are expected in 0..100 but are not clamped.
type SampleSet []float64

// Bar is the rendered projection of one SampleSet entry.
type Bar struct {
	Percent float64
	Label   string
}

// DecodeSampleSet parses a text payload such as "[12.5, 3.0, 88.25, 0.0]".
// A JSON null decodes to an empty set.
func DecodeSampleSet(payload []byte) (SampleSet, error) {
	var values []float64
	if err := json.Unmarshal(payload, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if values == nil {
		values = []float64{}
	}
	return SampleSet(values), nil
}

// FormatLabel renders a percentage with two decimals and a "% usage" suffix.
func FormatLabel(percent float64) string {
	return FormatFixed(percent, 2) + "% usage"
}

var half = big.NewFloat(0.5)

// FormatFixed formats v with exactly digits decimals. The rounding works on
// the exact binary value and breaks ties away from zero, so 0.125 gives
// "0.13". Negative zero prints without a sign.
func FormatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	scale := new(big.Float).SetPrec(0).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))
	// 53 mantissa bits times a power of ten stays well inside 2048 bits, so
	// the product is exact.
	scaled := new(big.Float).SetPrec(2048).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, scale)

	n, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(2048).Sub(scaled, new(big.Float).SetInt(n))
	if frac.Cmp(half) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	text := n.String()
	if digits > 0 {
		if len(text) <= digits {
			text = strings.Repeat("0", digits-len(text)+1) + text
		}
		text = text[:len(text)-digits] + "." + text[len(text)-digits:]
	}
	if v < 0 {
		text = "-" + text
	}
	return text
}

// Bars returns one Bar per entry, in order.
func (s SampleSet) Bars() []Bar {
	bars := make([]Bar, len(s))
	for i, v := range s {
		bars[i] = Bar{Percent: v, Label: FormatLabel(v)}
	}
	return bars
}
