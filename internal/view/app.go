package view

import (
	"strconv"

	"cpubars/internal/models"
)

// Class names on the rendered elements.
const (
	ClassBar      = "bar"
	ClassBarInner = "bar-inner"
)

// App builds the container holding one bar per sample, in order.
func App(samples models.SampleSet) *Node {
	bars := samples.Bars()
	children := make([]*Node, 0, len(bars))
	for _, b := range bars {
		children = append(children, BarNode(b))
	}
	return Element("div", nil, children...)
}

// BarNode renders a fill sized to the percentage plus its label.
func BarNode(b models.Bar) *Node {
	return Element("div", map[string]string{"class": ClassBar},
		Element("div", map[string]string{
			"class": ClassBarInner,
			"style": "width: " + FormatPercent(b.Percent) + "%",
		}),
		Element("label", nil, TextNode(b.Label)),
	)
}

// FormatPercent formats a value as the shortest decimal representation,
// e.g. 50 -> "50", 12.5 -> "12.5". Negative zero prints as "0".
func FormatPercent(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
