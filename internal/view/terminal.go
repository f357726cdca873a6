package view

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	clearScreen    = "\x1b[H\x1b[2J"
	defaultColumns = 80
	labelColumns   = len(" 100.00% usage")
)

// TerminalDisplay redraws the bars as text, one line per bar. On a real
// terminal the screen is cleared first and the bar width follows the
// terminal size. When out is not a terminal each commit is appended as a
// new block, separated from the previous one by a blank line.
type TerminalDisplay struct {
	out      io.Writer
	fd       int
	isTTY    bool
	barWidth int
	commits  int
}

// NewTerminalDisplay writes to out. barWidth <= 0 sizes bars to the terminal.
func NewTerminalDisplay(out io.Writer, barWidth int) *TerminalDisplay {
	d := &TerminalDisplay{out: out, fd: -1, barWidth: barWidth}
	if f, ok := out.(*os.File); ok {
		d.fd = int(f.Fd())
		d.isTTY = term.IsTerminal(d.fd)
	}
	return d
}

// Commit redraws the whole screen from tree.
func (d *TerminalDisplay) Commit(tree *Node) error {
	w := bufio.NewWriter(d.out)
	if d.isTTY {
		w.WriteString(clearScreen)
	} else if d.commits > 0 {
		w.WriteString("\n")
	}
	d.commits++
	width := d.width()
	for _, bar := range tree.Find("div", ClassBar) {
		fill := 0.0
		if inner := bar.Find("div", ClassBarInner); len(inner) > 0 {
			fill = ParseWidth(inner[0].Attr("style"))
		}
		label := ""
		if labels := bar.Find("label", ""); len(labels) > 0 {
			label = labels[0].TextContent()
		}
		w.WriteString(DrawBar(fill, width))
		w.WriteString(" ")
		w.WriteString(label)
		w.WriteString("\n")
	}
	return w.Flush()
}

func (d *TerminalDisplay) width() int {
	if d.barWidth > 0 {
		return d.barWidth
	}
	cols := defaultColumns
	if d.isTTY {
		if c, _, err := term.GetSize(d.fd); err == nil && c > 0 {
			cols = c
		}
	}
	w := cols - labelColumns - 2
	if w < 10 {
		w = 10
	}
	return w
}

// DrawBar renders "[####......]" with width inner cells filled to percent.
func DrawBar(percent float64, width int) string {
	if width <= 0 {
		return "[]"
	}
	p := percent
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := int(math.Round(p / 100 * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// ParseWidth extracts the percentage from a "width: N%" style declaration.
func ParseWidth(style string) float64 {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) != "width" {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), "%")
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}
