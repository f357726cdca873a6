package view

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"cpubars/internal/models"
)

type recordingDisplay struct {
	trees []*Node
	err   error
}

func (r *recordingDisplay) Commit(tree *Node) error {
	if r.err != nil {
		return r.err
	}
	r.trees = append(r.trees, tree)
	return nil
}

func labels(tree *Node) []string {
	var out []string
	for _, bar := range tree.Find("div", ClassBar) {
		out = append(out, bar.Find("label", "")[0].TextContent())
	}
	return out
}

func TestAppOneBarPerSampleInOrder(t *testing.T) {
	tree := App(models.SampleSet{12.5, 3.0, 88.25, 0.0})
	got := labels(tree)
	want := []string{"12.50% usage", "3.00% usage", "88.25% usage", "0.00% usage"}
	if len(got) != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bar %d label = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppFillProportionalToPercent(t *testing.T) {
	tree := App(models.SampleSet{50, 12.5, 100})
	inner := tree.Find("div", ClassBarInner)
	want := []string{"width: 50%", "width: 12.5%", "width: 100%"}
	for i, w := range want {
		if got := inner[i].Attr("style"); got != w {
			t.Fatalf("bar %d style = %q, want %q", i, got, w)
		}
	}
	if ParseWidth(inner[0].Attr("style")) != 50 {
		t.Fatalf("expected 50%% fill to parse back to 50")
	}
}

func TestAppNegativeZero(t *testing.T) {
	tree := App(models.SampleSet{math.Copysign(0, -1)})
	if got := tree.Find("div", ClassBarInner)[0].Attr("style"); got != "width: 0%" {
		t.Fatalf("style = %q, want %q", got, "width: 0%")
	}
	if got := labels(tree)[0]; got != "0.00% usage" {
		t.Fatalf("label = %q, want %q", got, "0.00% usage")
	}
}

func TestAppEmptySampleSetKeepsContainer(t *testing.T) {
	tree := App(models.SampleSet{})
	if tree == nil || tree.Tag != "div" {
		t.Fatalf("expected container div, got %#v", tree)
	}
	if n := len(tree.Find("div", ClassBar)); n != 0 {
		t.Fatalf("expected zero bars, got %d", n)
	}
}

func TestRootReplacesPreviousRender(t *testing.T) {
	display := &recordingDisplay{}
	root := NewRoot(display)

	if err := root.Render(models.SampleSet{10}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := root.Render(models.SampleSet{20, 30}); err != nil {
		t.Fatalf("render: %v", err)
	}

	got := labels(root.Current())
	if len(got) != 2 || got[0] != "20.00% usage" || got[1] != "30.00% usage" {
		t.Fatalf("unexpected final bars: %v", got)
	}
	last := display.trees[len(display.trees)-1]
	if len(labels(last)) != 2 {
		t.Fatalf("display received %d bars, want 2", len(labels(last)))
	}
}

func TestRootRenderIsIdempotent(t *testing.T) {
	display := &recordingDisplay{}
	root := NewRoot(display)
	for i := 0; i < 3; i++ {
		if err := root.Render(models.SampleSet{1, 2}); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if root.Commits() != 1 || len(display.trees) != 1 {
		t.Fatalf("expected a single commit for identical sample sets, got %d", root.Commits())
	}
	if !Equal(App(models.SampleSet{1, 2}), root.Current()) {
		t.Fatalf("current tree differs from a fresh render of the same samples")
	}
}

func TestRootKeepsPreviousTreeOnDisplayError(t *testing.T) {
	display := &recordingDisplay{}
	root := NewRoot(display)
	if err := root.Render(models.SampleSet{5}); err != nil {
		t.Fatalf("render: %v", err)
	}
	display.err = errors.New("gone")
	if err := root.Render(models.SampleSet{6}); err == nil {
		t.Fatalf("expected display error")
	}
	if got := labels(root.Current()); len(got) != 1 || got[0] != "5.00% usage" {
		t.Fatalf("expected previous tree to stay current, got %v", got)
	}
}

func TestHTMLString(t *testing.T) {
	got, err := HTMLString(App(models.SampleSet{50}))
	if err != nil {
		t.Fatalf("HTMLString: %v", err)
	}
	want := `<div><div class="bar"><div class="bar-inner" style="width: 50%"></div><label>50.00% usage</label></div></div>`
	if got != want {
		t.Fatalf("HTMLString =\n%s\nwant\n%s", got, want)
	}
}

func TestHTMLDisplayForwardsBody(t *testing.T) {
	var sent [][]byte
	d := &HTMLDisplay{Sink: func(body []byte) { sent = append(sent, body) }}
	root := NewRoot(d)
	if err := root.Render(models.SampleSet{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(sent) != 1 || string(sent[0]) != "<div></div>" {
		t.Fatalf("unexpected sink payloads: %q", sent)
	}
	if string(d.Body()) != "<div></div>" {
		t.Fatalf("Body() = %q", d.Body())
	}
}

func TestMultiDisplayCommitsAll(t *testing.T) {
	a, b := &recordingDisplay{}, &recordingDisplay{}
	if err := (MultiDisplay{a, nil, b}).Commit(App(models.SampleSet{1})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(a.trees) != 1 || len(b.trees) != 1 {
		t.Fatalf("expected both displays to receive the tree")
	}
}

func TestTerminalDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf, 10)
	if err := d.Commit(App(models.SampleSet{50, 0})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	want := "[#####.....] 50.00% usage\n[..........] 0.00% usage\n"
	if buf.String() != want {
		t.Fatalf("terminal output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTerminalDisplayAppendsWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf, 4)
	if err := d.Commit(App(models.SampleSet{10})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := d.Commit(App(models.SampleSet{20, 30})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	want := "[....] 10.00% usage\n\n[#...] 20.00% usage\n[#...] 30.00% usage\n"
	if buf.String() != want {
		t.Fatalf("piped output =\n%q\nwant\n%q", buf.String(), want)
	}
	if strings.Contains(buf.String(), clearScreen) {
		t.Fatalf("clear sequence written to a non-terminal")
	}
}

func TestDrawBarClamps(t *testing.T) {
	if got := DrawBar(150, 4); got != "[####]" {
		t.Fatalf("DrawBar(150) = %q", got)
	}
	if got := DrawBar(-3, 4); got != "[....]" {
		t.Fatalf("DrawBar(-3) = %q", got)
	}
	if !strings.HasPrefix(DrawBar(25, 4), "[#...") {
		t.Fatalf("DrawBar(25) = %q", DrawBar(25, 4))
	}
}
