package render

import (
	"testing"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/reconcile"
)

func widths(pcts ...int) []reconcile.Descriptor {
	out := make([]reconcile.Descriptor, len(pcts))
	for i, p := range pcts {
		out[i] = reconcile.Descriptor{Name: string(rune('a' + i)), WidthPercent: p}
	}
	return out
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name  string
		pcts  []int
		total int
		want  []Span
	}{
		{"all fixed", []int{25, 75}, 200, []Span{{0, 50}, {50, 150}}},
		{"auto share remainder", []int{50, 0, 0}, 100, []Span{{0, 50}, {50, 25}, {75, 25}}},
		{"auto distributes leftover", []int{0, 0, 0}, 10, []Span{{0, 4}, {4, 3}, {7, 3}}},
		{"overcommitted", []int{80, 40, 0}, 100, []Span{{0, 80}, {80, 40}, {120, 0}}},
		{"empty", nil, 100, []Span{}},
		{"no room", []int{0}, 0, []Span{{0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Columns(widths(tt.pcts...), tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAlignOffset(t *testing.T) {
	tests := []struct {
		a         config.Alignment
		box, w    int
		wantStart int
	}{
		{config.AlignLeft, 100, 40, 0},
		{config.AlignRight, 100, 40, 60},
		{config.AlignCentre, 100, 40, 30},
		{config.AlignRight, 30, 40, 0},
	}
	for _, tt := range tests {
		if got := AlignOffset(tt.a, tt.box, tt.w); got != tt.wantStart {
			t.Errorf("AlignOffset(%v, %d, %d) = %d, want %d", tt.a, tt.box, tt.w, got, tt.wantStart)
		}
	}
}

func TestVerticalBox(t *testing.T) {
	tests := []struct {
		a           config.VerticalAlignment
		strip, h    int
		top, height int
	}{
		{config.VAlignTop, 30, 20, 0, 20},
		{config.VAlignCenter, 30, 20, 5, 20},
		{config.VAlignBottom, 30, 20, 10, 20},
		{config.VAlignStretch, 30, 20, 0, 30},
		{config.VAlignBottom, 10, 20, 0, 10},
	}
	for _, tt := range tests {
		top, h := VerticalBox(tt.a, tt.strip, tt.h)
		if top != tt.top || h != tt.height {
			t.Errorf("VerticalBox(%v, %d, %d) = %d,%d want %d,%d", tt.a, tt.strip, tt.h, top, h, tt.top, tt.height)
		}
	}
}

func TestColorsFallBack(t *testing.T) {
	fg, bg := Colors(reconcile.Descriptor{Foreground: "not-a-color", Background: "#ff0000"})
	if fg != config.MustParseColor(config.DefaultForeground) {
		t.Errorf("fg = %v", fg)
	}
	if bg.R != 0xff || bg.G != 0 || bg.B != 0 {
		t.Errorf("bg = %v", bg)
	}
}

func TestHitTest(t *testing.T) {
	spans := []Span{{0, 10}, {10, 0}, {10, 5}}
	for x, want := range map[int]int{0: 0, 9: 0, 10: 2, 14: 2, 15: -1, -1: -1} {
		if got := hitTest(spans, x); got != want {
			t.Errorf("hitTest(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless()
	if err := h.RefreshView("a", "x", ""); err != ErrUnknownPanel {
		t.Errorf("refresh before rebuild = %v", err)
	}
	if err := h.RebuildView(widths(50, 50)); err != nil {
		t.Fatal(err)
	}
	if err := h.RefreshView("b", "hello", "tip"); err != nil {
		t.Fatal(err)
	}
	view := h.View()
	if view[1].Display != "hello" || view[1].Tooltip != "tip" {
		t.Errorf("view = %+v", view)
	}
	if r, f := h.Counts(); r != 1 || f != 1 {
		t.Errorf("counts = %d, %d", r, f)
	}
}
