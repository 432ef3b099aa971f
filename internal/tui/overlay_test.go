package tui

import (
	"strings"
	"testing"
)

func TestOverlayAtPlacesContent(t *testing.T) {
	base := strings.Join([]string{
		"..........",
		"..........",
		"..........",
	}, "\n")

	got := overlayAt(base, "XX", 2, 1, 10, 3)
	lines := strings.Split(got, "\n")
	if lines[1][:4] != "..XX" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[0] != ".........." {
		t.Errorf("line 0 touched: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "....") {
		t.Errorf("content right of the overlay lost: %q", lines[1])
	}
}

func TestOverlayAtClipsOutOfBounds(t *testing.T) {
	base := "....\n...."

	got := overlayAt(base, "X", 1, 5, 4, 2)
	if got != base {
		t.Errorf("out-of-bounds overlay changed the base: %q", got)
	}

	got = overlayAt(base, "X", 1, -1, 4, 2)
	if got != base {
		t.Errorf("negative row changed the base: %q", got)
	}
}

func TestOverlayAtMultiline(t *testing.T) {
	base := strings.Repeat("....\n", 3) + "...."

	got := overlayAt(base, "A\nB", 0, 1, 4, 4)
	lines := strings.Split(got, "\n")
	if lines[1][0] != 'A' || lines[2][0] != 'B' {
		t.Errorf("multiline overlay misplaced: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight must not truncate: %q", got)
	}
}
