package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderBoxContainsLines(t *testing.T) {
	out := RenderBox([]string{"2 + 3", "= 5"}, 0)
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "2 + 3") || !strings.Contains(plain, "= 5") {
		t.Errorf("box missing content: %q", plain)
	}
	if !strings.Contains(plain, "╭") {
		t.Errorf("expected rounded border, got %q", plain)
	}
}

func TestRenderBoxTruncates(t *testing.T) {
	long := strings.Repeat("9", 40)
	out := RenderBox([]string{long}, 20)
	for _, line := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(line); w > 20 {
			t.Errorf("line width %d exceeds 20: %q", w, ansi.Strip(line))
		}
	}
	if !strings.Contains(ansi.Strip(out), "…") {
		t.Errorf("expected ellipsis in %q", ansi.Strip(out))
	}
}
