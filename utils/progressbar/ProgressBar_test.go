package progressbar

import (
	"strings"
	"sync"
	"testing"
)

func TestProgressBar(t *testing.T) {
	var out strings.Builder
	p := New(&out, 10, 4)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()

	if p.Progress() != 1 {
		t.Errorf("progress should saturate at 1, got %v", p.Progress())
	}

	p.Close()
	if !strings.Contains(out.String(), strings.Repeat("█", 10)) {
		t.Errorf("expected a full bar, got %q", out.String())
	}
	if !strings.Contains(out.String(), "100.00%") {
		t.Errorf("expected 100%% progress, got %q", out.String())
	}
}

func TestHalfway(t *testing.T) {
	p := New(&strings.Builder{}, 10, 4)
	p.Increment()
	p.Increment()

	bar := p.String()
	if !strings.Contains(bar, "|"+strings.Repeat("█", 5)+strings.Repeat(" ", 5)+"|") {
		t.Errorf("expected half full bar, got %q", bar)
	}
}
