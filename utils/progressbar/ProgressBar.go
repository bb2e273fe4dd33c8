// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar is a progress bar which is redrawn on a single terminal
// line each time Display is called. Increment and Display may be
// called from multiple goroutines.
type ProgressBar struct {
	mu        sync.Mutex
	out       io.Writer
	width     int
	max       int
	progress  int
	startTime time.Time
}

// New returns a new ProgressBar that is width characters wide and
// reaches 100% after max calls to Increment
func New(out io.Writer, width, max int) *ProgressBar {
	if max <= 0 {
		max = 1
	}
	return &ProgressBar{
		out:       out,
		width:     width,
		max:       max,
		startTime: time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progress < p.max {
		p.progress++
	}
}

// Progress returns the fraction of iterations performed
func (p *ProgressBar) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return float64(p.progress) / float64(p.max)
}

// String returns the current progress bar
func (p *ProgressBar) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	filled := p.progress * p.width / p.max

	var bar strings.Builder
	bar.WriteString("|")
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat(" ", p.width-filled))
	fmt.Fprintf(&bar, "| [%.2f%% | elapsed: %v]",
		float64(p.progress)/float64(p.max)*100,
		time.Since(p.startTime).Truncate(time.Second))

	return bar.String()
}

// Display redraws the progress bar on the current terminal line
func (p *ProgressBar) Display() {
	bar := p.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%v", bar)
}

// Close moves the output past the progress bar
func (p *ProgressBar) Close() {
	p.Display()

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}
