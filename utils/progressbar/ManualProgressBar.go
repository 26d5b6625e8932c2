// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed to the screen.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
	suffix          string
}

// NewManualProgressBar returns a new ManualProgressBar which prints
// to out, is width characters wide and reaches 100% after max calls
// to Increment()
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	return &ManualProgressBar{
		out:             out,
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		startTime:       time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// SetSuffix sets a short status message printed after the bar
func (p *ManualProgressBar) SetSuffix(format string, args ...interface{}) {
	p.suffix = fmt.Sprintf(format, args...)
}

// Display redraws the progress bar on the current terminal line
func (p *ManualProgressBar) Display() {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, "%",
		time.Since(p.startTime).Truncate(time.Second)))
	if p.suffix != "" {
		p.bar.WriteString(" " + p.suffix)
	}

	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.bar.String())
}

// Close moves the cursor past the progress bar
func (p *ManualProgressBar) Close() {
	fmt.Fprintln(p.out)
}
