package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	barFilled = color.New(color.FgGreen).SprintFunc()
	barFailed = color.New(color.FgRed).SprintFunc()
)

// ProgressBar renders a single-line progress bar for batch jobs such as icon generation
type ProgressBar struct {
	out         io.Writer
	total       int
	current     int
	failed      int
	description string
	startTime   time.Time
	width       int
}

// NewProgressBar creates a new progress bar writing to stdout
func NewProgressBar(total int, description string) *ProgressBar {
	return NewProgressBarTo(os.Stdout, total, description)
}

// NewProgressBarTo creates a progress bar writing to out
func NewProgressBarTo(out io.Writer, total int, description string) *ProgressBar {
	return &ProgressBar{
		out:         out,
		total:       total,
		description: description,
		startTime:   time.Now(),
		width:       30,
	}
}

// Step advances the bar by one item; ok=false counts it as failed
func (pb *ProgressBar) Step(label string, ok bool) {
	pb.current++
	if !ok {
		pb.failed++
	}
	pb.description = label
	pb.render()
}

// Finish completes the progress bar
func (pb *ProgressBar) Finish() {
	pb.render()
	fmt.Fprintf(pb.out, " (%v)\n", time.Since(pb.startTime).Round(time.Millisecond))
}

// Failed returns the number of failed steps
func (pb *ProgressBar) Failed() int {
	return pb.failed
}

func (pb *ProgressBar) render() {
	if pb.total <= 0 {
		return
	}

	current := pb.current
	if current > pb.total {
		current = pb.total
	}
	filled := pb.width * current / pb.total
	bad := pb.width * pb.failed / pb.total
	if bad > filled {
		bad = filled
	}

	bar := barFilled(strings.Repeat("█", filled-bad)) +
		barFailed(strings.Repeat("█", bad)) +
		strings.Repeat("░", pb.width-filled)

	label := pb.description
	if len(label) > 32 {
		label = "..." + label[len(label)-29:]
	}

	fmt.Fprintf(pb.out, "\r[%s] %d/%d %-32s", bar, current, pb.total, label)
}
