package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	redrawInterval = 100 * time.Millisecond
	defaultWidth   = 80
	minBarWidth    = 10
)

// bar draws upload progress on a single terminal line.
type bar struct {
	out   io.Writer
	width int

	start    time.Time
	lastDraw time.Time
}

// newBar returns a bar sized to the terminal behind fd.
func newBar(out io.Writer, fd int) *bar {
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = defaultWidth
	}

	return &bar{out: out, width: width}
}

func isTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// observe matches client.ProgressFunc.
func (b *bar) observe(written, total int64) {
	now := time.Now()
	if b.start.IsZero() {
		b.start = now
	}

	complete := total >= 0 && written >= total
	if !complete && now.Sub(b.lastDraw) < redrawInterval {
		return
	}
	b.lastDraw = now

	fmt.Fprint(b.out, "\r"+render(written, total, now.Sub(b.start), b.width))
	if complete {
		fmt.Fprintln(b.out)
	}
}

// render formats one progress line no wider than width.
func render(written, total int64, elapsed time.Duration, width int) string {
	var rate string
	if secs := elapsed.Seconds(); secs > 0 {
		rate = fmt.Sprintf(" %.1f kbps", float64(written)*8/1024/secs)
	}

	if total <= 0 {
		return fmt.Sprintf("Uploading... %s%s", formatBytes(written), rate)
	}

	ratio := min(float64(written)/float64(total), 1)
	stats := fmt.Sprintf(" %5.1f%% %s/%s%s", ratio*100, formatBytes(written), formatBytes(total), rate)

	barWidth := max(width-len(stats)-2, minBarWidth)
	filled := int(ratio * float64(barWidth))

	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]" + stats
}

// formatBytes converts a byte count to a human-readable string with
// binary prefixes.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
