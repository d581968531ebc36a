package upload

import (
	"fmt"
	"log/slog"
	"time"
)

// LogProgress returns a ProgressFunc logging upload progress at most once
// per interval, plus once when the total is reached. An interval <= 0
// defaults to one second.
func LogProgress(logger *slog.Logger, interval time.Duration) ProgressFunc {
	if interval <= 0 {
		interval = time.Second
	}

	var startTime, lastLog time.Time

	return func(written, total int64) {
		now := time.Now()
		if startTime.IsZero() {
			startTime = now
		}

		complete := total >= 0 && written >= total
		if !complete && now.Sub(lastLog) < interval {
			return
		}
		lastLog = now

		msg := "uploading"
		if complete {
			msg = "upload complete"
		}

		elapsed := now.Sub(startTime)
		attrs := []any{
			"elapsed", elapsed.Round(time.Millisecond),
			"written", written,
			"total", total,
		}
		if total > 0 {
			attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", float64(written)/float64(total)*100))
		}
		if elapsed > 0 {
			attrs = append(attrs, "kbps", fmt.Sprintf("%.2f", float64(written)*8/1024/elapsed.Seconds()))
		}

		logger.Info(msg, attrs...)
	}
}
