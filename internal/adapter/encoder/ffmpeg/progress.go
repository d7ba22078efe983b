package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// watchProgress consumes ffmpeg's -progress key=value stream and reports
// whole percentages. Values are clamped to [0,100] and only forwarded when
// they advance, so callers observe a non-decreasing sequence.
func watchProgress(r io.Reader, total time.Duration, onProgress func(percent int)) {
	scanner := bufio.NewScanner(r)
	last := -1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		elapsed, ok := parseOutTime(line)
		if !ok {
			continue
		}
		if onProgress == nil || total <= 0 {
			continue
		}

		percent := clampPercent(int(elapsed * 100 / total))
		if percent > last {
			last = percent
			onProgress(percent)
		}
	}
}

// parseOutTime extracts the elapsed output time from an out_time_us (or the
// older out_time_ms, which despite its name also carries microseconds) line.
func parseOutTime(line string) (time.Duration, bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return 0, false
	}
	if key != "out_time_us" && key != "out_time_ms" {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// lastLine returns the final non-empty line of process output, which for
// ffmpeg is where the actual failure cause lives.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
