package chat

import (
	"io"
	"time"
)

// Typewriter writes text to w one character at a time with the given delay,
// pausing twice as long at line breaks. Purely cosmetic; a zero or negative
// delay writes everything immediately.
func Typewriter(w io.Writer, text string, delay time.Duration) {
	if delay <= 0 {
		io.WriteString(w, text)
		return
	}
	for _, r := range text {
		io.WriteString(w, string(r))
		if r == '\n' {
			time.Sleep(2 * delay)
		} else {
			time.Sleep(delay)
		}
	}
}
