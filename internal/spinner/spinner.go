// Package spinner renders a terminal wait indicator for the stretches where
// the council is blocked on completion backends.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const tick = 100 * time.Millisecond

// Start renders an animated wait indicator with the given message on w.
// Once the wait passes one second the elapsed time is appended, since
// gathering answers from a full council routinely takes tens of seconds.
// The returned function stops the spinner and clears the line; calling it
// more than once is safe.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		started := time.Now()
		width := 0
		i := 0
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-time.After(tick):
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], message)
				if elapsed := time.Since(started); elapsed >= time.Second {
					line = fmt.Sprintf("%s (%ds)", line, int(elapsed.Seconds()))
				}
				if len(line) > width {
					width = len(line)
				}
				fmt.Fprintf(w, "\r%s", line) //nolint:errcheck
				i++
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}
