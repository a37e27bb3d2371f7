package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinner is a lightweight progress indicator for long solves. It draws to
// stderr so piped stdout output stays clean, and stops when its context is
// cancelled.
type spinner struct {
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
	mu      sync.Mutex
	once    sync.Once
}

// startSpinner begins animating the message until stop is called or ctx is
// cancelled.
func startSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		message: message,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(os.Stderr, "\r%s %s",
					styleIconSpinner.Render(frames[i%len(frames)]), styleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
	return s
}

// stop halts the animation and clears the line. Safe to call multiple times.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
