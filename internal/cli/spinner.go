package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner shows a generator call in flight on the status stream, with the
// seconds spent so far once the call takes longer than one.
type spinner struct {
	message string
	started time.Time

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	width int
}

// startSpinner draws message until Stop is called or ctx is done.
func startSpinner(ctx context.Context, message string) *spinner {
	s := &spinner{
		message: message,
		started: time.Now(),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.stop:
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	line := s.message
	if elapsed := time.Since(s.started); elapsed >= time.Second {
		line = fmt.Sprintf("%s %ds", s.message, int(elapsed.Seconds()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(statusOut, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
	s.width = len(line) + 2
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Stop clears the spinner line and waits for the animation to exit. It is
// safe to call more than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}
