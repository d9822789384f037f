package pipeline

import (
	"sync"
	"time"
)

// payloadBuffer holds the newest payload version until the debounce window
// passes without another one arriving. Editors often write a file several
// times in quick succession; only the last version is evaluated.
type payloadBuffer struct {
	window time.Duration

	mu      sync.Mutex
	pending []byte
	has     bool
	timer   *time.Timer
	dropped int // versions replaced before they were flushed
}

func newPayloadBuffer(window time.Duration) *payloadBuffer {
	return &payloadBuffer{window: window}
}

// add replaces the pending payload and restarts the window.
func (b *payloadBuffer) add(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.has {
		b.dropped++
	}
	b.pending = data
	b.has = true
	if b.timer == nil {
		b.timer = time.NewTimer(b.window)
		return
	}
	b.timer.Stop()
	b.timer.Reset(b.window)
}

// flushCh returns the timer's channel, or nil if nothing is pending.
func (b *payloadBuffer) flushCh() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

// take returns the pending payload and clears the buffer.
func (b *payloadBuffer) take() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.pending, b.has
	b.pending, b.has = nil, false
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return data, ok
}

// superseded returns and resets the count of versions replaced by newer ones.
func (b *payloadBuffer) superseded() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.dropped
	b.dropped = 0
	return n
}
