// Package hotkey emits push-to-talk events from a global keyboard hook.
package hotkey

import (
	"fmt"
	"sync"

	hook "github.com/robotn/gohook"
	"voice-type/internal/dictate"
)

// Modes
const (
	ModeHold   = "hold"
	ModeToggle = "toggle"
)

// Listener turns presses of one key combination into dictate events
type Listener struct {
	keys []string
	mode string
	ch   chan dictate.Event
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	recording bool
}

// New creates a listener for keys. In hold mode press starts and release
// stops; in toggle mode each press flips between the two.
func New(keys []string, mode string) (*Listener, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hotkey has no keys")
	}
	if mode != ModeHold && mode != ModeToggle {
		return nil, fmt.Errorf("hotkey mode must be %q or %q, got %q", ModeHold, ModeToggle, mode)
	}
	return &Listener{
		keys: keys,
		mode: mode,
		ch:   make(chan dictate.Event, 16),
		done: make(chan struct{}),
	}, nil
}

// Events is closed once Start returns
func (l *Listener) Events() <-chan dictate.Event {
	return l.ch
}

// Start installs the hook and blocks until Stop is called
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(hook.Event) { l.press() })
	if l.mode == ModeHold {
		hook.Register(hook.KeyUp, l.keys, func(hook.Event) { l.release() })
	}

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// Stop ends Start. Safe to call more than once.
func (l *Listener) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Listener) press() {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.mode == ModeToggle && l.recording:
		l.recording = false
		l.emit(dictate.EventStop)
	case !l.recording:
		l.recording = true
		l.emit(dictate.EventStart)
	}
	// Auto-repeat in hold mode is swallowed
}

func (l *Listener) release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.recording {
		l.recording = false
		l.emit(dictate.EventStop)
	}
}

// emit never blocks the hook thread
func (l *Listener) emit(t dictate.EventType) {
	select {
	case l.ch <- dictate.Event{Type: t}:
	default:
	}
}
