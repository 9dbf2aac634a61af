// Package inject types text into the focused application.
package inject

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Methods
const (
	MethodType  = "type"
	MethodPaste = "paste"
)

// Injector sends keystrokes or pastes through the clipboard
type Injector struct {
	method string
}

// New returns an injector. type simulates each keystroke and leaves the
// clipboard alone; paste is faster for long text.
func New(method string) (*Injector, error) {
	if method != MethodType && method != MethodPaste {
		return nil, fmt.Errorf("inject method must be %q or %q, got %q", MethodType, MethodPaste, method)
	}
	return &Injector{method: method}, nil
}

// Inject writes text at the cursor
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}
	if inj.method == MethodPaste {
		return paste(text)
	}
	robotgo.Type(text)
	return nil
}

func paste(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", pasteModifier(runtime.GOOS)); err != nil {
		return fmt.Errorf("pasting: %w", err)
	}

	// Best effort
	_ = robotgo.WriteAll(prev)
	return nil
}

func pasteModifier(goos string) string {
	if goos == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
