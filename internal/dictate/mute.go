package dictate

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// SystemMuter mutes the default output device with the platform's
// command line tools
type SystemMuter struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewSystemMuter returns a muter for the running platform
func NewSystemMuter() *SystemMuter {
	return &SystemMuter{goos: runtime.GOOS, run: runCommand}
}

func (m *SystemMuter) Mute(ctx context.Context) error {
	return m.set(ctx, true)
}

func (m *SystemMuter) Unmute(ctx context.Context) error {
	return m.set(ctx, false)
}

func (m *SystemMuter) set(ctx context.Context, muted bool) error {
	name, args, ok := muteCommand(m.goos, muted)
	if !ok {
		return fmt.Errorf("muting output is not supported on %s", m.goos)
	}
	return m.run(ctx, name, args...)
}

// muteCommand returns the command that sets the output mute state. Windows
// only exposes a toggle, so mute and unmute send the same key.
func muteCommand(goos string, muted bool) (string, []string, bool) {
	switch goos {
	case "linux":
		state := "0"
		if muted {
			state = "1"
		}
		return "pactl", []string{"set-sink-mute", "@DEFAULT_SINK@", state}, true
	case "darwin":
		return "osascript", []string{"-e", fmt.Sprintf("set volume output muted %t", muted)}, true
	case "windows":
		return "powershell", []string{"-NoProfile", "-Command", "(New-Object -ComObject WScript.Shell).SendKeys([char]173)"}, true
	default:
		return "", nil, false
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
