package dictate

import (
	"fmt"
	"strings"
)

// keyAliases maps config spellings to the key names the hook library uses
var keyAliases = map[string]string{
	"super":   "cmd",
	"win":     "cmd",
	"meta":    "cmd",
	"command": "cmd",
	"control": "ctrl",
	"option":  "alt",
	"return":  "enter",
	"esc":     "escape",
}

// ParseCombo splits a hotkey such as "super+c" into lowercase key names
func ParseCombo(combo string) ([]string, error) {
	parts := strings.Split(combo, "+")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			return nil, fmt.Errorf("invalid hotkey %q: empty key", combo)
		}
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		keys = append(keys, key)
	}
	return keys, nil
}
