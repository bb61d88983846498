package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHexColor converts "#AARRGGBB" (or "#RRGGBB", taken as opaque) to
// the 4-byte ARGB blob stored on genres. An empty string yields nil.
func ParseHexColor(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	digits := strings.TrimPrefix(s, "#")
	switch len(digits) {
	case 6:
		digits = "FF" + digits
	case 8:
	default:
		return nil, fmt.Errorf("color %q must be #RRGGBB or #AARRGGBB", s)
	}

	color, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("color %q is not hexadecimal: %w", s, err)
	}
	return color, nil
}

// FormatHexColor renders a stored color blob as "#AARRGGBB". Blobs that
// are not four bytes long are not colors this service wrote and render
// as an empty string.
func FormatHexColor(color []byte) string {
	if len(color) != 4 {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", color[0], color[1], color[2], color[3])
}
