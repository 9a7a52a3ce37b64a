package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const maxNameGraphemes = 256

// forbiddenNameChars break markup or path handling when a name is echoed back.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a display name that passed ParseSubscriberName.
type SubscriberName struct {
	value string
}

func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name is empty", ErrValidation)
	}
	if !utf8.ValidString(raw) {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name is not valid UTF-8", ErrValidation)
	}
	if uniseg.GraphemeClusterCount(raw) > maxNameGraphemes {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name is longer than %d characters", ErrValidation, maxNameGraphemes)
	}
	for _, r := range raw {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenNameChars, r) {
			return SubscriberName{}, fmt.Errorf("%w: subscriber name contains forbidden character %q", ErrValidation, r)
		}
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string {
	return n.value
}
