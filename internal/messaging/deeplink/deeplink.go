// Package deeplink builds WhatsApp click-to-chat URLs with a pre-filled message.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Style selects the URL shape of the generated link.
type Style string

const (
	// StyleWaMe produces https://wa.me/<number>?text=<message>.
	StyleWaMe Style = "wa.me"
	// StyleAPI produces https://api.whatsapp.com/send?phone=<number>&text=<message>.
	StyleAPI Style = "api"
)

var (
	ErrInvalidNumber = errors.New("deeplink: invalid destination number")
	ErrUnknownStyle  = errors.New("deeplink: unknown link style")
)

const (
	minDigits = 8
	maxDigits = 15
)

// ParseStyle accepts the configured style names. Empty means wa.me.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wa.me", "wame":
		return StyleWaMe, nil
	case "api", "api.whatsapp.com":
		return StyleAPI, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// NormalizeNumber strips formatting from an international number and returns
// the bare digits WhatsApp expects (country code first, no leading +).
func NormalizeNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
	}
	digits := b.String()
	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return digits, nil
}

// Builder creates deep links for one fixed destination number.
type Builder struct {
	style  Style
	number string
}

// NewBuilder validates the destination once so Build cannot fail.
func NewBuilder(style Style, phone string) (*Builder, error) {
	if style != StyleWaMe && style != StyleAPI {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	number, err := NormalizeNumber(phone)
	if err != nil {
		return nil, err
	}
	return &Builder{style: style, number: number}, nil
}

// Number returns the normalized destination.
func (b *Builder) Number() string {
	return b.number
}

// Style returns the configured link style.
func (b *Builder) Style() Style {
	return b.style
}

// Build returns a link that opens a chat with message pre-filled.
func (b *Builder) Build(message string) string {
	text := EncodeComponent(message)
	if b.style == StyleAPI {
		return "https://api.whatsapp.com/send?phone=" + b.number + "&text=" + text
	}
	return "https://wa.me/" + b.number + "?text=" + text
}

// ContactLink returns a link that opens the chat without any text.
func (b *Builder) ContactLink() string {
	return "https://wa.me/" + b.number
}

// componentUnescaper undoes the escapes url.QueryEscape applies to characters
// that encodeURIComponent leaves alone.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way browsers encode a URI component:
// spaces become %20 rather than +, and every reserved character is escaped.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
