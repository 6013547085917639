// Package targets parses user-submitted member id lists.
package targets

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parser defaults
const (
	// DefaultMaxIDs bounds job size and remote-API load
	DefaultMaxIDs = 50
	// DefaultMaxIDDigits catches platform-native ids pasted instead of game ids
	DefaultMaxIDDigits = 10
	// maxReportedTokens caps how many offending tokens are echoed back
	maxReportedTokens = 10
)

// ErrNoIDs is returned when the input contains no usable tokens.
var ErrNoIDs = errors.New("no ids provided")

// Parser validates free-form id lists. Tokens are separated by any run of
// whitespace, comma, semicolon, or pipe characters; each token is stripped to
// its digits.
type Parser struct {
	MaxIDs      int
	MaxIDDigits int
}

// NewParser creates a parser, replacing non-positive limits with defaults.
func NewParser(maxIDs, maxIDDigits int) *Parser {
	if maxIDs <= 0 {
		maxIDs = DefaultMaxIDs
	}
	if maxIDDigits <= 0 {
		maxIDDigits = DefaultMaxIDDigits
	}
	return &Parser{MaxIDs: maxIDs, MaxIDDigits: maxIDDigits}
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ';' || r == '|'
}

// Parse returns the de-duplicated id list, in first-seen order. The whole
// input is rejected if any token carries no digits or looks like it belongs
// to the wrong identifier namespace.
func (p *Parser) Parse(raw string) ([]string, error) {
	tokens := strings.FieldsFunc(raw, isSeparator)
	if len(tokens) == 0 {
		return nil, ErrNoIDs
	}

	var invalid []string
	seen := make(map[string]struct{}, len(tokens))
	ids := make([]string, 0, len(tokens))

	for _, token := range tokens {
		digits := stripToDigits(token)
		if digits == "" || len(digits) > p.MaxIDDigits {
			invalid = append(invalid, token)
			continue
		}
		if _, ok := seen[digits]; ok {
			continue
		}
		seen[digits] = struct{}{}
		ids = append(ids, digits)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid member ids: %s", reportTokens(invalid))
	}
	if len(ids) > p.MaxIDs {
		return nil, fmt.Errorf("too many ids: %d exceeds the maximum of %d", len(ids), p.MaxIDs)
	}
	return ids, nil
}

func stripToDigits(token string) string {
	var b strings.Builder
	for _, r := range token {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func reportTokens(tokens []string) string {
	if len(tokens) <= maxReportedTokens {
		return strings.Join(tokens, ", ")
	}
	shown := strings.Join(tokens[:maxReportedTokens], ", ")
	return fmt.Sprintf("%s (and %d more)", shown, len(tokens)-maxReportedTokens)
}
