// Package moderation censors forbidden words in relayed player text.
package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"log/slog"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"escape-chat/errors"
)

//go:embed censored/words.txt
var censoredFolder embed.FS

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton over a normalized copy
// of the word list. Normalization strips punctuation and case so spaced
// or dotted spellings still match.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	if len(censoredWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// LoadDefaultWords reads the embedded word list, one entry per line.
func LoadDefaultWords() ([]string, error) {
	raw, err := censoredFolder.ReadFile("censored/words.txt")
	if err != nil {
		return nil, err
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return words, nil
}

// Censor replaces every matched span with the replacement character,
// preserving the spacing and punctuation of the original text.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	norm, origIdx := normalizeWithMapping(origRunes)
	if len(norm) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(origIdx) {
			continue
		}
		for i := origIdx[normStart]; i <= origIdx[normEnd-1]; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}

// normalizeWithMapping lowercases and strips noise, keeping for every
// kept rune its index in the original slice.
func normalizeWithMapping(origRunes []rune) ([]rune, []int) {
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))
	for i, r := range origRunes {
		if isNoise(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// isNoise identifies characters ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
