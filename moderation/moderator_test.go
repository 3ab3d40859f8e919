package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"escape-chat/errors"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dictionary := []string{"badger", "snake", "바보"}
	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name:     "Uppercase and internal punctuation",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
		},
		{
			name:     "Korean pattern inside a sentence",
			input:    "야 이 바보 같은 퍼즐",
			expected: "야 이 ** 같은 퍼즐",
		},
		{
			name:     "Clean text untouched",
			input:    "열쇠는 책상 서랍 안에 있어",
			expected: "열쇠는 책상 서랍 안에 있어",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestModerator_EmptyDictionary(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	_, err := NewModerator(nil, replacementChar, log)

	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestLoadDefaultWords(t *testing.T) {
	req := require.New(t)

	words, err := LoadDefaultWords()

	req.NoError(err)
	req.NotEmpty(words)
	req.Contains(words, "바보")
}
