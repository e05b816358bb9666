// Package moderation censors banned words in message texts.
// Matching ignores case, punctuation and common leet substitutions,
// so "B.4.d.g.€r" is caught by "badger".
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	log          *slog.Logger
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// folded is a text reduced to its searchable runes.
// origIdx[i] is the position in the original text of folded rune i.
type folded struct {
	runes   []rune
	origIdx []int
}

// NewModerator builds the Aho-Corasick automaton from the banned words.
// Entries made only of noise are ignored. With no usable word the moderator lets every text through.
func NewModerator(bannedWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(bannedWords))
	for _, word := range bannedWords {
		if pattern := fold(word).runes; len(pattern) > 0 {
			patterns = append(patterns, pattern)
		}
	}
	moderator := &Moderator{log: log, censoredChar: censoredChar}
	if len(patterns) == 0 {
		return moderator, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	moderator.matcher = m
	return moderator, nil
}

// Censor masks every banned word of text, keeping spacing and punctuation around it.
func (m *Moderator) Censor(text string) string {
	censored, words := m.Inspect(text)
	if len(words) > 0 {
		m.log.Debug("Message censored", "words", words)
	}
	return censored
}

// Inspect returns the censored text and the banned words found, in order of appearance.
func (m *Moderator) Inspect(text string) (string, []string) {
	if m.matcher == nil {
		return text, nil
	}
	f := fold(text)
	if len(f.runes) == 0 {
		return text, nil
	}
	spans := m.matcher.MultiPatternSearch(f.runes, false)
	if len(spans) == 0 {
		return text, nil
	}

	out := []rune(text)
	words := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(f.origIdx) {
			continue
		}
		for i := f.origIdx[start]; i <= f.origIdx[end-1]; i++ {
			out[i] = m.censoredChar
		}
		words = append(words, string(span.Word))
	}
	return string(out), words
}

func fold(text string) folded {
	runes := []rune(text)
	f := folded{runes: make([]rune, 0, len(runes)), origIdx: make([]int, 0, len(runes))}
	for i, r := range runes {
		clean := unleet(r)
		if isNoise(clean) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(clean))
		f.origIdx = append(f.origIdx, i)
	}
	return f
}

// unleet maps common leet speak characters back to letters.
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
