package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Matcher проверяет текст сообщения на вхождение запрещенных слов.
// Поиск нечувствителен к регистру, пунктуации и простым leet-подстановкам.
type Matcher struct {
	machine *goahocorasick.Machine
	empty   bool
}

func NewMatcher(bannedWords []string) (*Matcher, error) {
	patterns := make([][]rune, 0, len(bannedWords))
	for _, word := range bannedWords {
		normalized := normalizeRunes([]rune(word))
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}

	if len(patterns) == 0 {
		return &Matcher{empty: true}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Matcher{machine: m}, nil
}

// Rejects сообщает, содержит ли текст хотя бы одно запрещенное слово
func (m *Matcher) Rejects(text string) bool {
	if m.empty {
		return false
	}

	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return false
	}

	matches := m.machine.MultiPatternSearch(normalized, true)
	return len(matches) > 0
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune сводит распространенные leet-замены к обычным буквам
func simplifyRune(r rune) rune {
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
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
