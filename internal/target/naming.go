package target

import (
	"bufio"
	"fmt"
	"io/fs"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s into words. Any rune that is neither a letter, a digit nor a
// combining mark separates words; a word also ends before an upper-case letter
// that follows a lower-case letter or digit, and before the last upper-case
// letter of a run that is followed by a lower-case letter
// ("HTTPServer" -> HTTP, Server). Marks stay with the letter they modify.
func Words(s string) []string {
	rs := []rune(s)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, string(rs[start:end]))
			start = -1
		}
	}
	for i, r := range rs {
		if isMark(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if !unicode.IsUpper(r) {
			continue
		}
		prev, ok := baseBefore(rs, i, start)
		if !ok {
			continue
		}
		switch {
		case unicode.IsLower(prev), unicode.IsDigit(prev):
			flush(i)
			start = i
		case unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}

func isMark(r rune) bool { return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me) }

// baseBefore returns the nearest non-mark rune in rs[start:i].
func baseBefore(rs []rune, i, start int) (rune, bool) {
	for j := i - 1; j >= start; j-- {
		if !isMark(rs[j]) {
			return rs[j], true
		}
	}
	return 0, false
}

// Casers are not safe for concurrent use, so each call builds its own.
func lowerWord(w string) string { return cases.Lower(language.Und).String(w) }
func titleWord(w string) string { return cases.Title(language.Und).String(w) }

// maxCasingPasses bounds stable. Each pass can only drop upper-case letters
// from inside a word, so real identifiers settle in two or three passes.
const maxCasingPasses = 32

// stable re-applies f until its output stops changing, which makes every
// casing function idempotent: joining "a" and "b" as "AB" would otherwise
// read back as the single word "Ab".
func stable(f func(string) string, s string) string {
	out := f(s)
	for i := 0; i < maxCasingPasses; i++ {
		next := f(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

// CamelCase joins the words of s as "fooBarBaz".
func CamelCase(s string) string { return stable(camelOnce, s) }

// PascalCase joins the words of s as "FooBarBaz".
func PascalCase(s string) string { return stable(pascalOnce, s) }

// SnakeCase joins the words of s as "foo_bar_baz".
func SnakeCase(s string) string { return stable(snakeOnce, s) }

func camelOnce(s string) string {
	var b strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			b.WriteString(lowerWord(w))
			continue
		}
		b.WriteString(titleWord(w))
	}
	return b.String()
}

func pascalOnce(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(titleWord(w))
	}
	return b.String()
}

func snakeOnce(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = lowerWord(w)
	}
	return strings.Join(words, "_")
}

var illegal = strings.NewReplacer("@", "at_")

// SubstituteIllegal replaces identifier-illegal characters that carry
// meaning with a spelled-out ASCII equivalent before casing.
func SubstituteIllegal(s string) string {
	return illegal.Replace(s)
}

// LegalStart prefixes identifiers that would start with a digit.
func LegalStart(id string) string {
	if r, _ := utf8.DecodeRuneInString(id); unicode.IsDigit(r) {
		return "_" + id
	}
	return id
}

// ReservedWords is a read-only set of a language's reserved identifiers.
type ReservedWords struct {
	words map[string]struct{}
}

// ParseReservedWords reads a newline-delimited list. Blank lines and lines
// starting with '#' are ignored.
func ParseReservedWords(list string) ReservedWords {
	rw := ReservedWords{words: map[string]struct{}{}}
	sc := bufio.NewScanner(strings.NewReader(list))
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		rw.words[w] = struct{}{}
	}
	return rw
}

// LoadReservedWords parses the list stored at name in fsys.
func LoadReservedWords(fsys fs.FS, name string) (ReservedWords, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return ReservedWords{}, fmt.Errorf("read reserved words %s: %w", name, err)
	}
	return ParseReservedWords(string(data)), nil
}

func (r ReservedWords) Contains(id string) bool {
	_, ok := r.words[id]
	return ok
}

// Escape appends "_" to id when it is reserved. The suffix is applied once;
// no list entry ends in "_", so the result never collides again.
func (r ReservedWords) Escape(id string) string {
	if r.Contains(id) {
		return id + "_"
	}
	return id
}

func (r ReservedWords) Len() int { return len(r.words) }

// List returns the words in no particular order.
func (r ReservedWords) List() []string {
	out := make([]string, 0, len(r.words))
	for w := range r.words {
		out = append(out, w)
	}
	return out
}
