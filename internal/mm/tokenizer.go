package mm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenFunc opens a database file by name.
type OpenFunc func(name string) (io.ReadCloser, error)

func defaultOpen(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

type token struct {
	text string
	pos  Pos
}

// tokenizer reads a database and every file it includes into a single token
// stream with comments removed. Each file is included at most once.
type tokenizer struct {
	open     OpenFunc
	included map[string]bool
	files    []string
}

func newTokenizer(open OpenFunc) *tokenizer {
	return &tokenizer{
		open:     open,
		included: make(map[string]bool),
	}
}

func (t *tokenizer) load(name string) ([]token, error) {
	name = filepath.Clean(name)
	t.included[name] = true
	t.files = append(t.files, name)

	data, err := t.read(name)
	if err != nil {
		return nil, err
	}

	raw, err := lex(name, data)
	if err != nil {
		return nil, err
	}
	return t.expand(name, raw)
}

func (t *tokenizer) read(name string) (data []byte, err error) {
	f, err := t.open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, closeErr)
		}
	}()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// expand drops comments and splices included files into the stream.
// Inclusions are only allowed between statements.
func (t *tokenizer) expand(name string, raw []token) ([]token, error) {
	out := make([]token, 0, len(raw))
	inStatement := false
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		switch tok.text {
		case "$(":
			end, err := skipComment(raw, i)
			if err != nil {
				return nil, err
			}
			i = end
		case "$[":
			if inStatement {
				return nil, errorf(tok.pos, "file inclusion inside a statement")
			}
			if i+2 >= len(raw) || raw[i+2].text != "$]" {
				return nil, errorf(tok.pos, "unterminated file inclusion")
			}
			target := raw[i+1].text
			i += 2
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(name), target)
			}
			if t.included[filepath.Clean(target)] {
				continue
			}
			included, err := t.load(target)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		case "$.":
			inStatement = false
			out = append(out, tok)
		case "${", "$}":
			out = append(out, tok)
		default:
			inStatement = true
			out = append(out, tok)
		}
	}
	return out, nil
}

// skipComment returns the index of the `$)` closing the comment opened at
// raw[start].
func skipComment(raw []token, start int) (int, error) {
	for i := start + 1; i < len(raw); i++ {
		text := raw[i].text
		switch {
		case text == "$)":
			return i, nil
		case strings.Contains(text, "$("):
			return 0, errorf(raw[i].pos, "comments may not be nested")
		case strings.Contains(text, "$)"):
			return 0, errorf(raw[i].pos, "characters $) found in a comment")
		}
	}
	return 0, errorf(raw[start].pos, "unterminated comment")
}

func lex(name string, data []byte) ([]token, error) {
	var (
		tokens []token
		line   = 1
		start  = -1
		first  int
	)
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, token{
				text: string(data[start:end]),
				pos:  Pos{File: name, Line: first},
			})
			start = -1
		}
	}

	for i, b := range data {
		switch {
		case isSpace(b):
			flush(i)
			if b == '\n' {
				line++
			}
		case b < 0x21 || b > 0x7e:
			return nil, errorf(Pos{File: name, Line: line}, "invalid character 0x%02x", b)
		default:
			if start < 0 {
				start, first = i, line
			}
		}
	}
	flush(len(data))
	return tokens, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
