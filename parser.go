package bibsort

import (
	"strings"
	"unicode/utf8"
)

const (
	LPAREN byte = '('
	RPAREN byte = ')'
	LBRACE byte = '{'
	RBRACE byte = '}'
	COMMA  byte = ','
	DQUOTE byte = '"'
	ESCAPE byte = '\\'
	AT     byte = '@'
)

type Options struct {
	// AllowEmptyKeys accepts records whose key token is empty instead of
	// failing with MissingKey. Empty keys sort before everything else.
	AllowEmptyKeys bool
}

// Parse splits text into a Document of verbatim entries. name is only used
// for reporting. The scan is a single pass tracking brace nesting with a
// quoted-string sub-state, so braces, parens and '@' inside "..." values
// never open or close a record.
func Parse(text, name string, opts Options) (*Document, error) {
	if !utf8.ValidString(text) {
		line, offset := invalidRunePos(text)
		return nil, parseErrorf(EncodingError, line, offset, "input is not valid UTF-8")
	}
	return newScanner(text, opts).scan(name)
}

type scanner struct {
	src  string
	pos  int // byte offset of the next unread byte
	line int // 1-based line of the byte at pos
	opts Options
}

func newScanner(src string, opts Options) *scanner {
	return &scanner{src: src, line: 1, opts: opts}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

// bump consumes and returns the next byte, keeping the line count current.
func (s *scanner) bump() byte {
	b := s.src[s.pos]
	s.pos++
	if b == '\n' {
		s.line++
	}
	return b
}

func (s *scanner) scan(name string) (*Document, error) {
	doc := newDocument(name)
	blockStart := 0 // start of junk text owned by the next entry
	for !s.eof() {
		if s.bump() != AT {
			continue
		}
		entryOffset := s.pos - 1
		entryLine := s.line
		if doc.EntryCount() == 0 {
			doc.Preamble = s.src[blockStart:entryOffset]
			blockStart = entryOffset
		}
		end, key, err := s.scanRecord(entryLine, entryOffset)
		if err != nil {
			return nil, err
		}
		doc.addEntry(&Entry{
			raw:    s.src[blockStart:end],
			key:    key,
			line:   entryLine,
			offset: entryOffset,
		})
		blockStart = end
	}
	if doc.EntryCount() == 0 {
		doc.Preamble = s.src
	} else {
		doc.Trailing = s.src[blockStart:]
	}
	return doc, nil
}

// scanRecord consumes one record starting just past its '@' marker and
// returns the byte offset past its closing delimiter plus the citation key.
func (s *scanner) scanRecord(entryLine, entryOffset int) (end int, key string, err error) {
	// the record type runs up to the opening delimiter
	opener := byte(0)
	for !s.eof() {
		if b := s.bump(); b == LBRACE || b == LPAREN {
			opener = b
			break
		}
	}
	if opener == 0 {
		return 0, "", parseErrorf(MissingKey, entryLine, entryOffset,
			"record has no opening { or (")
	}
	bodyStart := s.pos
	braceDepth := 0 // nesting of braces inside the record body
	openDepth := 1  // nesting of the record's own delimiter
	if opener == LBRACE {
		braceDepth = 1
	}
	inQuote := false
	for !s.eof() {
		b := s.bump()
		switch {
		case b == ESCAPE:
			if !s.eof() {
				s.bump()
			}
		case b == DQUOTE:
			inQuote = !inQuote
		case inQuote:
			// braces, parens and '@' in a quoted value are plain text
		case b == LBRACE:
			braceDepth++
		case b == RBRACE:
			if braceDepth == 0 {
				return 0, "", parseErrorf(MalformedEntry, entryLine, entryOffset,
					"} closed before it was opened")
			}
			braceDepth--
			if opener == LBRACE && braceDepth == 0 {
				openDepth = 0
			}
		case b == LPAREN && opener == LPAREN && braceDepth == 0:
			openDepth++
		case b == RPAREN && opener == LPAREN && braceDepth == 0:
			openDepth--
		}
		if openDepth == 0 {
			key, err = s.extractKey(s.src[bodyStart:s.pos-1], entryLine, entryOffset)
			return s.pos, key, err
		}
	}
	return 0, "", parseErrorf(MalformedEntry, entryLine, entryOffset,
		"record is never closed; unbalanced %q?", string(opener))
}

// extractKey returns the first token of the record body: everything up to a
// comma, delimiter or whitespace, trimmed of surrounding space.
func (s *scanner) extractKey(body string, entryLine, entryOffset int) (string, error) {
	body = strings.TrimLeft(body, " \t\r\n")
	endTok := strings.IndexFunc(body, func(r rune) bool {
		switch r {
		case rune(COMMA), rune(LBRACE), rune(RBRACE), rune(LPAREN), rune(RPAREN), rune(DQUOTE):
			return true
		case ' ', '\t', '\r', '\n':
			return true
		}
		return false
	})
	if endTok >= 0 {
		body = body[:endTok]
	}
	if body == "" && !s.opts.AllowEmptyKeys {
		return "", parseErrorf(MissingKey, entryLine, entryOffset,
			"record has no citation key")
	}
	return body, nil
}

// invalidRunePos locates the first byte that is not part of a valid UTF-8
// sequence, for the EncodingError diagnostic.
func invalidRunePos(s string) (line, offset int) {
	line = 1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return line, i
		}
		if r == '\n' {
			line++
		}
		i += size
	}
	return line, len(s)
}
