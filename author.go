package bibsort

import (
	"regexp"
	"strings"
)

var (
	authorFieldRE = regexp.MustCompile(`(?i)\bauthor\s*=\s*`)
	andRE         = regexp.MustCompile(`(?i)\band\b`)
)

// FirstAuthor returns the first author named in the entry's author field,
// truncated at the first "and" and stripped of braces, quotes and
// backslash escapes. Entries without an author field yield "".
func FirstAuthor(e *Entry) string {
	loc := authorFieldRE.FindStringIndex(e.raw)
	if loc == nil {
		return ""
	}
	field := fieldContent(e.raw[loc[1]:])
	if m := andRE.FindStringIndex(field); m != nil {
		field = field[:m[0]]
	}
	return cleanAuthor(field)
}

// FirstAuthorFirstName is FirstAuthor with a reversed "Last, First" name
// put back in "First Last" order so sorting compares first names.
func FirstAuthorFirstName(e *Entry) string {
	author := FirstAuthor(e)
	last, first, found := strings.Cut(author, ",")
	if !found {
		return author
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}

// fieldContent returns the delimited value at the start of field: a
// balanced {...} group or a '...'/"..." span, delimiters included. A bare
// value (number or macro name) has no delimiter, so the text is returned
// as is and the caller's truncation rules apply.
func fieldContent(field string) string {
	type delimState int8
	const (
		none delimState = iota
		inBrace
		inSingle
		inDouble
	)
	state := none
	depth := 0
	start := 0
	for i := 0; i < len(field); i++ {
		ch := field[i]
		if ch == '\\' {
			i++
			continue
		}
		switch state {
		case none:
			start = i
			switch ch {
			case '{':
				state = inBrace
				depth = 1
			case '\'':
				state = inSingle
			case '"':
				state = inDouble
			}
		case inBrace:
			if ch == '{' {
				depth++
			} else if ch == '}' {
				depth--
				if depth == 0 {
					return field[start : i+1]
				}
			}
		case inSingle:
			if ch == '\'' {
				return field[start : i+1]
			}
		case inDouble:
			if ch == '"' {
				return field[start : i+1]
			}
		}
	}
	return field
}

// cleanAuthor drops braces, quotes and backslash escapes so that
// {\"O}zg{\"u}r compares as Ozgur.
func cleanAuthor(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // the escape and the escaped byte both go
		case '{', '}', '\'', '"':
		default:
			sb.WriteByte(s[i])
		}
	}
	return strings.TrimSpace(sb.String())
}
