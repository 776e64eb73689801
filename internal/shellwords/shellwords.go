// Package shellwords splits a single attribute string into an ordered argument
// vector using shell-like quoting and escaping rules. It is deliberately not a
// POSIX shell lexer: the rules are exactly the ones recipe authors rely on in
// `args` attributes, nothing more.
package shellwords

import (
	"fmt"
	"strings"
)

// MalformedArgumentsError is returned when an argument string cannot be
// tokenized, for example because a double-quoted region is never closed.
type MalformedArgumentsError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *MalformedArgumentsError) Error() string {
	return fmt.Sprintf("malformed argument string %q: %s", e.Input, e.Reason)
}

// Split tokenizes input in a single left-to-right pass.
//
// A backslash escapes the following character literally and is itself
// consumed. An unescaped double quote opens a region in which whitespace does
// not split tokens; the quote characters are not emitted. Adjacent quoted and
// unquoted fragments concatenate into one token. Empty input yields an empty
// slice.
func Split(input string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inToken := false
	inQuote := false

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\':
			if i == len(runes)-1 {
				return nil, &MalformedArgumentsError{Input: input, Reason: "trailing backslash"}
			}
			i++
			cur.WriteRune(runes[i])
			inToken = true
		case c == '"':
			inQuote = !inQuote
			// An empty quoted region still produces a token.
			inToken = true
		case !inQuote && isSpace(c):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(c)
			inToken = true
		}
	}

	if inQuote {
		return nil, &MalformedArgumentsError{Input: input, Reason: "unterminated double quote"}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// Join renders tokens back into a single string that Split will tokenize to
// the same sequence. Backslashes and double quotes are escaped; tokens
// containing whitespace, and empty tokens, are double-quoted.
func Join(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(tok)
		if tok == "" || strings.ContainsAny(tok, " \t\r\n") {
			escaped = `"` + escaped + `"`
		}
		parts[i] = escaped
	}
	return strings.Join(parts, " ")
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
