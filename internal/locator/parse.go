package locator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrSyntax is matched by every SyntaxError through errors.Is.
var ErrSyntax = errors.New("locator syntax error")

// SyntaxError reports malformed locator text. It is never retried.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid locator token %q: %s", e.Token, e.Reason)
}

// Is makes errors.Is(err, ErrSyntax) hold for every SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// unknownKeyError builds a SyntaxError for an unrecognized key, suggesting the
// closest known spelling when one is near.
func unknownKeyError(token string) *SyntaxError {
	key, _, _ := strings.Cut(token, ":")
	reason := fmt.Sprintf("unknown key %q", key)
	if s := suggestKey(key); s != "" {
		reason += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return &SyntaxError{Token: token, Reason: reason}
}

func suggestKey(key string) string {
	names := make([]string, 0, len(keyAliases))
	for name := range keyAliases {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestDist := "", 3
	for _, name := range names {
		if d := levenshtein.ComputeDistance(strings.ToLower(key), name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// token is one whitespace-separated unit of locator text.
type token struct {
	text   string
	quoted bool // any part of the token was quoted
	colon  int  // byte offset of the first unquoted ':' in text, or -1
}

// tokenize splits locator text on unquoted whitespace. Double quotes group
// text containing whitespace; inside quotes, \" and \\ are escapes.
func tokenize(s string) ([]token, error) {
	var (
		tokens  []token
		cur     strings.Builder
		inTok   bool
		quoted  bool
		inQuote bool
		start   int
		colon   = -1
	)
	flush := func() {
		if inTok {
			tokens = append(tokens, token{text: cur.String(), quoted: quoted, colon: colon})
		}
		cur.Reset()
		inTok, quoted, colon = false, false, -1
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote:
			switch r {
			case '\\':
				if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
					i++
					cur.WriteRune(runes[i])
				} else {
					cur.WriteRune(r)
				}
			case '"':
				inQuote = false
			default:
				cur.WriteRune(r)
			}
		case r == '"':
			if !inTok {
				start = i
			}
			inTok, quoted, inQuote = true, true, true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			if !inTok {
				start = i
			}
			if r == ':' && colon < 0 {
				colon = cur.Len()
			}
			inTok = true
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, &SyntaxError{Token: string(runes[start:]), Reason: "unterminated quote"}
	}
	flush()
	return tokens, nil
}

// Parse parses locator text. Empty or whitespace-only text yields the empty
// locator, which matches the search root itself.
func Parse(s string) (Locator, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return Locator{}, err
	}

	var (
		loc   Locator
		step  Step
		query Query
		prev  string // previous structural token, "" at the start of a query
	)
	endQuery := func(tok string) error {
		if len(query) == 0 {
			return &SyntaxError{Token: tok, Reason: "expected a predicate"}
		}
		step.Any = append(step.Any, query)
		query = nil
		return nil
	}

	for _, t := range tokens {
		if !t.quoted {
			switch strings.ToLower(t.text) {
			case ">":
				if err := endQuery(t.text); err != nil {
					return Locator{}, err
				}
				loc.Steps = append(loc.Steps, step)
				step = Step{}
				prev = t.text
				continue
			case "or":
				if err := endQuery(t.text); err != nil {
					return Locator{}, err
				}
				prev = t.text
				continue
			case "and":
				if len(query) == 0 {
					return Locator{}, &SyntaxError{Token: t.text, Reason: "expected a predicate"}
				}
				prev = t.text
				continue
			}
		}
		p, err := parsePredicate(t)
		if err != nil {
			return Locator{}, err
		}
		query = append(query, p)
		prev = ""
	}

	if prev != "" {
		return Locator{}, &SyntaxError{Token: prev, Reason: "locator ends with an operator"}
	}
	if len(query) > 0 {
		step.Any = append(step.Any, query)
		loc.Steps = append(loc.Steps, step)
	}
	return loc, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant locators.
func MustParse(s string) Locator {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

func parsePredicate(t token) (Predicate, error) {
	if t.colon < 0 {
		// Bare token: a name predicate.
		return compile(Predicate{Key: KeyName, Op: OpEquals, Value: t.text})
	}
	key, value := t.text[:t.colon], t.text[t.colon+1:]
	k, ok := LookupKey(key)
	if !ok {
		return Predicate{}, unknownKeyError(t.text)
	}
	return compile(Predicate{Key: k, Op: opForKey(k), Value: value})
}
