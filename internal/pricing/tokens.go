package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// EventKind classifies a token in the stream.
type EventKind int

// Event kinds, named after the events of an ijson-style parser.
const (
	StartMap EventKind = iota + 1
	MapKey
	EndMap
	StartArray
	EndArray
	String
	Number
	Boolean
	Null
)

var eventKindNames = map[EventKind]string{
	StartMap:   "start_map",
	MapKey:     "map_key",
	EndMap:     "end_map",
	StartArray: "start_array",
	EndArray:   "end_array",
	String:     "string",
	Number:     "number",
	Boolean:    "boolean",
	Null:       "null",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// arrayItem is the path segment used for array elements.
const arrayItem = "item"

// ctxCheckInterval is how many tokens are read between context checks.
const ctxCheckInterval = 4096

// Token is one (prefix, event, value) triple.
//
// Prefix is the dot-joined path of object keys leading to the token, with
// "item" standing in for array elements. For MapKey the prefix is the path of
// the enclosing object and Value is the key. Depth is the number of path
// segments and Key is the last one.
type Token struct {
	Prefix string
	Key    string
	Depth  int
	Kind   EventKind
	Value  any
}

// StringValue returns Value as a string for String, Number and MapKey tokens.
func (t Token) StringValue() (string, bool) {
	s, ok := t.Value.(string)
	return s, ok
}

// frame tracks one open container.
type frame struct {
	array     bool
	expectKey bool
}

// TokenStream walks a JSON document token by token. Memory use is bounded by
// nesting depth, not document size.
type TokenStream struct {
	dec   *json.Decoder
	stack []frame
	path  []string
}

// NewTokenStream reads JSON from r.
func NewTokenStream(r io.Reader) *TokenStream {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &TokenStream{dec: dec}
}

// Next returns the next token, or io.EOF once the document is exhausted.
func (s *TokenStream) Next() (Token, error) {
	raw, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}

	if delim, ok := raw.(json.Delim); ok {
		return s.delim(delim)
	}

	if top := s.top(); top != nil && !top.array && top.expectKey {
		key, ok := raw.(string)
		if !ok {
			return Token{}, fmt.Errorf("unexpected object key %v at %q", raw, s.prefix())
		}
		tok := s.token(MapKey, key)
		s.path = append(s.path, key)
		top.expectKey = false
		return tok, nil
	}

	var tok Token
	switch v := raw.(type) {
	case string:
		tok = s.token(String, v)
	case bool:
		tok = s.token(Boolean, v)
	case nil:
		tok = s.token(Null, nil)
	case float64:
		tok = s.token(Number, strconv.FormatFloat(v, 'f', -1, 64))
	case fmt.Stringer:
		tok = s.token(Number, v.String())
	default:
		return Token{}, fmt.Errorf("unexpected token %T at %q", raw, s.prefix())
	}
	s.valueDone()
	return tok, nil
}

func (s *TokenStream) delim(d json.Delim) (Token, error) {
	switch d {
	case '{':
		tok := s.token(StartMap, nil)
		s.stack = append(s.stack, frame{expectKey: true})
		return tok, nil
	case '[':
		tok := s.token(StartArray, nil)
		s.stack = append(s.stack, frame{array: true})
		s.path = append(s.path, arrayItem)
		return tok, nil
	case '}':
		if len(s.stack) == 0 {
			return Token{}, errors.New("unbalanced '}'")
		}
		s.stack = s.stack[:len(s.stack)-1]
		tok := s.token(EndMap, nil)
		s.valueDone()
		return tok, nil
	case ']':
		if len(s.stack) == 0 || len(s.path) == 0 {
			return Token{}, errors.New("unbalanced ']'")
		}
		s.path = s.path[:len(s.path)-1]
		s.stack = s.stack[:len(s.stack)-1]
		tok := s.token(EndArray, nil)
		s.valueDone()
		return tok, nil
	}
	return Token{}, fmt.Errorf("unknown delimiter %q", rune(d))
}

// valueDone closes out a completed value: inside an object the key segment
// is dropped and the next token must be a key.
func (s *TokenStream) valueDone() {
	top := s.top()
	if top == nil || top.array {
		return
	}
	if len(s.path) > 0 {
		s.path = s.path[:len(s.path)-1]
	}
	top.expectKey = true
}

func (s *TokenStream) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

func (s *TokenStream) prefix() string {
	return strings.Join(s.path, ".")
}

func (s *TokenStream) token(kind EventKind, value any) Token {
	tok := Token{
		Prefix: s.prefix(),
		Depth:  len(s.path),
		Kind:   kind,
		Value:  value,
	}
	if n := len(s.path); n > 0 {
		tok.Key = s.path[n-1]
	}
	return tok
}

// scanFile streams the JSON file at path, calling visit for every token until
// visit returns true or the document ends.
func scanFile(ctx context.Context, path string, visit func(Token) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stream := NewTokenStream(f)
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if visit(tok) {
			return nil
		}
	}
}
