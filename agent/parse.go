package agent

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"verynews/pkg/literal"

	"github.com/go-playground/validator/v10"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	ErrNoJSON = errors.New("no JSON value in model output")

	codeFence = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)```")
	validate  = validator.New()
)

// Parsed is the outcome of decoding model output. On failure Value holds the
// fallback given to Decode.
type Parsed[T any] struct {
	Value T
	OK    bool
	Err   error
}

type normalizer interface {
	normalize()
}

// Decode finds the first JSON object or array in raw model output that
// decodes into T. Python literals, single quotes, trailing commas and "#"
// comments are tolerated. A bracketed span that does not decode, such as
// "[see below]" in prose, is skipped. Struct values are checked against their
// validate tags.
func Decode[T any](raw string, fallback T) Parsed[T] {
	text := raw
	if m := codeFence.FindStringSubmatch(raw); m != nil {
		text = m[1]
	}

	var lastErr error
	for rest := text; ; {
		start := strings.IndexAny(rest, "{[")
		if start < 0 {
			break
		}
		rest = rest[start:]
		end := balancedEnd(rest)
		if end < 0 {
			if lastErr == nil {
				lastErr = fmt.Errorf("%w: unbalanced brackets", ErrNoJSON)
			}
			rest = rest[1:]
			continue
		}

		var v T
		if err := json5.Unmarshal([]byte(literal.ToJSON(rest[:end])), &v); err != nil {
			lastErr = fmt.Errorf("decode model output: %w", err)
			rest = rest[end:]
			continue
		}
		if n, ok := any(&v).(normalizer); ok {
			n.normalize()
		}
		if err := validateValue(v); err != nil {
			return Parsed[T]{Value: fallback, Err: fmt.Errorf("validate model output: %w", err)}
		}
		return Parsed[T]{Value: v, OK: true}
	}

	if lastErr == nil {
		lastErr = ErrNoJSON
	}
	return Parsed[T]{Value: fallback, Err: lastErr}
}

func validateValue(v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(v)
	case reflect.Slice:
		for i := range rv.Len() {
			if err := validateValue(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

// balancedEnd returns the length of the object or array opening s, or -1
// when its brackets never close. Quoted text and "#" comments are skipped.
func balancedEnd(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '#':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
