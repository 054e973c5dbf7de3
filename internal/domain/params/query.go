package params

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/kailas-cloud/searchstate/internal/domain"
)

// Encode returns the canonical query string for s. Keys are sorted at every
// level; lists use repeated "key[]" pairs and nested sets use bracketed keys,
// e.g. "f[format][]=Book&f[format][]=Map&q=maps".
func (s *Set) Encode() string {
	var parts []string
	encodeSet(s, nil, &parts)
	return strings.Join(parts, "&")
}

func encodeSet(s *Set, path []string, parts *[]string) {
	if s == nil {
		return
	}
	keys := slices.Clone(s.keys)
	slices.Sort(keys)
	for _, k := range keys {
		encodeValue(s.values[k], append(slices.Clip(path), k), parts)
	}
}

func encodeValue(v Value, path []string, parts *[]string) {
	switch t := v.(type) {
	case Scalar:
		*parts = append(*parts, encodeKey(path, false)+"="+url.QueryEscape(string(t)))
	case List:
		key := encodeKey(path, true)
		for _, e := range t {
			*parts = append(*parts, key+"="+url.QueryEscape(e))
		}
	case *Set:
		encodeSet(t, path, parts)
	}
}

// encodeKey escapes each path segment but keeps the brackets literal.
func encodeKey(path []string, list bool) string {
	var b strings.Builder
	for i, seg := range path {
		if i == 0 {
			b.WriteString(url.QueryEscape(seg))
			continue
		}
		b.WriteByte('[')
		b.WriteString(url.QueryEscape(seg))
		b.WriteByte(']')
	}
	if list {
		b.WriteString("[]")
	}
	return b.String()
}

// ParseQuery decodes a query string in the bracket notation produced by
// Encode. Repeated plain keys keep the last value.
func ParseQuery(raw string) (*Set, error) {
	out := New()
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", domain.ErrInvalidParams, rawKey, err)
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %q: %w", domain.ErrInvalidParams, key, err)
		}
		path, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if err := insert(out, path, val); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// splitKey turns "f[format][]" into ["f", "format", ""].
func splitKey(key string) ([]string, error) {
	root, rest, found := strings.Cut(key, "[")
	if root == "" {
		return nil, fmt.Errorf("%w: empty key in %q", domain.ErrInvalidParams, key)
	}
	path := []string{root}
	if !found {
		return path, nil
	}
	rest = "[" + rest
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("%w: malformed key %q", domain.ErrInvalidParams, key)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated bracket in %q", domain.ErrInvalidParams, key)
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path, nil
}

func insert(s *Set, path []string, val string) error {
	name := path[0]
	switch {
	case len(path) == 1:
		s.Put(name, Scalar(val))
	case path[1] == "":
		if len(path) > 2 {
			return fmt.Errorf("%w: nesting below a list is not supported (%q)", domain.ErrInvalidParams, name)
		}
		l, _ := s.values[name].(List)
		s.Put(name, append(l, val))
	default:
		child, ok := s.values[name].(*Set)
		if !ok {
			child = New()
			s.Put(name, child)
		}
		return insert(child, path[1:], val)
	}
	return nil
}
