package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/searchstate/internal/domain"
)

// MarshalJSON encodes s as a JSON object in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalValue(s.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return []byte("null"), nil
	case Scalar:
		return json.Marshal(string(t))
	case List:
		if t == nil {
			return []byte("[]"), nil
		}
		return json.Marshal([]string(t))
	case *Set:
		return t.MarshalJSON()
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// UnmarshalJSON decodes a JSON object, keeping key order. Numbers and
// booleans become scalars; arrays must hold scalars.
func (s *Set) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if tok == nil {
		*s = *New()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: parameter set must be a JSON object", domain.ErrInvalidParams)
	}
	out, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	*s = *out
	return nil
}

func decodeObject(dec *json.Decoder) (*Set, error) {
	out := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		out.Put(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeList(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %v", d)
	}
	if tok == nil {
		return nil, nil
	}
	sc, ok := scalarOf(tok)
	if !ok {
		return nil, fmt.Errorf("unsupported token %v", tok)
	}
	return sc, nil
}

func decodeList(dec *json.Decoder) (Value, error) {
	l := List{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		sc, ok := scalarOf(tok)
		if !ok {
			return nil, fmt.Errorf("list elements must be scalars, got %v", tok)
		}
		l = append(l, string(sc))
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return l, nil
}

func scalarOf(tok json.Token) (Scalar, bool) {
	switch t := tok.(type) {
	case string:
		return Scalar(t), true
	case json.Number:
		return Scalar(t.String()), true
	case bool:
		return Scalar(strconv.FormatBool(t)), true
	}
	return "", false
}
