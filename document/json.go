package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"

	ncconf "github.com/reoring/ncconf"
)

// ErrNonFinite is returned when a NaN or infinite number is marshaled to JSON.
var ErrNonFinite = errors.New("document: non-finite number has no JSON form")

// MarshalJSON writes v with map keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndentJSON is MarshalJSON followed by go-json's Indent.
func MarshalIndentJSON(v Value, prefix, indent string) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindAbsent, KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return ErrNonFinite
		}
		buf.WriteString(FormatNumber(v.n))
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, it := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		i := 0
		for k, it := range v.m.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := it.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes a single JSON value preserving key order. Duplicate
// keys are rejected with a duplicate_key issue.
func (v *Value) UnmarshalJSON(data []byte) error {
	got, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// DecodeJSON reads exactly one JSON value from r. Trailing non-whitespace
// input is an error.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeJSONValue(dec, nil)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return Value{}, fmt.Errorf("document: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, at ncconf.Path) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec, at)
		case '[':
			var items []Value
			for dec.More() {
				it, err := decodeJSONValue(dec, at.Index(len(items)))
				if err != nil {
					return Value{}, err
				}
				items = append(items, it)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		}
		return Value{}, fmt.Errorf("document: unexpected delimiter %q", rune(t))
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	case json.Number:
		return FromAny(t)
	case float64:
		return Number(t), nil
	}
	return Value{}, fmt.Errorf("document: unexpected token %T", tok)
}

func decodeJSONObject(dec *json.Decoder, at ncconf.Path) (Value, error) {
	b := NewBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("document: object key is %T", tok)
		}
		if b.Has(key) {
			p := at.Field(key)
			return Value{}, ncconf.Issues{p.IssueAt(ncconf.CodeDuplicateKey, "duplicate key "+key)}
		}
		val, err := decodeJSONValue(dec, at.Field(key))
		if err != nil {
			return Value{}, err
		}
		b.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return b.Value(), nil
}
