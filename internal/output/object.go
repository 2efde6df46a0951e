package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errNotObject = errors.New("top-level value is not a JSON object")

// field is one top-level member of a JSON object with its raw value
type field struct {
	key   string
	value []byte
}

// splitObject returns the top-level members of a JSON object in document
// order. A repeated key keeps its first position and its last value.
//
// The walk uses the decoder's token stream, which has no nesting limit, so
// long manifest chains stored under "next" are accepted.
func splitObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var fields []field
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		start := dec.InputOffset()
		if err := skipValue(dec); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		raw := bytes.TrimSpace(data[start:dec.InputOffset()])
		raw = bytes.TrimSpace(bytes.TrimPrefix(raw, []byte(":")))

		if i, seen := index[key]; seen {
			fields[i].value = raw
			continue
		}
		index[key] = len(fields)
		fields = append(fields, field{key: key, value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after top-level object")
	}
	return fields, nil
}

// skipValue consumes exactly one JSON value from dec
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}

// mergeFields overlays fresh on base: base order is kept, fresh values win
// and fresh keys not in base are appended.
func mergeFields(base, fresh []field) []field {
	merged := make([]field, len(base), len(base)+len(fresh))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, f := range merged {
		index[f.key] = i
	}
	for _, f := range fresh {
		if i, ok := index[f.key]; ok {
			merged[i].value = f.value
			continue
		}
		index[f.key] = len(merged)
		merged = append(merged, f)
	}
	return merged
}

// encodeObject writes fields as one JSON object, indented like
// json.MarshalIndent when indent is not empty.
func encodeObject(fields []field, indent string) ([]byte, error) {
	if len(fields) == 0 {
		return []byte("{}"), nil
	}

	e := &reencoder{indent: indent}
	e.buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(1)
		if err := e.scalar(f.key); err != nil {
			return nil, err
		}
		e.colon()
		if err := e.value(f.value, 1); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	e.newline(0)
	e.buf.WriteByte('}')
	return e.buf.Bytes(), nil
}

// reencoder rewrites raw JSON values token by token, so deep values never
// hit encoding/json's nesting limit.
type reencoder struct {
	buf    bytes.Buffer
	indent string
}

type frame struct {
	object    bool
	count     int
	wantValue bool
}

func (e *reencoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *reencoder) colon() {
	e.buf.WriteByte(':')
	if e.indent != "" {
		e.buf.WriteByte(' ')
	}
}

func (e *reencoder) scalar(v any) error {
	enc := json.NewEncoder(&e.buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	e.buf.Truncate(e.buf.Len() - 1)
	return nil
}

// value re-encodes raw at the given depth
func (e *reencoder) value(raw []byte, depth int) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var stack []frame
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		level := depth + len(stack)
		isKey := false
		if n := len(stack); n > 0 {
			top := &stack[n-1]
			closing := false
			if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
				closing = true
			}
			switch {
			case closing:
			case top.object && top.wantValue:
				top.wantValue = false
			default:
				if top.count > 0 {
					e.buf.WriteByte(',')
				}
				e.newline(level)
				top.count++
				if top.object {
					isKey = true
					top.wantValue = true
				}
			}
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				e.buf.WriteByte(byte(v))
				stack = append(stack, frame{object: v == '{'})
			case '}', ']':
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.count > 0 {
					e.newline(depth + len(stack))
				}
				e.buf.WriteByte(byte(v))
			}
		case json.Number:
			e.buf.WriteString(v.String())
		default:
			if err := e.scalar(v); err != nil {
				return err
			}
			if isKey {
				e.colon()
			}
		}
	}
	return nil
}
