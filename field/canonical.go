package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces deterministic JSON for journal payloads and
// golden traces. Two encodings of equal values are byte-identical:
//
//  1. Object keys are sorted after NFC normalization
//  2. Strings are NFC normalized
//  3. No HTML escaping (< > & are emitted verbatim)
//
// Unlike content-addressed formats, null and floats are allowed here:
// field values are caller-defined and the encoding is only consumed by
// this repository's own tooling.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		return marshalCanonicalString(buf, val)
	case ID:
		return marshalCanonicalString(buf, string(val))
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		return marshalCanonicalObject(buf, val)
	default:
		// Floats and caller-defined value types: fall back to encoding/json,
		// which is deterministic for structs (declaration order) and sorts
		// map keys since Go 1.12.
		return marshalJSONFallback(buf, v)
	}
}

func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	return marshalJSONFallback(buf, norm.NFC.String(s))
}

func marshalCanonicalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	normed := make(map[string]string, len(obj))
	for k := range obj {
		nk := norm.NFC.String(k)
		keys = append(keys, nk)
		normed[nk] = k
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonicalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := marshalCanonical(buf, obj[normed[k]]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// marshalJSONFallback encodes v with encoding/json, HTML escaping disabled,
// and the encoder's trailing newline stripped.
func marshalJSONFallback(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
