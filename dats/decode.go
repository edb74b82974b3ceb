package dats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
)

// RawField is one ordered (name, value) pair of a decoded document object.
// Values are string, float64, bool, nil, *RawObject, or []any of those.
type RawField struct {
	Name  string
	Value any
}

// RawObject is one object of a decoded document with its key order
// preserved. encoding/json maps cannot represent key order, so documents
// are decoded through the token stream instead.
type RawObject struct {
	Fields []RawField
}

// Type returns the object's "@type" tag, or "".
func (o *RawObject) Type() string {
	s, _ := o.stringField("@type")
	return s
}

// ID returns the object's "@id" identity, or "".
func (o *RawObject) ID() string {
	s, _ := o.stringField("@id")
	return s
}

// IsRef reports whether the object is a minimal reference: exactly the
// "@type" and "@id" fields and nothing else. The serializer refuses nodes
// with no properties and no identifier, so a bare {"@type","@id"} object
// in a well-formed document is always a reference.
func (o *RawObject) IsRef() bool {
	if len(o.Fields) != 2 {
		return false
	}
	return o.Type() != "" && o.ID() != ""
}

// Get returns the value of the named field.
func (o *RawObject) Get(name string) (any, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (o *RawObject) stringField(name string) (string, bool) {
	v, ok := o.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DecodeDocument parses a serialized document, preserving object key
// order. The root must be a single JSON object with no trailing content.
func DecodeDocument(r io.Reader) (*RawObject, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %v", ErrMalformedDocument, err),
			"dats", "DecodeDocument", "read document root")
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: document root must be an object", ErrMalformedDocument),
			"dats", "DecodeDocument", "read document root")
	}

	root, err := decodeObject(dec)
	if err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %v", ErrMalformedDocument, err),
			"dats", "DecodeDocument", "decode document")
	}

	if dec.More() {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: trailing content after document root", ErrMalformedDocument),
			"dats", "DecodeDocument", "decode document")
	}
	return root, nil
}

// decodeObject consumes tokens after an opening '{' up to the matching '}'.
func decodeObject(dec *json.Decoder) (*RawObject, error) {
	obj := &RawObject{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok {
			if delim == '}' {
				return obj, nil
			}
			return nil, fmt.Errorf("unexpected %v in object", delim)
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, RawField{Name: key, Value: value})
	}
}

// decodeArray consumes tokens after an opening '[' up to the matching ']'.
func decodeArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != ']' {
		return nil, fmt.Errorf("unterminated array: %v", tok)
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %v", delim)
		}
	}
	// Scalar token: string, float64, bool, or nil.
	return tok, nil
}
