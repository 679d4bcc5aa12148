package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	kindNull      = "null"
	kindBool      = "bool"
	kindInt       = "int"
	kindFloat     = "float"
	kindTimestamp = "timestamp"
	kindString    = "string"
)

// storedValue keeps the type of every field so timestamps come back as
// Timestamp and numbers keep their integer or float shape.
type storedValue struct {
	Kind      string     `json:"kind"`
	Bool      *bool      `json:"bool,omitempty"`
	Int       *int64     `json:"int,omitempty"`
	Float     *float64   `json:"float,omitempty"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
	String    *string    `json:"string,omitempty"`
}

type storedDoc struct {
	Fields map[string]storedValue `json:"fields"`
}

// EncodeDocument serializes a document for a backend.
func EncodeDocument(doc Document) ([]byte, error) {
	sd := storedDoc{Fields: make(map[string]storedValue, len(doc))}
	for name, v := range doc {
		sv, err := toStored(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		sd.Fields[name] = sv
	}
	data, err := json.Marshal(sd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses bytes produced by EncodeDocument.
func DecodeDocument(data []byte) (Document, error) {
	var sd storedDoc
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	doc := make(Document, len(sd.Fields))
	for name, sv := range sd.Fields {
		v, err := fromStored(sv)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		doc[name] = v
	}
	return doc, nil
}

func toStored(v any) (storedValue, error) {
	switch x := v.(type) {
	case nil:
		return storedValue{Kind: kindNull}, nil
	case bool:
		return storedValue{Kind: kindBool, Bool: &x}, nil
	case int:
		n := int64(x)
		return storedValue{Kind: kindInt, Int: &n}, nil
	case int64:
		return storedValue{Kind: kindInt, Int: &x}, nil
	case float64:
		return storedValue{Kind: kindFloat, Float: &x}, nil
	case string:
		return storedValue{Kind: kindString, String: &x}, nil
	case Timestamp:
		return storedValue{Kind: kindTimestamp, Timestamp: &x}, nil
	case *Timestamp:
		if x == nil {
			return storedValue{Kind: kindNull}, nil
		}
		ts := *x
		return storedValue{Kind: kindTimestamp, Timestamp: &ts}, nil
	case time.Time:
		ts := NewTimestamp(x)
		return storedValue{Kind: kindTimestamp, Timestamp: &ts}, nil
	default:
		return storedValue{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromStored(sv storedValue) (any, error) {
	switch sv.Kind {
	case kindNull:
		return nil, nil
	case kindBool:
		if sv.Bool == nil {
			return nil, fmt.Errorf("bool value missing")
		}
		return *sv.Bool, nil
	case kindInt:
		if sv.Int == nil {
			return nil, fmt.Errorf("int value missing")
		}
		return *sv.Int, nil
	case kindFloat:
		if sv.Float == nil {
			return nil, fmt.Errorf("float value missing")
		}
		return *sv.Float, nil
	case kindTimestamp:
		if sv.Timestamp == nil {
			return nil, fmt.Errorf("timestamp value missing")
		}
		return *sv.Timestamp, nil
	case kindString:
		if sv.String == nil {
			return nil, fmt.Errorf("string value missing")
		}
		return *sv.String, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", sv.Kind)
	}
}
