package inscribe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// CanonicalJSON renders value as deterministic JSON: object keys sorted,
// no insignificant whitespace, numbers preserved digit for digit. Two
// writers that canonicalize the same document produce the same bytes and
// therefore the same content ID.
func CanonicalJSON(value any) ([]byte, error) {
	normalized, err := normalizeValue(value)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if err := writeCanonical(&buffer, normalized); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// normalizeValue reduces value to the JSON-decoded shapes writeCanonical
// understands. Structs and raw numerics round-trip through encoding/json
// with UseNumber so numeric text survives untouched.
func normalizeValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string, json.Number:
		return typed, nil
	case []any:
		result := make([]any, len(typed))
		for index, item := range typed {
			normalized, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			result[index] = normalized
		}
		return result, nil
	case map[string]any:
		result := make(map[string]any, len(typed))
		for key, item := range typed {
			normalized, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			result[key] = normalized
		}
		return result, nil
	default:
		payload, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize document value: %w", err)
		}

		var parsed any
		decoder := json.NewDecoder(bytes.NewReader(payload))
		decoder.UseNumber()
		if err := decoder.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode document value: %w", err)
		}

		return normalizeValue(parsed)
	}
}

func writeCanonical(buffer *bytes.Buffer, value any) error {
	switch typed := value.(type) {
	case nil:
		buffer.WriteString("null")
		return nil
	case bool:
		buffer.WriteString(strconv.FormatBool(typed))
		return nil
	case string:
		return writeJSONString(buffer, typed)
	case json.Number:
		buffer.WriteString(typed.String())
		return nil
	case []any:
		return writeCanonicalArray(buffer, typed)
	case map[string]any:
		return writeCanonicalObject(buffer, typed)
	default:
		return fmt.Errorf("unsupported document value type %T", typed)
	}
}

func writeCanonicalArray(buffer *bytes.Buffer, items []any) error {
	buffer.WriteByte('[')
	for index, item := range items {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := writeCanonical(buffer, item); err != nil {
			return err
		}
	}
	buffer.WriteByte(']')
	return nil
}

func writeCanonicalObject(buffer *bytes.Buffer, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	buffer.WriteByte('{')
	for index, key := range keys {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := writeJSONString(buffer, key); err != nil {
			return err
		}
		buffer.WriteByte(':')
		if err := writeCanonical(buffer, fields[key]); err != nil {
			return err
		}
	}
	buffer.WriteByte('}')
	return nil
}

// writeJSONString covers both string values and object keys so the two
// always escape identically.
func writeJSONString(buffer *bytes.Buffer, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buffer.Write(encoded)
	return nil
}
