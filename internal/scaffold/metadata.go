package scaffold

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Patch lists the top-level metadata fields rewritten after copy.
type Patch struct {
	Name        string
	ClearAuthor bool
}

func (p Patch) fields() []member {
	fields := []member{{key: "name", value: encodeString(p.Name)}}
	if p.ClearAuthor {
		fields = append(fields, member{key: "author", value: encodeString("")})
	}
	return fields
}

// PatchMetadata rewrites the patched fields of the JSON object stored at path.
// Key order is preserved; missing keys are appended. The document is written
// back with two-space indentation.
func PatchMetadata(path string, patch Patch) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, err := patchDocument(data, patch.fields())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// member is one top-level key of a JSON object with its raw value.
type member struct {
	key   string
	value json.RawMessage
}

func patchDocument(data []byte, fields []member) ([]byte, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		found := false
		for i := range members {
			if members[i].key == f.key {
				members[i].value = f.value
				found = true
				break
			}
		}
		if !found {
			members = append(members, f)
		}
	}

	return encodeObject(members)
}

var errNotObject = errors.New("metadata document is not a JSON object")

func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var members []member
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse metadata: unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse metadata value %q: %w", key, err)
		}
		// a repeated key keeps its first position and its last value
		if i, ok := seen[key]; ok {
			members[i].value = value
			continue
		}
		seen[key] = len(members)
		members = append(members, member{key: key, value: value})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("parse metadata: trailing data after object")
	}
	return members, nil
}

func encodeObject(members []member) ([]byte, error) {
	if len(members) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, m := range members {
		buf.WriteString("  ")
		buf.Write(encodeString(m.key))
		buf.WriteString(": ")
		if err := json.Indent(&buf, bytes.TrimSpace(m.value), "  ", "  "); err != nil {
			return nil, fmt.Errorf("encode metadata value %q: %w", m.key, err)
		}
		if i < len(members)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encodeString(s string) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// a string always encodes
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
