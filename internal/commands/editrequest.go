package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// EditEntry is one key of an edit request with its undecoded JSON value.
type EditEntry struct {
	Key   string
	Value json.RawMessage
}

// Text returns the value as tag text. Strings are returned unquoted and
// numbers as their literal text; any other JSON type reports false.
func (e EditEntry) Text() (string, bool) {
	raw := bytes.TrimSpace(e.Value)
	if len(raw) == 0 {
		return "", false
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}

// EditRequest holds the entries of a JSON edit document in document order.
// A repeated key keeps its first position and takes its last value.
type EditRequest []EditEntry

// ReadEditRequest parses the JSON document at path.
func ReadEditRequest(path string) (EditRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	req, err := ParseEditRequest(f)
	if err != nil {
		return nil, fmt.Errorf("parse edit request %s: %w", path, err)
	}
	return req, nil
}

// ParseEditRequest reads a single JSON object from r.
func ParseEditRequest(r io.Reader) (EditRequest, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("edit request must be a JSON object")
	}

	var req EditRequest
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

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		if i, dup := index[key]; dup {
			req[i].Value = value
			continue
		}
		index[key] = len(req)
		req = append(req, EditEntry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after edit request")
	}
	return req, nil
}
