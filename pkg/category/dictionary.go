// Package category loads keyword dictionaries and assigns channels to categories.
package category

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrNotObject is returned when the dictionary document is not a JSON object.
	ErrNotObject = errors.New("category dictionary must be a JSON object")
)

// Category is a named bucket and the keywords that select it, in priority order.
type Category struct {
	Name     string
	Keywords []string
}

// Dictionary is an ordered list of categories. Earlier categories win when a
// channel matches keywords from several of them.
type Dictionary []Category

// Names returns the category names in priority order.
func (d Dictionary) Names() []string {
	names := make([]string, 0, len(d))
	for _, c := range d {
		names = append(names, c.Name)
	}
	return names
}

// Load reads a dictionary file. A missing or invalid file yields an empty
// dictionary together with the error so the caller can report it and carry on.
func Load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("failed to read category dictionary: %w", err)
	}

	dict, err := Parse(data)
	if err != nil {
		return Dictionary{}, err
	}

	return dict, nil
}

// Parse decodes a JSON object mapping category names to keyword arrays while
// keeping the key order of the document. Non-array values and non-string
// keywords are ignored; keywords are lowercased.
func Parse(data []byte) (Dictionary, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	tok, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse category dictionary: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	type value struct {
		keywords []string
		isArray  bool
	}
	var order []string
	values := make(map[string]value)

	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse category dictionary: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("failed to parse category dictionary: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse category %q: %w", name, err)
		}

		// Duplicate keys keep their first position and take the last value.
		if _, seen := values[name]; !seen {
			order = append(order, name)
		}
		keywords, isArray := decodeKeywords(raw)
		values[name] = value{keywords: keywords, isArray: isArray}
	}

	if _, err := decoder.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse category dictionary: %w", err)
	}

	dict := Dictionary{}
	for _, name := range order {
		if v := values[name]; v.isArray {
			dict = append(dict, Category{Name: name, Keywords: v.keywords})
		}
	}
	return dict, nil
}

func decodeKeywords(raw json.RawMessage) ([]string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}

	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}

	keywords := make([]string, 0, len(values))
	for _, v := range values {
		kw, ok := v.(string)
		if !ok {
			continue
		}
		keywords = append(keywords, strings.ToLower(kw))
	}
	return keywords, true
}
