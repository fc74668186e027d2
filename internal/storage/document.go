package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/manav03panchal/remindly/internal/model"
)

// Document is the persisted form of all reminders. Its JSON layout is
//
//	{
//	    "specific_date_reminders": {"2024-01-01": "text", ...},
//	    "daily_reminders": ["text", ...]
//	}
//
// written with 4-space indentation.
type Document struct {
	Specific *SpecificMap `json:"specific_date_reminders"`
	Daily    []string     `json:"daily_reminders"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Specific: NewSpecificMap(),
		Daily:    []string{},
	}
}

// EncodeDocument serializes doc in its on-disk form.
func EncodeDocument(doc *Document) ([]byte, error) {
	out := Document{Specific: doc.Specific, Daily: doc.Daily}
	if out.Specific == nil {
		out.Specific = NewSpecificMap()
	}
	if out.Daily == nil {
		out.Daily = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeDocument parses the on-disk form. Missing fields decode as empty
// collections and unknown top-level fields are ignored.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Specific == nil {
		doc.Specific = NewSpecificMap()
	}
	if doc.Daily == nil {
		doc.Daily = []string{}
	}
	return &doc, nil
}

// SpecificMap maps date keys to reminder text and remembers insertion
// order, so a document round-trips with its keys in the order they were
// written.
type SpecificMap struct {
	keys   []model.DateKey
	values map[model.DateKey]string
}

// NewSpecificMap returns an empty map.
func NewSpecificMap() *SpecificMap {
	return &SpecificMap{values: make(map[model.DateKey]string)}
}

// Len returns the number of entries.
func (m *SpecificMap) Len() int {
	return len(m.keys)
}

// Get returns the text stored for date.
func (m *SpecificMap) Get(date model.DateKey) (string, bool) {
	text, ok := m.values[date]
	return text, ok
}

// Set inserts or replaces the text for date. A replaced entry keeps its
// original position.
func (m *SpecificMap) Set(date model.DateKey, text string) {
	if _, ok := m.values[date]; !ok {
		m.keys = append(m.keys, date)
	}
	m.values[date] = text
}

// Delete removes date, reporting whether it was present.
func (m *SpecificMap) Delete(date model.DateKey) bool {
	if _, ok := m.values[date]; !ok {
		return false
	}
	delete(m.values, date)
	for i, k := range m.keys {
		if k == date {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Entries returns a copy of all entries in order.
func (m *SpecificMap) Entries() []model.SpecificReminder {
	entries := make([]model.SpecificReminder, len(m.keys))
	for i, k := range m.keys {
		entries[i] = model.SpecificReminder{Date: k, Text: m.values[k]}
	}
	return entries
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *SpecificMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(string(k))
		if err != nil {
			return nil, err
		}
		val, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
// Keys are kept exactly as written. A later duplicate key replaces the
// earlier value in place. null decodes as an empty map.
func (m *SpecificMap) UnmarshalJSON(data []byte) error {
	*m = SpecificMap{values: make(map[model.DateKey]string)}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("specific_date_reminders: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("specific_date_reminders: expected string key, got %v", tok)
		}

		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("specific_date_reminders[%q]: %w", key, err)
		}
		m.Set(model.DateKey(key), text)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
