package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field names the pipeline reads or writes. quality_score_from_llm is the
// contract field downstream consumers key on; do not rename.
const (
	FieldMessage  = "message"
	FieldUsername = "username"
	FieldScore    = "quality_score_from_llm"
)

// Record is one chat message plus metadata. Fields are kept as raw JSON in
// their original order so a rewrite preserves everything the extractor (or
// anyone else) put there, touching only the score field.
type Record struct {
	keys   []string
	values map[string]json.RawMessage
}

// UnmarshalJSON decodes a JSON object keeping field order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.keys = r.keys[:0]
	r.values = make(map[string]json.RawMessage)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record key must be a string, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := r.values[key]; !dup {
			r.keys = append(r.keys, key)
		}
		r.values[key] = raw
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the record with fields in their original order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(r.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MessageID returns the record identifier as text. Slack exports carry it as
// a string timestamp, but a bare number is tolerated too.
func (r *Record) MessageID() string {
	raw, ok := r.values["message_id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Message returns the message text, or "" when absent or not a string.
func (r *Record) Message() string {
	return r.stringField(FieldMessage)
}

// Username returns the author name, or "" when absent or not a string.
func (r *Record) Username() string {
	return r.stringField(FieldUsername)
}

// HasMessage reports whether the message field exists and is a string.
func (r *Record) HasMessage() bool {
	raw, ok := r.values[FieldMessage]
	if !ok {
		return false
	}
	var s string
	return json.Unmarshal(raw, &s) == nil
}

// BlankMessage reports whether the message text is empty or whitespace-only.
func (r *Record) BlankMessage() bool {
	return strings.TrimSpace(r.Message()) == ""
}

// HasScore reports whether quality_score_from_llm is present and non-null.
// An explicit null counts as unscored, matching how earlier extractions
// emitted null placeholders.
func (r *Record) HasScore() bool {
	raw, ok := r.values[FieldScore]
	if !ok {
		return false
	}
	return !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Score returns the stored score and whether one is present.
func (r *Record) Score() (int, bool) {
	if !r.HasScore() {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(r.values[FieldScore], &n); err != nil {
		return 0, false
	}
	return n, true
}

// SetScore writes quality_score_from_llm, appending the field if it is new.
func (r *Record) SetScore(score int) {
	if r.values == nil {
		r.values = make(map[string]json.RawMessage)
	}
	if _, ok := r.values[FieldScore]; !ok {
		r.keys = append(r.keys, FieldScore)
	}
	r.values[FieldScore] = json.RawMessage(strconv.Itoa(score))
}

func (r *Record) stringField(key string) string {
	raw, ok := r.values[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
