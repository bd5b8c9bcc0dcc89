package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a single entity as returned by the catalogue API.
// Its shape varies per entity type; numbers are kept as json.Number.
type Record map[string]interface{}

// Pagination is the envelope accompanying list responses
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize,omitempty"`
	TotalItems  int64 `json:"totalItems,omitempty"`
}

// Page is a list response: one page of records plus its pagination
type Page struct {
	Data       []Record    `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

// User is the logged-in user marker
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Account  string `json:"account"`
}

// ID returns the record's numeric identifier, or 0 when it has none
func (r Record) ID() int64 {
	id, _ := AsInt(r["id"])
	return id
}

// String returns the display form of a top-level field, "" when absent
func (r Record) String(key string) string {
	return Display(r[key])
}

// Object returns a nested object field
func (r Record) Object(key string) (Record, bool) {
	switch v := r[key].(type) {
	case map[string]interface{}:
		return Record(v), true
	case Record:
		return v, true
	}
	return nil, false
}

// List returns a nested array of objects; non-object items are skipped
func (r Record) List(key string) []Record {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Display formats a decoded JSON value for a table cell
func Display(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, Display(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// AsInt converts a decoded JSON value into an int64
func AsInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// DecodeRecord decodes a single JSON object keeping numbers exact.
// An empty body decodes to an empty record.
func DecodeRecord(data []byte) (Record, error) {
	rec := Record{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return rec, nil
	}
	if err := decode(data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodePage decodes a list response
func DecodePage(data []byte) (*Page, error) {
	var page Page
	if len(strings.TrimSpace(string(data))) == 0 {
		return &page, nil
	}
	if err := decode(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	return dec.Decode(v)
}
