package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ID is an identifier handed to us by the host form system. Hosts send
// either JSON strings or numbers; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int64 reports the identifier as an integer. Integral numbers in any
// notation ("42", "42.0", "4.2e1") convert; empty, fractional or
// non-numeric ids return false.
func (id ID) Int64() (int64, bool) {
	s := strings.TrimSpace(string(id))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func (id ID) String() string {
	return string(id)
}

type FormDescriptor struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// FieldValue is either a single scalar or an ordered list of scalars
// (checkbox groups, multi-selects). List items may be null.
type FieldValue struct {
	scalar interface{}
	items  []interface{}
	list   bool
}

func StringValue(s string) FieldValue {
	return FieldValue{scalar: s}
}

func ScalarValue(v interface{}) FieldValue {
	return FieldValue{scalar: v}
}

func ListValue(items ...interface{}) FieldValue {
	if items == nil {
		items = []interface{}{}
	}
	return FieldValue{items: items, list: true}
}

func (v FieldValue) IsList() bool {
	return v.list
}

func (v FieldValue) Items() []interface{} {
	return v.items
}

func (v FieldValue) Scalar() interface{} {
	return v.scalar
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	if items, ok := raw.([]interface{}); ok {
		*v = ListValue(items...)
		return nil
	}
	*v = ScalarValue(raw)
	return nil
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.list {
		return json.Marshal(v.items)
	}
	return json.Marshal(v.scalar)
}

type SubmissionField struct {
	Key   string     `json:"key"`
	Label string     `json:"label,omitempty"`
	Value FieldValue `json:"value"`
}

// SubmissionEvent is what the host form system reports when a submission completes.
type SubmissionEvent struct {
	Form    FormDescriptor    `json:"form"`
	Fields  []SubmissionField `json:"fields"`
	EntryID ID                `json:"entry_id"`
}
