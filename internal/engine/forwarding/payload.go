package forwarding

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"formhook/internal/platform/models"
)

const (
	FormTitleKey = "_form_title"
	FormIDKey    = "_form_id"

	listSeparator = ", "
)

// Payload is the flat record posted to the webhook. Keys keep the position
// of their first insertion; setting an existing key replaces its value.
type Payload struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewPayload() *Payload {
	return &Payload{m: orderedmap.New[string, string]()}
}

func (p *Payload) Set(key, value string) {
	p.m.Set(key, value)
}

func (p *Payload) Get(key string) (string, bool) {
	return p.m.Get(key)
}

func (p *Payload) Len() int {
	return p.m.Len()
}

func (p *Payload) Keys() []string {
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (p *Payload) Map() map[string]string {
	out := make(map[string]string, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON writes the object in insertion order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	return p.m.MarshalJSON()
}

// BuildPayload flattens a submission into label → value pairs and appends
// the form metadata. Metadata wins over a field that uses the same label.
func BuildPayload(event models.SubmissionEvent) *Payload {
	payload := NewPayload()

	for _, field := range event.Fields {
		key := field.Label
		if key == "" {
			key = field.Key
		}
		payload.Set(key, flattenValue(field.Value))
	}

	payload.Set(FormTitleKey, event.Form.Title)
	payload.Set(FormIDKey, event.Form.ID.String())

	return payload
}

func flattenValue(v models.FieldValue) string {
	if !v.IsList() {
		return toString(v.Scalar())
	}

	parts := make([]string, 0, len(v.Items()))
	for _, item := range v.Items() {
		if !truthy(item) {
			continue
		}
		parts = append(parts, itemString(item))
	}
	return strings.Join(parts, listSeparator)
}

// truthy follows the host's notion of an empty value: null, false, zero,
// "" and "0" are dropped from lists.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != "" && t != "0"
	case bool:
		return t
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	}

	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return true
}

// itemString renders a list entry the way the host joins them: true is "1"
// and numbers drop insignificant digits.
func itemString(v interface{}) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return ""
	case json.Number:
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return toString(v)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case []interface{}, map[string]interface{}:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(encoded)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
