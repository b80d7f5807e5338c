package resource

import (
	"fmt"
	"time"

	"github.com/stevemurr/whiskers-api/schema"
	"github.com/stevemurr/whiskers-api/store"
)

// Helpers reading stored documents back out. Backends differ in how values
// round-trip (timestamps may be time.Time or strings, lists []string or
// []any), so each accessor accepts every shape a backend can return.

func docID(doc store.Document) string {
	switch id := doc[store.FieldID].(type) {
	case nil:
		return ""
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func docString(doc store.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docOptString(doc store.Document, key string) *string {
	switch v := doc[key].(type) {
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func docStrings(doc store.Document, key string) []string {
	out := []string{}
	switch v := doc[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// docTime renders a stored timestamp as an RFC 3339 string, or nil when
// the field is absent or null.
func docTime(doc store.Document, key string) *string {
	var s string
	switch v := doc[key].(type) {
	case time.Time:
		s = schema.FormatTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		s = schema.FormatTime(*v)
	case string:
		if t, err := schema.ParseTime(v); err == nil {
			s = schema.FormatTime(t)
		} else {
			s = v
		}
	default:
		return nil
	}
	return &s
}
