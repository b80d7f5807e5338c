package store

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newID returns a fresh ObjectID in hex form, so every backend hands out
// ids of the same shape as the mongo backend.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// prepare copies doc and stamps the store-managed fields onto the copy.
func prepare(doc Document, id string, now time.Time) Document {
	out := cloneDocument(doc)
	if out == nil {
		out = Document{}
	}
	out[FieldID] = id
	out[FieldCreatedAt] = now.UTC()
	return out
}

// cloneDocument copies a document deeply enough that callers cannot mutate
// stored slices or nested objects through the returned value.
func cloneDocument(src Document) Document {
	if src == nil {
		return nil
	}
	dst := make(Document, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// matches reports whether every filter entry equals the document's
// top-level field of the same name.
func matches(doc, filter Document) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if !equalValues(got, want) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// checkCollection rejects names that cannot safely become a file name or
// a table key.
func checkCollection(name string) error {
	if name == "" {
		return fmt.Errorf("empty collection name")
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid collection name %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}
