package admin

import (
	"strconv"
	"strings"
	"time"

	"library-admin/internal/models"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	dateLayout     = "2006-01-02"
)

// Value reads a top-level field
func Value(key string) Accessor {
	return func(r models.Record) string {
		return r.String(key)
	}
}

// Nested reads a field of a nested object, "" when the object is absent
func Nested(object, key string) Accessor {
	return func(r models.Record) string {
		obj, ok := r.Object(object)
		if !ok {
			return ""
		}
		return obj.String(key)
	}
}

// Names joins the name field of a relation list
func Names(list string) Accessor {
	return func(r models.Record) string {
		items := r.List(list)
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.String("name"))
		}
		return strings.Join(names, ", ")
	}
}

// AuthorName formats an author as "first last", without the space when last is absent
func AuthorName(r models.Record) string {
	first := r.String("firstName")
	last := r.String("lastName")
	if last == "" {
		return first
	}
	return first + " " + last
}

// AuthorNames joins the display names of the record's authors
func AuthorNames(list string) Accessor {
	return func(r models.Record) string {
		items := r.List(list)
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, AuthorName(item))
		}
		return strings.Join(names, ", ")
	}
}

// IDs joins the ids of a relation list, used to prefill id-list fields
func IDs(list string) Accessor {
	return func(r models.Record) string {
		items := r.List(list)
		ids := make([]string, 0, len(items))
		for _, item := range items {
			if id := item.ID(); id != 0 {
				ids = append(ids, strconv.FormatInt(id, 10))
			}
		}
		return strings.Join(ids, ", ")
	}
}

// YesNo renders a boolean field
func YesNo(key string) Accessor {
	return func(r models.Record) string {
		v, ok := r[key].(bool)
		if !ok {
			return ""
		}
		if v {
			return "yes"
		}
		return "no"
	}
}

// DateTime renders an ISO-8601 timestamp as "2006-01-02 15:04"
func DateTime(key string) Accessor {
	return timestamp(key, dateTimeLayout)
}

// Date renders an ISO-8601 timestamp as "2006-01-02"
func Date(key string) Accessor {
	return timestamp(key, dateLayout)
}

func timestamp(key, layout string) Accessor {
	return func(r models.Record) string {
		raw := r.String(key)
		if raw == "" {
			return ""
		}
		for _, in := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
			if t, err := time.Parse(in, raw); err == nil {
				return t.Format(layout)
			}
		}
		return raw
	}
}
