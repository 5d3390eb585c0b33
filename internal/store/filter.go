// internal/store/filter.go
package store

import (
	"strconv"
	"strings"
)

// Clause is one predicate of a product filter. The set is closed: Equals,
// Range and TextSearch. Adapters translate them to their own query language.
type Clause interface {
	clause()
}

// Equals matches records whose Field equals Value exactly.
type Equals struct {
	Field string
	Value any
}

// Range matches records whose numeric Field lies within the inclusive
// bounds. A nil bound is open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// TextSearch matches records where any of Fields contains Term, ignoring
// case.
type TextSearch struct {
	Fields []string
	Term   string
}

func (Equals) clause()     {}
func (Range) clause()      {}
func (TextSearch) clause() {}

// Filter is a conjunction of clauses. An empty filter matches everything.
type Filter []Clause

type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
)

var productFields = map[string]FieldKind{
	"id":          KindString,
	"title":       KindString,
	"description": KindString,
	"code":        KindString,
	"category":    KindString,
	"price":       KindNumber,
	"stock":       KindNumber,
	"status":      KindBool,
}

// ProductField resolves a client supplied field name to a known product
// field. "_id" is accepted as an alias of "id".
func ProductField(name string) (string, FieldKind, bool) {
	name = strings.TrimSpace(name)
	if name == "_id" {
		name = "id"
	}
	kind, ok := productFields[name]
	return name, kind, ok
}

// Coerce converts an Equals value to the Go type of a field of the given
// kind. It reports false when the value cannot represent that kind, in
// which case the clause matches nothing.
func Coerce(kind FieldKind, value any) (any, bool) {
	switch kind {
	case KindNumber:
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, false
			}
			return f, true
		}
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			return v == "true", true
		}
	case KindString:
		switch v := value.(type) {
		case string:
			return v, true
		case bool:
			return strconv.FormatBool(v), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		}
	}
	return nil, false
}
