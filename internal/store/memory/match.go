// internal/store/memory/match.go
package memory

import (
	"strings"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

func matches(p *models.Product, filter store.Filter) bool {
	for _, clause := range filter {
		switch c := clause.(type) {
		case store.Equals:
			name, kind, ok := store.ProductField(c.Field)
			if !ok {
				return false
			}
			want, ok := store.Coerce(kind, c.Value)
			if !ok || compare(kind, fieldValue(p, name), want) != 0 {
				return false
			}
		case store.Range:
			name, kind, ok := store.ProductField(c.Field)
			if !ok || kind != store.KindNumber {
				return false
			}
			v := fieldValue(p, name).(float64)
			if c.Min != nil && v < *c.Min {
				return false
			}
			if c.Max != nil && v > *c.Max {
				return false
			}
		case store.TextSearch:
			if !containsAny(p, c) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsAny(p *models.Product, c store.TextSearch) bool {
	term := strings.ToLower(c.Term)
	for _, f := range c.Fields {
		name, kind, ok := store.ProductField(f)
		if !ok || kind != store.KindString {
			continue
		}
		if strings.Contains(strings.ToLower(fieldValue(p, name).(string)), term) {
			return true
		}
	}
	return false
}

func fieldValue(p *models.Product, name string) any {
	switch name {
	case "id":
		return p.ID
	case "title":
		return p.Title
	case "description":
		return p.Description
	case "code":
		return p.Code
	case "category":
		return p.Category
	case "price":
		return p.Price
	case "stock":
		return float64(p.Stock)
	case "status":
		return p.Status
	}
	return nil
}

func compare(kind store.FieldKind, a, b any) int {
	switch kind {
	case store.KindNumber:
		x, y := a.(float64), b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case store.KindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	default:
		return strings.Compare(a.(string), b.(string))
	}
}
