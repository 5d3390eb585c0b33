// internal/store/postgres/query.go
package postgres

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront-labs/storefront-api/internal/store"
)

// applyFilter interprets filter clauses as WHERE conditions. Column names
// only ever come from the known product fields; anything else turns the
// clause into a predicate that matches nothing.
func applyFilter(query *gorm.DB, filter store.Filter) *gorm.DB {
	for _, c := range filter {
		switch c := c.(type) {
		case store.Equals:
			name, kind, ok := store.ProductField(c.Field)
			if !ok {
				query = query.Where("1 = 0")
				continue
			}
			value, ok := store.Coerce(kind, c.Value)
			if !ok || (name == "id" && !validID(value.(string))) {
				query = query.Where("1 = 0")
				continue
			}
			query = query.Where(name+" = ?", value)

		case store.Range:
			name, kind, ok := store.ProductField(c.Field)
			if !ok || kind != store.KindNumber {
				query = query.Where("1 = 0")
				continue
			}
			if c.Min != nil {
				query = query.Where(name+" >= ?", *c.Min)
			}
			if c.Max != nil {
				query = query.Where(name+" <= ?", *c.Max)
			}

		case store.TextSearch:
			pattern := "%" + escapeLike(strings.ToLower(c.Term)) + "%"
			var conds []string
			var args []interface{}
			for _, f := range c.Fields {
				name, kind, ok := store.ProductField(f)
				if !ok || kind != store.KindString || name == "id" {
					continue
				}
				conds = append(conds, "LOWER("+name+") LIKE ?")
				args = append(args, pattern)
			}
			if len(conds) == 0 {
				query = query.Where("1 = 0")
				continue
			}
			query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}
	return query
}

// applySort orders by a known product field. Unknown fields fall back to
// insertion order, which is also the order used when no sort is given.
func applySort(query *gorm.DB, sort store.Sort) *gorm.DB {
	if name, _, ok := store.ProductField(sort.Field); ok {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: sort.Desc})
	}
	return query.Order("created_at ASC").Order("id ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
