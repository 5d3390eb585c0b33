// internal/store/mongo/query.go
package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/storefront-labs/storefront-api/internal/store"
)

// matchNothing is used for clauses on fields products do not have.
var matchNothing = bson.M{"_id": bson.M{"$in": bson.A{}}}

func buildFilter(filter store.Filter) bson.M {
	var and []bson.M
	for _, c := range filter {
		switch c := c.(type) {
		case store.Equals:
			name, kind, ok := store.ProductField(c.Field)
			if !ok {
				and = append(and, matchNothing)
				continue
			}
			value, ok := store.Coerce(kind, c.Value)
			if !ok {
				and = append(and, matchNothing)
				continue
			}
			and = append(and, bson.M{documentField(name): value})

		case store.Range:
			name, kind, ok := store.ProductField(c.Field)
			if !ok || kind != store.KindNumber {
				and = append(and, matchNothing)
				continue
			}
			bounds := bson.M{}
			if c.Min != nil {
				bounds["$gte"] = *c.Min
			}
			if c.Max != nil {
				bounds["$lte"] = *c.Max
			}
			if len(bounds) > 0 {
				and = append(and, bson.M{name: bounds})
			}

		case store.TextSearch:
			pattern := primitive.Regex{Pattern: regexp.QuoteMeta(c.Term), Options: "i"}
			var or bson.A
			for _, f := range c.Fields {
				name, kind, ok := store.ProductField(f)
				if !ok || kind != store.KindString || name == "id" {
					continue
				}
				or = append(or, bson.M{name: pattern})
			}
			if len(or) == 0 {
				and = append(and, matchNothing)
				continue
			}
			and = append(and, bson.M{"$or": or})
		}
	}

	switch len(and) {
	case 0:
		return bson.M{}
	case 1:
		return and[0]
	default:
		return bson.M{"$and": and}
	}
}

// buildSort passes the sort field through as given; documents without the
// field simply keep their natural order. Operator-like names are dropped.
func buildSort(sort store.Sort) bson.D {
	var d bson.D
	field := strings.TrimSpace(sort.Field)
	if field != "" && !strings.HasPrefix(field, "$") {
		if name, _, ok := store.ProductField(field); ok {
			field = documentField(name)
		}
		direction := 1
		if sort.Desc {
			direction = -1
		}
		d = append(d, bson.E{Key: field, Value: direction})
	}
	return append(d, bson.E{Key: "created_at", Value: 1}, bson.E{Key: "_id", Value: 1})
}

func documentField(name string) string {
	if name == "id" {
		return "_id"
	}
	return name
}
