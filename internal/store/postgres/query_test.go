package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

func dryRunDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func toSQL(db *gorm.DB, filter store.Filter, sort store.Sort) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		q := applyFilter(tx.Model(&models.Product{}), filter)
		return applySort(q, sort).Find(&[]models.Product{})
	})
}

func TestApplyFilter(t *testing.T) {
	db := dryRunDB(t)
	min := 0.0
	max := 50.0

	sql := toSQL(db, store.Filter{
		store.Equals{Field: "category", Value: "books"},
		store.Range{Field: "price", Min: &min, Max: &max},
		store.TextSearch{Fields: []string{"title", "description"}, Term: "50%_off"},
	}, store.Sort{Field: "price", Desc: true})

	assert.Contains(t, sql, "category = 'books'")
	assert.Contains(t, sql, "price >= ")
	assert.Contains(t, sql, "price <= ")
	assert.Contains(t, sql, "(LOWER(title) LIKE ")
	assert.Contains(t, sql, " OR LOWER(description) LIKE ")
	assert.Contains(t, sql, `50\%\_off`)
	assert.Contains(t, sql, `ORDER BY "price" DESC`)
}

func TestApplyFilterUnknownFieldsMatchNothing(t *testing.T) {
	db := dryRunDB(t)

	sql := toSQL(db, store.Filter{store.Equals{Field: "color; DROP TABLE products", Value: "red"}}, store.Sort{})
	assert.Contains(t, sql, "1 = 0")
	assert.NotContains(t, sql, "DROP TABLE")

	sql = toSQL(db, store.Filter{store.Equals{Field: "price", Value: "cheap"}}, store.Sort{Field: "nope"})
	assert.Contains(t, sql, "1 = 0")
	assert.NotContains(t, sql, "nope")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
