package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"taller/internal/core/apperror"
	"taller/internal/core/entity"
)

type sampleRow struct {
	entity.BaseCatalog

	Category string `db:"category"`
	Ignored  string `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[sampleRow]()
	assert.ElementsMatch(t, []string{"id", "version", "code", "name", "created_at", "category"}, cols)
}

func TestStructToMap(t *testing.T) {
	row := sampleRow{
		BaseCatalog: entity.NewBaseCatalog("TEL01", "Tela"),
		Category:    "Telas",
		Ignored:     "skip",
		NoTag:       "skip",
	}

	m := StructToMap(&row)
	assert.Equal(t, "TEL01", m["code"])
	assert.Equal(t, "Tela", m["name"])
	assert.Equal(t, "Telas", m["category"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 6)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil, "item"))

	plain := assert.AnError
	assert.Equal(t, plain, MapError(plain, "item"))

	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "items_code_key"}
	assert.True(t, apperror.IsDuplicate(MapError(dup, "item")))

	fk := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "outputs_item_id_fkey"}
	assert.True(t, apperror.IsConflict(MapError(fk, "item")))
}
