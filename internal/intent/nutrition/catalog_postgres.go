package nutrition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostgresCatalog reads and writes the foods table:
//
//	foods(id uuid pk, name text, normalized_name text unique,
//	      calories, protein, carbs, fat numeric, is_liquid bool,
//	      reference_quantity numeric, preparation text null, source text)
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const recordColumns = `id, name, calories, protein, carbs, fat, is_liquid, reference_quantity`

const findFuzzySQL = `SELECT ` + recordColumns + `
FROM foods
WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
ORDER BY CASE WHEN preparation = $2 THEN 0 WHEN preparation IS NULL THEN 1 ELSE 2 END,
         length(name), name
LIMIT 1`

const findNormalizedSQL = `SELECT ` + recordColumns + `
FROM foods
WHERE normalized_name = $1`

// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
const upsertSQL = `INSERT INTO foods
    (id, name, normalized_name, calories, protein, carbs, fat, is_liquid, reference_quantity, preparation, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'ai')
ON CONFLICT (normalized_name) DO UPDATE SET normalized_name = EXCLUDED.normalized_name
RETURNING ` + recordColumns

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c *PostgresCatalog) FindByNameFuzzy(ctx context.Context, name string, preferUncooked bool) (*Record, error) {
	preparation := "cooked"
	if preferUncooked {
		preparation = "uncooked"
	}
	row := c.db.QueryRowContext(ctx, findFuzzySQL, likeEscaper.Replace(name), preparation)
	return scanRecord(row)
}

func (c *PostgresCatalog) FindByNormalizedName(ctx context.Context, normalized string) (*Record, error) {
	return scanRecord(c.db.QueryRowContext(ctx, findNormalizedSQL, normalized))
}

func (c *PostgresCatalog) InsertIfAbsent(ctx context.Context, normalized string, rec Record) (*Record, error) {
	var preparation sql.NullString
	if m := prepWords.FindString(rec.Name); m != "" {
		preparation = sql.NullString{String: preparationOf(m), Valid: true}
	}

	row := c.db.QueryRowContext(ctx, upsertSQL,
		uuid.NewString(), DisplayName(rec.Name), normalized,
		rec.Calories, rec.Protein, rec.Carbs, rec.Fat, rec.IsLiquid, rec.ReferenceQuantity,
		preparation,
	)
	stored, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert food %q returned no row", normalized)
	}
	return stored, nil
}

func preparationOf(word string) string {
	w := strings.ToLower(word)
	if w == "cooked" || strings.HasPrefix(w, "cocid") {
		return "cooked"
	}
	return "uncooked"
}

func scanRecord(row *sql.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Name, &r.Calories, &r.Protein, &r.Carbs, &r.Fat, &r.IsLiquid, &r.ReferenceQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan food: %w", err)
	}
	return &r, nil
}
