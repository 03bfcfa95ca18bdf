package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/google/uuid"
)

// LookupClassifications resolves library exercises by ID and case-insensitive
// name in one round trip. Matches are keyed the way models.ExerciseRef.Key
// produces them; identities absent from the result are unknown to the library.
func (db *DB) LookupClassifications(ctx context.Context, ids []uuid.UUID, names []string) (map[string]models.Classification, error) {
	out := make(map[string]models.Classification)
	if len(ids) == 0 && len(names) == 0 {
		return out, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, LOWER(name), category, input_type
		 FROM exercises
		 WHERE id = ANY($1) OR LOWER(name) = ANY($2)`,
		ids, names)
	if err != nil {
		return nil, fmt.Errorf("querying exercise classifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name, category string
		var inputType models.InputType
		if err := rows.Scan(&id, &name, &category, &inputType); err != nil {
			return nil, fmt.Errorf("scanning exercise classification: %w", err)
		}
		cls := models.Classification{
			BodyRegion: models.RegionForCategory(category),
			InputType:  inputType,
		}
		out[id.String()] = cls
		out[name] = cls
	}
	return out, rows.Err()
}

// QueryExercises lists library exercises with optional filters.
func (db *DB) QueryExercises(ctx context.Context, category, equipment, search string) ([]models.Exercise, error) {
	query := `SELECT id, name, category, input_type, equipment, is_compound, created_at FROM exercises`
	var conds []string
	var args []any

	if category != "" {
		args = append(args, strings.ToLower(category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if equipment != "" {
		args = append(args, strings.ToLower(equipment))
		conds = append(conds, fmt.Sprintf("equipment = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.InputType,
			&e.Equipment, &e.IsCompound, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
