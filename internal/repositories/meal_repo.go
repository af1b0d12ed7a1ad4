package repositories

import (
	"context"
	"fmt"
	"strings"

	"dinedash/internal/models"

	"github.com/google/uuid"
)

// MealRepository reads the restaurant catalog. Meals are owned by the
// restaurant service; orders never write them.
type MealRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Meal, error)
}

type mealRepo struct {
	db DB
}

func NewMealRepo(db DB) MealRepository {
	return &mealRepo{db: db}
}

// GetByIDs returns the meals that exist among ids, keyed by ID. Unknown IDs
// are simply absent from the result.
func (r *mealRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Meal, error) {
	meals := make(map[uuid.UUID]*models.Meal, len(ids))
	if len(ids) == 0 {
		return meals, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+strings.Join(mealColumns, ", ")+`
		FROM meals
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get meals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals[meal.ID] = meal
	}
	return meals, rows.Err()
}
