package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nutrilog/backend/internal/domain"
)

// SQLiteStore persists user custom foods and logged meals. It backs the
// user-history provider and the meal logging endpoint.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS custom_foods (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        brand TEXT NOT NULL DEFAULT '',
        kcal_per_100g REAL NOT NULL,
        protein_g REAL NOT NULL,
        carbs_g REAL NOT NULL,
        fat_g REAL NOT NULL,
        serving_grams REAL NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS logged_meals (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        brand TEXT NOT NULL DEFAULT '',
        portion_grams REAL NOT NULL,
        kcal REAL NOT NULL,
        protein_g REAL NOT NULL,
        carbs_g REAL NOT NULL,
        fat_g REAL NOT NULL,
        source TEXT NOT NULL DEFAULT '',
        logged_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_custom_foods_user ON custom_foods(user_id, name);
    CREATE INDEX IF NOT EXISTS idx_logged_meals_user ON logged_meals(user_id, logged_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SearchCustomFoods returns the user's custom foods whose name or brand
// matches the query, newest first
func (s *SQLiteStore) SearchCustomFoods(ctx context.Context, userID, query string, limit int) ([]domain.CustomFood, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, name, brand, kcal_per_100g, protein_g, carbs_g, fat_g, serving_grams, created_at
        FROM custom_foods
        WHERE user_id = ? AND (name LIKE ? COLLATE NOCASE OR brand LIKE ? COLLATE NOCASE)
        ORDER BY created_at DESC
        LIMIT ?`,
		userID, likePattern(query), likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom foods: %w", err)
	}
	defer rows.Close()

	var foods []domain.CustomFood
	for rows.Next() {
		var food domain.CustomFood
		var createdAt string
		if err := rows.Scan(&food.ID, &food.UserID, &food.Name, &food.Brand,
			&food.KcalPer100g, &food.ProteinG, &food.CarbsG, &food.FatG,
			&food.ServingGrams, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom food: %w", err)
		}
		if food.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		foods = append(foods, food)
	}

	return foods, rows.Err()
}

// SearchLoggedMeals returns the user's logged meals whose name matches the
// query, most recent first
func (s *SQLiteStore) SearchLoggedMeals(ctx context.Context, userID, query string, limit int) ([]domain.LoggedMeal, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, name, brand, portion_grams, kcal, protein_g, carbs_g, fat_g, source, logged_at
        FROM logged_meals
        WHERE user_id = ? AND name LIKE ? COLLATE NOCASE
        ORDER BY logged_at DESC
        LIMIT ?`,
		userID, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logged meals: %w", err)
	}
	defer rows.Close()

	var meals []domain.LoggedMeal
	for rows.Next() {
		var meal domain.LoggedMeal
		var loggedAt string
		if err := rows.Scan(&meal.ID, &meal.UserID, &meal.Name, &meal.Brand,
			&meal.PortionGrams, &meal.Kcal, &meal.ProteinG, &meal.CarbsG,
			&meal.FatG, &meal.Source, &loggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan logged meal: %w", err)
		}
		if meal.LoggedAt, err = time.Parse(time.RFC3339, loggedAt); err != nil {
			return nil, fmt.Errorf("failed to parse logged_at: %w", err)
		}
		meals = append(meals, meal)
	}

	return meals, rows.Err()
}

// SaveCustomFood inserts a user-defined food
func (s *SQLiteStore) SaveCustomFood(ctx context.Context, food *domain.CustomFood) error {
	if food.CreatedAt.IsZero() {
		food.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO custom_foods (id, user_id, name, brand, kcal_per_100g, protein_g, carbs_g, fat_g, serving_grams, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		food.ID, food.UserID, food.Name, food.Brand,
		food.KcalPer100g, food.ProteinG, food.CarbsG, food.FatG,
		food.ServingGrams, food.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert custom food: %w", err)
	}

	return nil
}

// LogMeal inserts a logged meal
func (s *SQLiteStore) LogMeal(ctx context.Context, meal *domain.LoggedMeal) error {
	if meal.LoggedAt.IsZero() {
		meal.LoggedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO logged_meals (id, user_id, name, brand, portion_grams, kcal, protein_g, carbs_g, fat_g, source, logged_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.UserID, meal.Name, meal.Brand, meal.PortionGrams,
		meal.Kcal, meal.ProteinG, meal.CarbsG, meal.FatG, meal.Source,
		meal.LoggedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert logged meal: %w", err)
	}

	return nil
}

// likePattern wraps a query for a contains-style LIKE match
func likePattern(query string) string {
	return "%" + query + "%"
}
