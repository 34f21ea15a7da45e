package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ordbok/pkg/models"
)

// WordRepository handles database operations for the word catalog
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetByID returns a word by its numeric id
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// GetBySwedish returns a word by its Swedish headword
func (r *WordRepository) GetBySwedish(ctx context.Context, swedish string) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE swedish = $1", swedish)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %q: %w", swedish, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// GetAll returns the full catalog
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY swedish ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	return words, nil
}

// Random returns up to limit words in random order, for quiz building
func (r *WordRepository) Random(ctx context.Context, limit int) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY RANDOM() LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get random words: %v", err)
	}
	return words, nil
}

// Create inserts a new catalog entry. Difficulty is validated before any write.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.DifficultyLevel < 1 || word.DifficultyLevel > 5 {
		return fmt.Errorf("word %q: %w", word.Swedish, ErrInvalidDifficulty)
	}

	query := `
		INSERT INTO words (swedish, english, word_type, difficulty_level)
		VALUES ($1, $2, $3, $4)
	`
	if Dialect() == DialectPostgres {
		err := DB.QueryRowContext(ctx, query+" RETURNING id, created_at",
			word.Swedish, word.English, word.WordType, word.DifficultyLevel,
		).Scan(&word.ID, &word.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("word %q: %w", word.Swedish, ErrConflict)
			}
			return fmt.Errorf("failed to create word: %v", err)
		}
		return nil
	}

	result, err := DB.ExecContext(ctx, query,
		word.Swedish, word.English, word.WordType, word.DifficultyLevel)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("word %q: %w", word.Swedish, ErrConflict)
		}
		return fmt.Errorf("failed to create word: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	word.ID = id

	return DB.QueryRowContext(ctx, "SELECT created_at FROM words WHERE id = $1", word.ID).Scan(&word.CreatedAt)
}
