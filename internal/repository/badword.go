package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"social_chat/pkg/logger"
)

type BadWordRepository interface {
	ListWords(ctx context.Context) ([]string, error)
}

type badWordRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewBadWordRepository(db *pgxpool.Pool, log logger.Logger) BadWordRepository {
	return &badWordRepository{db: db, log: log}
}

func (r *badWordRepository) ListWords(ctx context.Context) ([]string, error) {
	query := `SELECT word FROM bad_words`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list bad words", "error", err)
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			r.log.Error("Failed to scan bad word", "error", err)
			return nil, err
		}
		words = append(words, word)
	}

	return words, rows.Err()
}
