package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// FanLetterStore persists fan letters.
type FanLetterStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewFanLetterStore builds a store on the shared pool.
func NewFanLetterStore(pool *pgxpool.Pool, log *zap.Logger) *FanLetterStore {
	return &FanLetterStore{pool: pool, log: log}
}

// Create stores one letter and returns its id.
func (s *FanLetterStore) Create(ctx context.Context, sessionID, userID, category, message string) (string, error) {
	if s == nil || s.pool == nil {
		return "", ErrNotConfigured
	}

	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fan_letters (id, session_id, user_id, category, message)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		id, sessionID, userID, category, message)
	if err != nil {
		return "", fmt.Errorf("insert fan letter: %w", err)
	}

	s.log.Info("fan letter stored", zap.String("letter_id", id), zap.String("category", category))
	return id, nil
}
