package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

const sessionKeyPrefix = "session:"

// SessionRepository keeps the last applied state of each browser session.
type SessionRepository interface {
	Save(ctx context.Context, record entity.SessionRecord) error
	GetByID(ctx context.Context, clientID string) (entity.SessionRecord, error)
	DeleteByID(ctx context.Context, clientID string) error
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores records that expire after ttl; zero keeps them forever.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Save(ctx context.Context, record entity.SessionRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = that.client.Set(ctx, sessionKeyPrefix+record.ClientID, recordJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, clientID string) (entity.SessionRecord, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+clientID).Result()
	if errors.Is(err, redis.Nil) {
		return entity.SessionRecord{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return entity.SessionRecord{}, fmt.Errorf("failed to get session by id: %w", err)
	}

	var record entity.SessionRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return entity.SessionRecord{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return record, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, clientID string) error {
	deleted, err := that.client.Del(ctx, sessionKeyPrefix+clientID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}
