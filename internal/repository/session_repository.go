package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// SessionKeyPrefix пространство ключей session:{session_id}.
const SessionKeyPrefix = "session:"

// SessionRepository хранит сессии в KV: session_id -> учётные данные
// identity provider-а. Валидность проверяется в хранилище на каждом
// защищённом запросе, без кэширования.
type SessionRepository interface {
	// Create создаёт сессию с фиксированным TTL и возвращает её id.
	Create(ctx context.Context, upstreamCredential string) (string, error)
	// Validate сообщает, существует ли сессия. (false, nil) — сессии нет
	// или она истекла; ошибка — сбой самого хранилища.
	Validate(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	kv  KeyValueStore
	ttl time.Duration
}

func NewSessionRepository(kv KeyValueStore, ttl time.Duration) SessionRepository {
	return &sessionRepository{kv: kv, ttl: ttl}
}

func (r *sessionRepository) Create(ctx context.Context, upstreamCredential string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	sessionID := hex.EncodeToString(buf)

	if err := r.kv.Put(ctx, SessionKeyPrefix+sessionID, upstreamCredential, r.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

func (r *sessionRepository) Validate(ctx context.Context, sessionID string) (bool, error) {
	_, err := r.kv.Get(ctx, SessionKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to validate session: %w", err)
	}
	return true, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.kv.Delete(ctx, SessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
