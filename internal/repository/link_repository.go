package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"go.uber.org/zap"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// LinkKeyPrefix пространство ключей для записей ссылок в KV-хранилище.
const LinkKeyPrefix = "link:"

// LinkRepository реестр коротких ссылок поверх KV-хранилища.
//
// Create выполняет единственную проверку существования кода и при конфликте
// возвращает ErrCodeExists — без внутренних ретраев с новым кодом (решение
// о повторе оставлено вызывающему). Проверка не атомарна: хранилище не даёт
// compare-and-swap, поэтому вызывать Create следует под блокировкой по
// destination URL, принимая last-write-wins в окне распространения записи.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByShortCode(ctx context.Context, code string) (*models.Link, error)
	Delete(ctx context.Context, code string) error
	ListAll(ctx context.Context) ([]*models.Link, error)
	// Clear удаляет все записи под префиксом и возвращает их количество.
	Clear(ctx context.Context, prefix string) (int, error)
}

type linkRepository struct {
	kv     KeyValueStore
	logger *zap.Logger
}

func NewLinkRepository(kv KeyValueStore, logger *zap.Logger) LinkRepository {
	return &linkRepository{kv: kv, logger: logger}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	key := LinkKeyPrefix + link.ShortCode

	// Единственная проверка существования; при занятом коде — fail fast
	_, err := r.kv.Get(ctx, key)
	if err == nil {
		return ErrCodeExists
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("failed to check short code: %w", err)
	}

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	// TTL записи — остаток времени до expires_at. Просроченный expires_at
	// не должен превратиться в нулевой/отрицательный TTL хранилища: запись
	// сохраняется без TTL, её уберёт ленивое удаление при первом чтении.
	var ttl time.Duration
	if link.ExpiresAt != nil {
		if remaining := time.Until(*link.ExpiresAt); remaining > 0 {
			ttl = remaining
		}
	}

	if err := r.kv.Put(ctx, key, string(data), ttl); err != nil {
		return fmt.Errorf("failed to store link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	key := LinkKeyPrefix + code

	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	var link models.Link
	if err := json.Unmarshal([]byte(data), &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link %q: %w", code, err)
	}

	// Ленивое удаление: фонового sweeper-а нет, просроченная запись
	// удаляется при первом обращении и с этого момента остаётся NotFound
	if link.Expired(time.Now()) {
		if err := r.kv.Delete(ctx, key); err != nil {
			r.logger.Warn("Не удалось удалить просроченную ссылку",
				zap.String("short_code", code),
				zap.Error(err),
			)
		}
		return nil, ErrLinkNotFound
	}

	return &link, nil
}

func (r *linkRepository) Delete(ctx context.Context, code string) error {
	key := LinkKeyPrefix + code

	if _, err := r.kv.Get(ctx, key); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to get link: %w", err)
	}

	if err := r.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

func (r *linkRepository) ListAll(ctx context.Context) ([]*models.Link, error) {
	keys, err := r.kv.ListKeys(ctx, LinkKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	links := make([]*models.Link, 0, len(keys))
	for _, key := range keys {
		data, err := r.kv.Get(ctx, key)
		if err != nil {
			// Ключ мог исчезнуть между list и get (TTL), это не ошибка листинга
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to read link %q: %w", key, err)
		}

		var link models.Link
		if err := json.Unmarshal([]byte(data), &link); err != nil {
			// Битые записи пропускаем, листинг из-за них не падает
			r.logger.Warn("Пропущена нечитаемая запись ссылки",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		links = append(links, &link)
	}

	return links, nil
}

func (r *linkRepository) Clear(ctx context.Context, prefix string) (int, error) {
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	keys, err := r.kv.ListKeys(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys for clear: %w", err)
	}

	deleted := 0
	for _, key := range keys {
		if err := r.kv.Delete(ctx, key); err != nil {
			return deleted, fmt.Errorf("failed to delete %q: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}
