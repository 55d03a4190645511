package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// IdentityKeyPrefix пространство ключей urlId:{destination_url}.
const IdentityKeyPrefix = "urlId:"

// IdentityRepository сопоставляет destination URL стабильной link identity.
// Identity создаётся не более одного раза на различный URL и живёт вечно:
// исторические клики остаются доступными по link_id даже после того, как
// все короткие коды на этот URL истекли.
type IdentityRepository interface {
	// Resolve возвращает существующую identity либо создаёт новую.
	// Вызывается строго под блокировкой по destination URL; без неё два
	// конкурентных создателя могут получить разные identity (last write wins).
	Resolve(ctx context.Context, destinationURL string) (string, error)
}

type identityRepository struct {
	kv KeyValueStore
}

func NewIdentityRepository(kv KeyValueStore) IdentityRepository {
	return &identityRepository{kv: kv}
}

func (r *identityRepository) Resolve(ctx context.Context, destinationURL string) (string, error) {
	key := IdentityKeyPrefix + destinationURL

	linkID, err := r.kv.Get(ctx, key)
	if err == nil {
		return linkID, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return "", fmt.Errorf("failed to look up link identity: %w", err)
	}

	linkID = uuid.NewString()
	// Без TTL: identity переживает все ссылающиеся на неё короткие коды
	if err := r.kv.Put(ctx, key, linkID, 0); err != nil {
		return "", fmt.Errorf("failed to store link identity: %w", err)
	}

	return linkID, nil
}
