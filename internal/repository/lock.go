package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockBusy блокировка занята или запись не удалась; для вызывающего это
// ретраибельный исход ("попробуйте позже"), а не сбой.
var ErrLockBusy = errors.New("lock busy")

// LockKeyPrefix пространство ключей lock:{destination_url}.
const LockKeyPrefix = "lock:"

// DistributedLock advisory-блокировка поверх KV-хранилища с ограниченным TTL.
//
// Хранилище не даёт атомарного compare-and-swap, поэтому блокировка
// best-effort и нелинеаризуема: она снижает вероятность конкурентного
// создания дублей кода или identity, но в окне распространения записи два
// вызывающих могут одновременно считать себя держателями. Последствие —
// last write wins на защищаемых ключах; это принятая, ограниченная
// несогласованность, а не гарантированный инвариант. TTL ограничивает
// худший случай зависшей блокировки.
type DistributedLock interface {
	// Acquire возвращает токен держателя либо ErrLockBusy.
	Acquire(ctx context.Context, resource string) (string, error)
	// Release снимает блокировку, только если токен совпадает с текущим.
	// Любые ошибки логируются и проглатываются: страховкой служит TTL.
	Release(ctx context.Context, resource, token string)
}

type kvLock struct {
	kv     KeyValueStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewDistributedLock(kv KeyValueStore, ttl time.Duration, logger *zap.Logger) DistributedLock {
	return &kvLock{kv: kv, ttl: ttl, logger: logger}
}

func (l *kvLock) Acquire(ctx context.Context, resource string) (string, error) {
	key := LockKeyPrefix + resource

	// Проба существования: кто-то уже держит блокировку — занято
	_, err := l.kv.Get(ctx, key)
	if err == nil {
		return "", ErrLockBusy
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return "", fmt.Errorf("failed to probe lock %q: %w", resource, err)
	}

	token := uuid.NewString()
	if err := l.kv.Put(ctx, key, token, l.ttl); err != nil {
		// Сбой записи трактуем как "занято": вызывающий повторит позже
		l.logger.Warn("Не удалось записать блокировку",
			zap.String("resource", resource),
			zap.Error(err),
		)
		return "", ErrLockBusy
	}

	return token, nil
}

func (l *kvLock) Release(ctx context.Context, resource, token string) {
	key := LockKeyPrefix + resource

	current, err := l.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			l.logger.Warn("Не удалось прочитать блокировку при освобождении",
				zap.String("resource", resource),
				zap.Error(err),
			)
		}
		return
	}

	// Проверка владения: медленный держатель не должен снять блокировку,
	// перезахваченную кем-то другим после истечения TTL
	if current != token {
		l.logger.Warn("Блокировка перезахвачена другим держателем, освобождение пропущено",
			zap.String("resource", resource),
		)
		return
	}

	if err := l.kv.Delete(ctx, key); err != nil {
		l.logger.Warn("Не удалось удалить блокировку",
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}
