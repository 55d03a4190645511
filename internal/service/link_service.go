package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrInvalidURL  = errors.New("invalid URL")
	ErrInvalidCode = errors.New("invalid custom code")
)

// Константы генерации кода. Алфавит — 57 однозначно читаемых символов:
// исключены визуально неразличимые 0/O, 1/l/I.
const (
	codeLength = 4
	charset    = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	urlPattern  = regexp.MustCompile(`^https?://[^\s]+$`)
	codePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{4,12}$`)
)

// LinkService сервис коротких ссылок.
type LinkService interface {
	CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, error)
	GetLink(ctx context.Context, code string) (*models.Link, error)
	DeleteLink(ctx context.Context, code string) error
	ListLinks(ctx context.Context) ([]*models.Link, error)
	// ClearLinks административная очистка пространства ключей ссылок.
	ClearLinks(ctx context.Context) (int, error)
}

type linkService struct {
	linkRepo     repository.LinkRepository
	identityRepo repository.IdentityRepository
	locks        repository.DistributedLock
	logger       *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса.
func NewLinkService(
	linkRepo repository.LinkRepository,
	identityRepo repository.IdentityRepository,
	locks repository.DistributedLock,
	logger *zap.Logger,
) LinkService {
	return &linkService{
		linkRepo:     linkRepo,
		identityRepo: identityRepo,
		locks:        locks,
		logger:       logger,
	}
}

// CreateLink создаёт новую короткую ссылку.
//
// Создания для одного и того же destination URL сериализуются advisory-
// блокировкой по URL: под ней назначается (или переиспользуется) link
// identity и выполняется единственная проверка занятости кода. Занятая
// блокировка — repository.ErrLockBusy, занятый код — repository.ErrCodeExists;
// оба исхода ретраибельны вызывающим, сервис сам ничего не повторяет.
func (s *linkService) CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, error) {
	// Валидация URL
	if !urlPattern.MatchString(input.OriginalURL) {
		return nil, ErrInvalidURL
	}

	// Код: кастомный после валидации либо свежесгенерированный.
	// Генерация сама по себе уникальность не гарантирует — её проверяет
	// единственный existence check в реестре.
	var shortCode string
	if input.CustomCode != nil && *input.CustomCode != "" {
		if !codePattern.MatchString(*input.CustomCode) {
			return nil, ErrInvalidCode
		}
		shortCode = *input.CustomCode
	} else {
		code, err := generateShortCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}
		shortCode = code
	}

	// Сериализация по destination URL
	token, err := s.locks.Acquire(ctx, input.OriginalURL)
	if err != nil {
		if errors.Is(err, repository.ErrLockBusy) {
			s.logger.Info("Создание отложено: URL заблокирован другим запросом",
				zap.String("url", input.OriginalURL),
			)
			return nil, repository.ErrLockBusy
		}
		return nil, err
	}
	defer s.locks.Release(ctx, input.OriginalURL, token)

	// Identity назначается под блокировкой: конкурентные создатели одного
	// URL сходятся к одному link_id (с оговоркой best-effort блокировки)
	linkID, err := s.identityRepo.Resolve(ctx, input.OriginalURL)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		ShortCode:   shortCode,
		OriginalURL: input.OriginalURL,
		LinkID:      linkID,
		ExpiresAt:   input.ExpiresAt,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// GetLink возвращает ссылку по короткому коду; просроченные записи
// реестр удаляет при чтении (ленивое истечение).
func (s *linkService) GetLink(ctx context.Context, code string) (*models.Link, error) {
	return s.linkRepo.GetByShortCode(ctx, code)
}

// DeleteLink удаляет ссылку по короткому коду.
func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	return s.linkRepo.Delete(ctx, code)
}

// ListLinks перечисляет все живые ссылки.
func (s *linkService) ListLinks(ctx context.Context) ([]*models.Link, error) {
	return s.linkRepo.ListAll(ctx)
}

// ClearLinks удаляет все записи ссылок и возвращает их количество.
func (s *linkService) ClearLinks(ctx context.Context) (int, error) {
	return s.linkRepo.Clear(ctx, repository.LinkKeyPrefix)
}

// generateShortCode генерирует код из codeLength символов, каждый символ
// выбирается независимо и равномерно криптостойким источником.
func generateShortCode() (string, error) {
	result := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
