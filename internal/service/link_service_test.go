package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/SergeiKhy/shortlink/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestService создаёт сервис поверх мокового KV-хранилища
func setupTestService() (service.LinkService, *mocks.MockKeyValueStore) {
	kv := mocks.NewMockKeyValueStore()
	logger, _ := zap.NewDevelopment()

	linkRepo := repository.NewLinkRepository(kv, logger)
	identityRepo := repository.NewIdentityRepository(kv)
	locks := repository.NewDistributedLock(kv, 60*time.Second, logger)

	return service.NewLinkService(linkRepo, identityRepo, locks, logger), kv
}

// TestLinkService_CreateLink_Success проверяет успешное создание ссылки
func TestLinkService_CreateLink_Success(t *testing.T) {
	linkService, _ := setupTestService()

	input := &models.CreateLinkInput{
		OriginalURL: "https://example.com/test",
	}

	ctx := context.Background()
	link, err := linkService.CreateLink(ctx, input)

	require.NoError(t, err)
	assert.Len(t, link.ShortCode, 4, "Длина сгенерированного кода должна быть 4 символа")
	assert.NotEmpty(t, link.LinkID)
	assert.Equal(t, input.OriginalURL, link.OriginalURL)
}

// TestLinkService_CreateLink_RoundTrip проверяет, что созданная ссылка
// читается обратно с теми же полями
func TestLinkService_CreateLink_RoundTrip(t *testing.T) {
	linkService, _ := setupTestService()

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	input := &models.CreateLinkInput{
		OriginalURL: "https://example.com/roundtrip",
		ExpiresAt:   &expiresAt,
		Description: "round trip check",
	}

	ctx := context.Background()
	created, err := linkService.CreateLink(ctx, input)
	require.NoError(t, err)

	fetched, err := linkService.GetLink(ctx, created.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, input.OriginalURL, fetched.OriginalURL)
	assert.Equal(t, input.Description, fetched.Description)
	require.NotNil(t, fetched.ExpiresAt)
	assert.True(t, expiresAt.Equal(*fetched.ExpiresAt))
}

// TestLinkService_CreateLink_WithCustomCode проверяет создание с кастомным кодом
func TestLinkService_CreateLink_WithCustomCode(t *testing.T) {
	linkService, _ := setupTestService()

	customCode := "mylink"
	input := &models.CreateLinkInput{
		OriginalURL: "https://example.com/test",
		CustomCode:  &customCode,
	}

	ctx := context.Background()
	link, err := linkService.CreateLink(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, customCode, link.ShortCode)
}

// TestLinkService_CreateLink_CodeConflict проверяет fail-fast при занятом коде:
// никаких внутренних ретраев с новым кодом
func TestLinkService_CreateLink_CodeConflict(t *testing.T) {
	linkService, _ := setupTestService()

	customCode := "abcd"
	ctx := context.Background()

	first := &models.CreateLinkInput{
		OriginalURL: "https://example.com/first",
		CustomCode:  &customCode,
	}
	_, err := linkService.CreateLink(ctx, first)
	require.NoError(t, err)

	second := &models.CreateLinkInput{
		OriginalURL: "https://example.com/second",
		CustomCode:  &customCode,
	}
	link, err := linkService.CreateLink(ctx, second)

	assert.ErrorIs(t, err, repository.ErrCodeExists)
	assert.Nil(t, link)
}

// TestLinkService_CreateLink_SharedIdentity проверяет, что все ссылки на один
// и тот же URL получают одну и ту же link identity
func TestLinkService_CreateLink_SharedIdentity(t *testing.T) {
	linkService, _ := setupTestService()

	ctx := context.Background()
	url := "https://a.test"

	first, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: url})
	require.NoError(t, err)

	second, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: url})
	require.NoError(t, err)

	assert.NotEqual(t, first.ShortCode, second.ShortCode)
	assert.Equal(t, first.LinkID, second.LinkID,
		"Ссылки на один URL должны разделять link identity")

	// Другой URL — другая identity
	other, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: "https://b.test"})
	require.NoError(t, err)
	assert.NotEqual(t, first.LinkID, other.LinkID)
}

// TestLinkService_CreateLink_LockBusy проверяет, что занятая блокировка по URL
// превращается в ретраибельный ErrLockBusy
func TestLinkService_CreateLink_LockBusy(t *testing.T) {
	linkService, kv := setupTestService()

	ctx := context.Background()
	url := "https://example.com/contended"

	// Кто-то уже держит блокировку по этому URL
	require.NoError(t, kv.Put(ctx, repository.LockKeyPrefix+url, "someone-else", time.Minute))

	link, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: url})

	assert.ErrorIs(t, err, repository.ErrLockBusy)
	assert.Nil(t, link)
}

// TestLinkService_CreateLink_InvalidURL проверяет отклонение невалидного URL
func TestLinkService_CreateLink_InvalidURL(t *testing.T) {
	linkService, _ := setupTestService()

	invalidURLs := []string{"not-a-url", "ftp://example.com", "", "example.com"}

	for _, url := range invalidURLs {
		ctx := context.Background()
		link, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: url})

		assert.ErrorIs(t, err, service.ErrInvalidURL, "URL должен быть отклонён: %s", url)
		assert.Nil(t, link)
	}
}

// TestLinkService_CreateLink_InvalidCustomCode проверяет валидацию кастомного кода
func TestLinkService_CreateLink_InvalidCustomCode(t *testing.T) {
	linkService, _ := setupTestService()

	// Слишком короткий, слишком длинный, недопустимые символы
	invalidCodes := []string{"ab", "toolongcustomcode123", "bad@code"}

	for _, code := range invalidCodes {
		customCode := code
		input := &models.CreateLinkInput{
			OriginalURL: "https://example.com/test",
			CustomCode:  &customCode,
		}

		ctx := context.Background()
		link, err := linkService.CreateLink(ctx, input)

		assert.ErrorIs(t, err, service.ErrInvalidCode, "Код должен быть отклонён: %s", code)
		assert.Nil(t, link)
	}
}

// TestLinkService_GetLink_LazyExpiry проверяет, что просроченная ссылка
// удаляется при первом чтении и навсегда остаётся NotFound
func TestLinkService_GetLink_LazyExpiry(t *testing.T) {
	linkService, kv := setupTestService()

	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	customCode := "gone"

	created, err := linkService.CreateLink(ctx, &models.CreateLinkInput{
		OriginalURL: "https://example.com/expired",
		CustomCode:  &customCode,
		ExpiresAt:   &past,
	})
	require.NoError(t, err, "Просроченный expiration не мешает сохранению")

	// Запись физически лежит в хранилище до первого чтения
	assert.True(t, kv.Has(repository.LinkKeyPrefix+created.ShortCode))

	// Первое чтение: NotFound и удаление записи
	link, err := linkService.GetLink(ctx, created.ShortCode)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	assert.Nil(t, link)
	assert.False(t, kv.Has(repository.LinkKeyPrefix+created.ShortCode),
		"Ленивое удаление должно убрать запись из хранилища")

	// Повторное чтение: по-прежнему NotFound
	_, err = linkService.GetLink(ctx, created.ShortCode)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

// TestLinkService_GetLink_NotFound проверяет обработку несуществующей ссылки
func TestLinkService_GetLink_NotFound(t *testing.T) {
	linkService, _ := setupTestService()

	ctx := context.Background()
	link, err := linkService.GetLink(ctx, "nope")

	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	assert.Nil(t, link)
}

// TestLinkService_DeleteLink проверяет явное удаление ссылки
func TestLinkService_DeleteLink(t *testing.T) {
	linkService, _ := setupTestService()

	ctx := context.Background()
	created, err := linkService.CreateLink(ctx, &models.CreateLinkInput{
		OriginalURL: "https://example.com/delete-me",
	})
	require.NoError(t, err)

	require.NoError(t, linkService.DeleteLink(ctx, created.ShortCode))

	_, err = linkService.GetLink(ctx, created.ShortCode)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	// Повторное удаление — NotFound
	assert.ErrorIs(t, linkService.DeleteLink(ctx, created.ShortCode), repository.ErrLinkNotFound)
}

// TestLinkService_ListAndClear проверяет листинг и административную очистку
func TestLinkService_ListAndClear(t *testing.T) {
	linkService, _ := setupTestService()

	ctx := context.Background()
	for _, url := range []string{"https://one.test", "https://two.test", "https://three.test"} {
		_, err := linkService.CreateLink(ctx, &models.CreateLinkInput{OriginalURL: url})
		require.NoError(t, err)
	}

	links, err := linkService.ListLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 3)

	count, err := linkService.ClearLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	links, err = linkService.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

// TestLinkService_GenerateShortCode проверяет длину и алфавит сгенерированных кодов
func TestLinkService_GenerateShortCode(t *testing.T) {
	linkService, _ := setupTestService()

	const alphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		link, err := linkService.CreateLink(ctx, &models.CreateLinkInput{
			OriginalURL: "https://example.com/gen" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
		})
		require.NoError(t, err)
		assert.Len(t, link.ShortCode, 4)
		for _, ch := range link.ShortCode {
			assert.Contains(t, alphabet, string(ch),
				"Код не должен содержать визуально неоднозначных символов")
		}
	}
}
