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

// setupAnalytics создаёт сервис аналитики с моковым sink-ом и реальным
// реестром ссылок поверх мокового KV
func setupAnalytics() (service.AnalyticsService, *mocks.MockClickRepository, repository.LinkRepository) {
	kv := mocks.NewMockKeyValueStore()
	clickRepo := mocks.NewMockClickRepository()
	logger, _ := zap.NewDevelopment()
	linkRepo := repository.NewLinkRepository(kv, logger)
	return service.NewAnalyticsService(clickRepo, linkRepo, logger), clickRepo, linkRepo
}

// TestAnalyticsService_PerLink_InvalidRange проверяет, что startDate >= endDate
// отклоняется как клиентская ошибка
func TestAnalyticsService_PerLink_InvalidRange(t *testing.T) {
	analytics, _, _ := setupAnalytics()

	ctx := context.Background()
	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	// start позже end
	end := start.Add(-24 * time.Hour)
	_, err := analytics.PerLink(ctx, "some-link", &start, &end)
	assert.ErrorIs(t, err, service.ErrInvalidDateRange)

	// start равен end — тоже ошибка, требуется строго "раньше"
	_, err = analytics.PerLink(ctx, "some-link", &start, &start)
	assert.ErrorIs(t, err, service.ErrInvalidDateRange)
}

// TestAnalyticsService_PerLink_FoldsSeries проверяет сворачивание строк
// агрегата в ряды по коротким кодам
func TestAnalyticsService_PerLink_FoldsSeries(t *testing.T) {
	analytics, clickRepo, _ := setupAnalytics()

	clickRepo.DailyRows = []models.LinkDailyClicks{
		{ShortCode: "aaaa", Date: "2026-08-01", Clicks: 3},
		{ShortCode: "aaaa", Date: "2026-08-02", Clicks: 2},
		{ShortCode: "bbbb", Date: "2026-08-01", Clicks: 5},
	}

	ctx := context.Background()
	stats, err := analytics.PerLink(ctx, "link-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalClicks)
	require.Len(t, stats.Series, 2)
	assert.Equal(t, "aaaa", stats.Series[0].ShortCode)
	assert.Len(t, stats.Series[0].Points, 2)
	assert.Equal(t, "2026-08-01", stats.Series[0].Points[0].Date)
	assert.Equal(t, "bbbb", stats.Series[1].ShortCode)
	assert.Equal(t, int64(5), stats.Series[1].Points[0].Clicks)
}

// TestAnalyticsService_PerLink_DefaultWindow проверяет окно по умолчанию
// (последние 30 дней) при отсутствии дат
func TestAnalyticsService_PerLink_DefaultWindow(t *testing.T) {
	analytics, clickRepo, _ := setupAnalytics()

	ctx := context.Background()
	stats, err := analytics.PerLink(ctx, "link-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, clickRepo.PerLinkCalls)
	assert.Equal(t, int64(0), stats.TotalClicks)
	assert.Empty(t, stats.Series)
}

// TestAnalyticsService_Overview_EmptyRegistry проверяет short-circuit:
// при нуле ссылок sink вообще не опрашивается
func TestAnalyticsService_Overview_EmptyRegistry(t *testing.T) {
	analytics, clickRepo, _ := setupAnalytics()

	ctx := context.Background()
	overview, err := analytics.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(0), overview.TotalClicks)
	assert.Equal(t, int64(0), overview.TotalLinks)
	assert.Equal(t, float64(0), overview.AvgClicksPerLink)
	assert.Equal(t, 0, clickRepo.TotalCalls, "Пустой реестр не должен порождать агрегатный запрос")
}

// TestAnalyticsService_Overview_ComputesAverage проверяет подсчёт среднего
func TestAnalyticsService_Overview_ComputesAverage(t *testing.T) {
	analytics, clickRepo, linkRepo := setupAnalytics()

	ctx := context.Background()
	for i, code := range []string{"aaaa", "bbbb"} {
		err := linkRepo.Create(ctx, &models.Link{
			ShortCode:   code,
			OriginalURL: "https://example.com/" + code,
			LinkID:      "id-" + code,
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	clickRepo.Total = 10

	overview, err := analytics.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.TotalLinks)
	assert.Equal(t, int64(10), overview.TotalClicks)
	assert.Equal(t, float64(5), overview.AvgClicksPerLink)
}

// TestAnalyticsService_Overview_Idempotent проверяет, что два вызова подряд
// без записей между ними дают одинаковый результат
func TestAnalyticsService_Overview_Idempotent(t *testing.T) {
	analytics, clickRepo, linkRepo := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, &models.Link{
		ShortCode:   "same",
		OriginalURL: "https://example.com/same",
		LinkID:      "id-same",
		CreatedAt:   time.Now(),
	}))
	clickRepo.Total = 7

	first, err := analytics.Overview(ctx)
	require.NoError(t, err)
	second, err := analytics.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
