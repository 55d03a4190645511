package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"go.uber.org/zap"
)

// ErrInvalidDateRange startDate должен быть строго раньше endDate.
var ErrInvalidDateRange = errors.New("start date must be before end date")

// Окно по умолчанию: последние 30 дней, заканчивающиеся сейчас.
const defaultWindow = 30 * 24 * time.Hour

// AnalyticsService агрегирует клики из sink-а. Путь только для чтения:
// любой сбой sink-а — восстановимая ошибка агрегации, частично применённого
// состояния не бывает.
type AnalyticsService interface {
	PerLink(ctx context.Context, linkID string, start, end *time.Time) (*models.PerLinkStats, error)
	Overview(ctx context.Context) (*models.Overview, error)
}

type analyticsService struct {
	clickRepo repository.ClickRepository
	linkRepo  repository.LinkRepository
	logger    *zap.Logger
}

func NewAnalyticsService(
	clickRepo repository.ClickRepository,
	linkRepo repository.LinkRepository,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		clickRepo: clickRepo,
		linkRepo:  linkRepo,
		logger:    logger,
	}
}

// PerLink собирает временные ряды кликов по link identity: один агрегатный
// запрос с группировкой по короткому коду и дате, результат складывается
// в упорядоченные ряды и общий счётчик.
func (s *analyticsService) PerLink(ctx context.Context, linkID string, start, end *time.Time) (*models.PerLinkStats, error) {
	now := time.Now()

	to := now
	if end != nil {
		to = *end
	}
	from := to.Add(-defaultWindow)
	if start != nil {
		from = *start
	}

	if !from.Before(to) {
		return nil, ErrInvalidDateRange
	}

	rows, err := s.clickRepo.PerLinkDaily(ctx, linkID, from, to)
	if err != nil {
		s.logger.Error("Сбой агрегатного запроса по ссылке",
			zap.String("link_id", linkID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("per-link aggregation failed: %w", err)
	}

	stats := &models.PerLinkStats{
		LinkID: linkID,
		Series: []models.ShortCodeSeries{},
	}

	// Строки приходят упорядоченными по (short_code, date); складываем их
	// в ряды, не пересортировывая
	for _, row := range rows {
		stats.TotalClicks += row.Clicks

		n := len(stats.Series)
		if n == 0 || stats.Series[n-1].ShortCode != row.ShortCode {
			stats.Series = append(stats.Series, models.ShortCodeSeries{
				ShortCode: row.ShortCode,
			})
			n++
		}
		stats.Series[n-1].Points = append(stats.Series[n-1].Points, models.DailyClicks{
			Date:   row.Date,
			Clicks: row.Clicks,
		})
	}

	return stats, nil
}

// Overview сводка по всему парку ссылок. При пустом реестре возвращается
// нулевая сводка без обращения к sink-у.
func (s *analyticsService) Overview(ctx context.Context) (*models.Overview, error) {
	links, err := s.linkRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	overview := &models.Overview{
		TotalLinks: int64(len(links)),
	}
	if overview.TotalLinks == 0 {
		return overview, nil
	}

	total, err := s.clickRepo.TotalClicks(ctx)
	if err != nil {
		s.logger.Error("Сбой подсчёта суммарных кликов", zap.Error(err))
		return nil, fmt.Errorf("overview aggregation failed: %w", err)
	}

	overview.TotalClicks = total
	overview.AvgClicksPerLink = float64(total) / float64(overview.TotalLinks)

	return overview, nil
}
