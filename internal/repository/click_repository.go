package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
)

// ClickRepository append-only хранилище кликов (analytics sink).
// Запись — одна строка на редирект; чтение — только агрегатные запросы.
type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.Click) error
	// PerLinkDaily возвращает клики по link identity, сгруппированные по
	// короткому коду и календарной дате, в пределах [start, end).
	PerLinkDaily(ctx context.Context, linkID string, start, end time.Time) ([]models.LinkDailyClicks, error)
	// TotalClicks суммарное число кликов по всем ссылкам.
	TotalClicks(ctx context.Context) (int64, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO clicks (link_id, short_code, city, country, region, timezone, latitude, longitude, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		click.LinkID,
		click.ShortCode,
		click.City,
		click.Country,
		click.Region,
		click.Timezone,
		click.Latitude,
		click.Longitude,
		click.ClickedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

func (r *clickRepository) PerLinkDaily(ctx context.Context, linkID string, start, end time.Time) ([]models.LinkDailyClicks, error) {
	query := `
		SELECT
			short_code,
			TO_CHAR(DATE(clicked_at), 'YYYY-MM-DD') AS date,
			COUNT(*) AS clicks
		FROM clicks
		WHERE link_id = $1
			AND clicked_at >= $2
			AND clicked_at < $3
		GROUP BY short_code, DATE(clicked_at)
		ORDER BY short_code, DATE(clicked_at)
	`

	rows, err := r.db.Pool.Query(ctx, query, linkID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-link stats: %w", err)
	}
	defer rows.Close()

	var stats []models.LinkDailyClicks
	for rows.Next() {
		var row models.LinkDailyClicks
		if err := rows.Scan(&row.ShortCode, &row.Date, &row.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan per-link stat: %w", err)
		}
		stats = append(stats, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating per-link stats: %w", err)
	}

	return stats, nil
}

func (r *clickRepository) TotalClicks(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM clicks`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return total, nil
}
