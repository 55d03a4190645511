package models

// DailyClicks точка временного ряда для одного короткого кода.
type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// ShortCodeSeries временной ряд кликов одного короткого кода,
// упорядоченный по дате.
type ShortCodeSeries struct {
	ShortCode string        `json:"short_code"`
	Points    []DailyClicks `json:"points"`
}

// PerLinkStats статистика по одной link identity: суммарные клики и ряды
// по каждому короткому коду, указывающему на тот же URL.
type PerLinkStats struct {
	LinkID      string            `json:"link_id"`
	TotalClicks int64             `json:"total_clicks"`
	Series      []ShortCodeSeries `json:"series"`
}

// Overview сводная статистика по всем живым ссылкам.
type Overview struct {
	TotalClicks      int64   `json:"totalClicks"`
	TotalLinks       int64   `json:"totalLinks"`
	AvgClicksPerLink float64 `json:"avgClicksPerLink"`
}
