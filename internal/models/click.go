package models

import (
	"time"
)

// ClickEvent событие клика, отправляемое в worker pool после редиректа.
// Географический контекст берётся из заголовков прокси; если контекста нет,
// событие не записывается вовсе (неполные строки портят агрегаты).
type ClickEvent struct {
	LinkID    string
	ShortCode string
	City      string
	Country   string
	Region    string
	Timezone  string
	Latitude  float64
	Longitude float64
}

// HasGeoContext сообщает, достаточно ли географических полей для записи.
func (e *ClickEvent) HasGeoContext() bool {
	return e.City != "" && e.Country != ""
}

// Click строка в append-only хранилище аналитики. Никогда не обновляется
// и не удаляется; единственный паттерн чтения — агрегатные запросы.
type Click struct {
	LinkID    string
	ShortCode string
	City      string
	Country   string
	Region    string
	Timezone  string
	Latitude  float64
	Longitude float64
	ClickedAt time.Time
}

// LinkDailyClicks одна строка агрегатного запроса: клики за календарный
// день по конкретному короткому коду.
type LinkDailyClicks struct {
	ShortCode string `json:"short_code"`
	Date      string `json:"date"`
	Clicks    int64  `json:"clicks"`
}
