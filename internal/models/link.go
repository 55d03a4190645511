package models

import (
	"time"
)

// Link представляет одну короткую ссылку, хранящуюся в KV-хранилище
// под ключом link:{short_code}.
type Link struct {
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	LinkID      string     `json:"link_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired сообщает, истёк ли срок жизни ссылки на момент now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

type CreateLinkInput struct {
	OriginalURL string
	CustomCode  *string
	ExpiresAt   *time.Time
	Description string
}
