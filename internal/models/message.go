package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousAuthor - единственное имя автора сообщений, системы пользователей нет
const AnonymousAuthor = "Anonymous User"

// Message представляет сообщение в треде инцидента
type Message struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	// Seq фиксирует порядок вставки даже при одинаковых CreatedAt
	Seq       int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
