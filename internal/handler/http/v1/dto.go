package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title       string  `json:"title" validate:"required,min=2,max=255"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=accident infrastructure noise safety other"`
	// Нулевая координата допустима: экватор и нулевой меридиан -
	// валидные точки, required на float64 их отбрасывал бы
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// CreateMessageRequest DTO для добавления сообщения в тред инцидента
// @Description DTO для добавления сообщения в тред инцидента
type CreateMessageRequest struct {
	Text   string `json:"text" validate:"required"`
	Author string `json:"author,omitempty" validate:"omitempty,max=255"`
}

// MessageResponse DTO для ответа с сообщением треда
// @Description DTO для ответа с сообщением треда
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	CreatedAt   time.Time          `json:"created_at"`
	Messages    []*MessageResponse `json:"messages"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	ReportCount int `json:"report_count"`
}
