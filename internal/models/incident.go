package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category - категория инцидента из фиксированного набора
type Category string

const (
	CategoryAccident       Category = "accident"
	CategoryInfrastructure Category = "infrastructure"
	CategoryNoise          Category = "noise"
	CategorySafety         Category = "safety"
	CategoryOther          Category = "other"
)

// Categories - все допустимые категории
var Categories = []Category{
	CategoryAccident,
	CategoryInfrastructure,
	CategoryNoise,
	CategorySafety,
	CategoryOther,
}

// ParseCategory проверяет строку и возвращает категорию
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown incident category: %q", s)
}

type Incident struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	CreatedAt   time.Time  `json:"created_at"`
	Messages    []*Message `json:"messages,omitempty"`
}

// Location возвращает координаты инцидента
func (i *Incident) Location() Location {
	return Location{Latitude: i.Latitude, Longitude: i.Longitude}
}
