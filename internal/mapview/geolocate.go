package mapview

import (
	"context"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// DefaultLocation - Нью-Йорк. Используется, когда геолокация запрещена
// или недоступна
var DefaultLocation = models.Location{Latitude: 40.7128, Longitude: -74.0060}

// Geolocator запрашивает текущую позицию устройства
type Geolocator interface {
	CurrentPosition(ctx context.Context) (models.Location, error)
}
