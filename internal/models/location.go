package models

import "fmt"

// Location - пара координат, используется и для позиции пользователя,
// и для места нового инцидента
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate проверяет, что координаты попадают в допустимые диапазоны
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %f is out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %f is out of range [-180, 180]", l.Longitude)
	}
	return nil
}
