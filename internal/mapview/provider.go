package mapview

import (
	"github.com/avolkov/community_safety_watch/internal/models"
)

// Provider - контракт внешнего картографического SDK.
// Рендеринг карты целиком на стороне реализации
type Provider interface {
	// NewMap создает экземпляр карты с указанным центром и зумом.
	// Невалидный токен - ошибка, а не частично живая карта
	NewMap(token string, center models.Location, zoom float64) (MapHandle, error)
}

// MapHandle - живой экземпляр карты
type MapHandle interface {
	// AddMarker добавляет маркер с обработчиками наведения и клика.
	// Клик по маркеру не доходит до обработчика клика по пустой карте
	AddMarker(loc models.Location, events MarkerEvents) MarkerHandle
	// OpenPopup открывает оверлей в указанной точке
	OpenPopup(loc models.Location, content PopupContent) PopupHandle
	// SetClickHandler регистрирует обработчик клика по пустой области карты
	SetClickHandler(handler func(models.Location))
	// PanTo перемещает камеру
	PanTo(loc models.Location, zoom float64)
	// Destroy уничтожает экземпляр карты и все его маркеры
	Destroy()
}

// MarkerHandle - размещенный на карте маркер
type MarkerHandle interface {
	Remove()
}

// PopupHandle - открытый оверлей
type PopupHandle interface {
	Remove()
}

// MarkerEvents - обработчики событий маркера
type MarkerEvents struct {
	OnClick      func()
	OnHoverEnter func()
	OnHoverLeave func()
}

// PopupContent - содержимое превью инцидента
type PopupContent struct {
	Title       string
	Description string
	Timestamp   string
}
