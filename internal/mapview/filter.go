package mapview

import (
	"sync"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// ApplyFilter возвращает инциденты выбранной категории.
// category == nil означает "показать все"
func ApplyFilter(all []*models.Incident, category *models.Category) []*models.Incident {
	if category == nil {
		return all
	}
	filtered := make([]*models.Incident, 0, len(all))
	for _, incident := range all {
		if incident.Category == *category {
			filtered = append(filtered, incident)
		}
	}
	return filtered
}

// FilterBus - явная шина фильтра категории между элементом управления
// и слоем маркеров. Заменяет глобальное широковещательное событие
type FilterBus struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]func(*models.Category)
	current *models.Category
}

func NewFilterBus() *FilterBus {
	return &FilterBus{
		subs: make(map[int]func(*models.Category)),
	}
}

// Publish рассылает выбранную категорию всем подписчикам.
// nil означает "показать все"
func (b *FilterBus) Publish(category *models.Category) {
	b.mu.Lock()
	b.current = category
	handlers := make([]func(*models.Category), 0, len(b.subs))
	for _, handler := range b.subs {
		handlers = append(handlers, handler)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(category)
	}
}

// Subscribe регистрирует подписчика и возвращает функцию отписки
func (b *FilterBus) Subscribe(handler func(*models.Category)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Current возвращает текущее значение фильтра
func (b *FilterBus) Current() *models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
