package mapview

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// previewTimeFormat - формат времени в превью маркера
const previewTimeFormat = "Jan 2, 2006 15:04"

type markerEntry struct {
	incident *models.Incident
	marker   MarkerHandle
	popup    PopupHandle // открытое превью, не больше одного на маркер
}

// MarkerLayer выводит набор маркеров из отфильтрованного списка инцидентов.
// Сверка ключевая: по id добавляются недостающие, удаляются лишние,
// совпадающие не трогаются. Видимый результат тот же, что у полной
// пересборки
type MarkerLayer struct {
	mu      sync.Mutex
	surface *Surface
	logger  *logrus.Logger
	// handle - экземпляр карты, на котором размещены entries.
	// При пересоздании карты записи становятся недействительными
	handle   MapHandle
	entries  map[uuid.UUID]*markerEntry
	onSelect func(*models.Incident)
}

func NewMarkerLayer(surface *Surface, logger *logrus.Logger) *MarkerLayer {
	return &MarkerLayer{
		surface: surface,
		logger:  logger,
		entries: make(map[uuid.UUID]*markerEntry),
	}
}

// OnIncidentSelected регистрирует обработчик клика по маркеру инцидента
func (l *MarkerLayer) OnIncidentSelected(handler func(*models.Incident)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onSelect = handler
}

// Reconcile приводит набор маркеров в точное соответствие списку.
// До готовности карты - no-op, не ошибка
func (l *MarkerLayer) Reconcile(incidents []*models.Incident) {
	handle := l.surface.mapHandle()
	if handle == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Карта пересоздана: прежние маркеры уничтожены вместе с ней,
	// все инциденты размещаются заново
	if handle != l.handle {
		l.handle = handle
		l.entries = make(map[uuid.UUID]*markerEntry)
	}

	want := make(map[uuid.UUID]*models.Incident, len(incidents))
	for _, incident := range incidents {
		want[incident.ID] = incident
	}

	// Удаляем устаревшие маркеры вместе с их открытыми превью
	for id, entry := range l.entries {
		if _, ok := want[id]; ok {
			continue
		}
		if entry.popup != nil {
			entry.popup.Remove()
		}
		entry.marker.Remove()
		delete(l.entries, id)
	}

	// Добавляем недостающие, у совпадающих обновляем запись инцидента,
	// чтобы клик открывал свежий тред
	for id, incident := range want {
		if entry, ok := l.entries[id]; ok {
			entry.incident = incident
			continue
		}
		l.entries[id] = l.placeMarker(handle, incident)
	}

	l.logger.WithFields(logrus.Fields{
		"component": "markers",
		"count":     len(l.entries),
	}).Debug("Marker layer reconciled")
}

// placeMarker добавляет маркер с превью по наведению и выбором по клику.
// Вызывается под l.mu
func (l *MarkerLayer) placeMarker(handle MapHandle, incident *models.Incident) *markerEntry {
	entry := &markerEntry{incident: incident}
	id := incident.ID

	entry.marker = handle.AddMarker(incident.Location(), MarkerEvents{
		// Клик по маркеру открывает тред и никогда не трактуется
		// как "создать инцидент здесь"
		OnClick: func() {
			l.mu.Lock()
			current, ok := l.entries[id]
			var selected *models.Incident
			if ok {
				selected = current.incident
			}
			onSelect := l.onSelect
			l.mu.Unlock()
			if ok && onSelect != nil {
				onSelect(selected)
			}
		},
		OnHoverEnter: func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			current, ok := l.entries[id]
			if !ok {
				return
			}
			if current.popup != nil {
				current.popup.Remove()
			}
			current.popup = handle.OpenPopup(current.incident.Location(), PopupContent{
				Title:       current.incident.Title,
				Description: current.incident.Description,
				Timestamp:   current.incident.CreatedAt.Format(previewTimeFormat),
			})
		},
		OnHoverLeave: func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			current, ok := l.entries[id]
			if !ok || current.popup == nil {
				return
			}
			current.popup.Remove()
			current.popup = nil
		},
	})
	return entry
}

// Count возвращает количество размещенных маркеров инцидентов
func (l *MarkerLayer) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear убирает все маркеры инцидентов и их превью
func (l *MarkerLayer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, entry := range l.entries {
		if entry.popup != nil {
			entry.popup.Remove()
		}
		entry.marker.Remove()
		delete(l.entries, id)
	}
}
