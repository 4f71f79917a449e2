package mapview

import (
	"sync"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// Selection - текущий фокус интерфейса: либо создание инцидента в точке,
// либо просмотр существующего. Одновременно не больше одного
type Selection struct {
	mu              sync.Mutex
	pendingLocation *models.Location
	activeIncident  *models.Incident
}

func NewSelection() *Selection {
	return &Selection{}
}

// OpenCompose открывает диалог создания инцидента в точке loc.
// Открытый просмотр при этом закрывается
func (s *Selection) OpenCompose(loc models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingLocation = &loc
	s.activeIncident = nil
}

// OpenIncident открывает просмотр инцидента.
// Открытый диалог создания при этом закрывается
func (s *Selection) OpenIncident(incident *models.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeIncident = incident
	s.pendingLocation = nil
}

// CloseCompose закрывает диалог создания
func (s *Selection) CloseCompose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingLocation = nil
}

// CloseIncident закрывает просмотр инцидента
func (s *Selection) CloseIncident() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeIncident = nil
}

// PendingLocation возвращает точку создаваемого инцидента, если диалог открыт
func (s *Selection) PendingLocation() *models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocation
}

// ActiveIncident возвращает просматриваемый инцидент, если просмотр открыт
func (s *Selection) ActiveIncident() *models.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIncident
}

// Composing сообщает, открыт ли диалог создания
func (s *Selection) Composing() bool {
	return s.PendingLocation() != nil
}

// Viewing сообщает, открыт ли просмотр инцидента
func (s *Selection) Viewing() bool {
	return s.ActiveIncident() != nil
}

// replaceActive обновляет запись просматриваемого инцидента, если открыт
// именно он. Просмотр подхватывает новые сообщения после перечитывания списка
func (s *Selection) replaceActive(incident *models.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIncident != nil && incident != nil && s.activeIncident.ID == incident.ID {
		s.activeIncident = incident
	}
}
