package mapview

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// DefaultZoom - зум карты при инициализации
const DefaultZoom = 12

// Surface владеет единственным живым экземпляром карты.
// Сырой хэндл наружу не отдается, мутации карты идут только через
// Surface и MarkerLayer
type Surface struct {
	mu         sync.Mutex
	provider   Provider
	logger     *logrus.Logger
	handle     MapHandle
	selfMarker MarkerHandle
	onClick    func(models.Location)
}

func NewSurface(provider Provider, logger *logrus.Logger) *Surface {
	return &Surface{
		provider: provider,
		logger:   logger,
	}
}

// Initialize создает карту с центром в center. Предыдущий экземпляр
// уничтожается до создания нового, хэндлы не текут. Маркер собственной
// позиции ставится только если userLocation известна.
// При ошибке поверхность остается неинициализированной
func (s *Surface) Initialize(token string, center models.Location, userLocation *models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.WithField("component", "surface")

	if token == "" {
		log.Warn("Map token is missing")
		return &InitFailure{Cause: "map token is missing"}
	}

	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
		s.selfMarker = nil
	}

	handle, err := s.provider.NewMap(token, center, DefaultZoom)
	if err != nil {
		log.WithError(err).Error("Failed to initialize map")
		return &InitFailure{Cause: "provider rejected map creation", Err: err}
	}

	s.handle = handle
	if userLocation != nil {
		s.selfMarker = handle.AddMarker(*userLocation, MarkerEvents{})
	}
	handle.SetClickHandler(func(loc models.Location) {
		s.mu.Lock()
		clickHandler := s.onClick
		s.mu.Unlock()
		if clickHandler != nil {
			clickHandler(loc)
		}
	})

	log.Info("Map initialized successfully")
	return nil
}

// OnMapClicked регистрирует обработчик клика по пустой области карты
func (s *Surface) OnMapClicked(handler func(models.Location)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick = handler
}

// Ready сообщает, инициализирована ли карта
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

// PanTo перемещает камеру, если карта готова
func (s *Surface) PanTo(loc models.Location, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle.PanTo(loc, zoom)
	}
}

// Destroy уничтожает текущий экземпляр карты
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
		s.selfMarker = nil
	}
}

// mapHandle отдает хэндл слою маркеров. nil, если карта не готова
func (s *Surface) mapHandle() MapHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}
