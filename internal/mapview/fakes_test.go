package mapview

import (
	"bytes"
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/models"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

// fakeProvider - провайдер карты для тестов, хранит все созданные экземпляры
type fakeProvider struct {
	mu      sync.Mutex
	failErr error
	created []*fakeMap
}

func (p *fakeProvider) NewMap(token string, center models.Location, zoom float64) (MapHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return nil, p.failErr
	}
	m := &fakeMap{
		center:  center,
		zoom:    zoom,
		markers: make(map[*fakeMarker]struct{}),
		popups:  make(map[*fakePopup]struct{}),
	}
	p.created = append(p.created, m)
	return m, nil
}

func (p *fakeProvider) lastMap() *fakeMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.created) == 0 {
		return nil
	}
	return p.created[len(p.created)-1]
}

// fakeMap - живой экземпляр карты, отслеживает маркеры и оверлеи
type fakeMap struct {
	mu           sync.Mutex
	center       models.Location
	zoom         float64
	destroyed    bool
	clickHandler func(models.Location)
	markers      map[*fakeMarker]struct{}
	popups       map[*fakePopup]struct{}
}

func (m *fakeMap) AddMarker(loc models.Location, events MarkerEvents) MarkerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	marker := &fakeMarker{owner: m, loc: loc, events: events}
	m.markers[marker] = struct{}{}
	return marker
}

func (m *fakeMap) OpenPopup(loc models.Location, content PopupContent) PopupHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	popup := &fakePopup{owner: m, loc: loc, content: content}
	m.popups[popup] = struct{}{}
	return popup
}

func (m *fakeMap) SetClickHandler(handler func(models.Location)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clickHandler = handler
}

func (m *fakeMap) PanTo(loc models.Location, zoom float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.center = loc
	m.zoom = zoom
}

func (m *fakeMap) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = true
	m.markers = make(map[*fakeMarker]struct{})
	m.popups = make(map[*fakePopup]struct{})
}

func (m *fakeMap) markerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.markers)
}

func (m *fakeMap) popupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.popups)
}

// markerAt находит маркер по координатам
func (m *fakeMap) markerAt(loc models.Location) *fakeMarker {
	m.mu.Lock()
	defer m.mu.Unlock()
	for marker := range m.markers {
		if marker.loc == loc {
			return marker
		}
	}
	return nil
}

// click имитирует клик по пустой области карты
func (m *fakeMap) click(loc models.Location) {
	m.mu.Lock()
	handler := m.clickHandler
	m.mu.Unlock()
	if handler != nil {
		handler(loc)
	}
}

type fakeMarker struct {
	owner  *fakeMap
	loc    models.Location
	events MarkerEvents
}

func (f *fakeMarker) Remove() {
	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	delete(f.owner.markers, f)
}

func (f *fakeMarker) click() {
	if f.events.OnClick != nil {
		f.events.OnClick()
	}
}

func (f *fakeMarker) hoverEnter() {
	if f.events.OnHoverEnter != nil {
		f.events.OnHoverEnter()
	}
}

func (f *fakeMarker) hoverLeave() {
	if f.events.OnHoverLeave != nil {
		f.events.OnHoverLeave()
	}
}

type fakePopup struct {
	owner   *fakeMap
	loc     models.Location
	content PopupContent
}

func (f *fakePopup) Remove() {
	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	delete(f.owner.popups, f)
}

// fakeGeolocator возвращает фиксированную позицию или ошибку
type fakeGeolocator struct {
	loc models.Location
	err error
}

func (g *fakeGeolocator) CurrentPosition(ctx context.Context) (models.Location, error) {
	if g.err != nil {
		return models.Location{}, g.err
	}
	return g.loc, nil
}

// recordingNotifier запоминает показанные уведомления
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	infos     []string
}

func (n *recordingNotifier) Success(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) Info(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}
