package mapview

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// IncidentDraft - введенные пользователем поля нового инцидента.
// Точка берется из открытого диалога создания
type IncidentDraft struct {
	Title       string `validate:"required,min=2,max=255"`
	Description string `validate:"required"`
	Category    string `validate:"required,oneof=accident infrastructure noise safety other"`
}

// View связывает хранилище, поверхность карты, слой маркеров, выбор и фильтр.
// Цикл: загрузка списка -> фильтр -> маркеры -> действия пользователя ->
// отправка -> перечитывание списка
type View struct {
	store     Store
	surface   *Surface
	markers   *MarkerLayer
	selection *Selection
	filters   *FilterBus
	geo       Geolocator
	notifier  Notifier
	logger    *logrus.Logger
	validate  *validator.Validate

	mu           sync.Mutex
	all          []*models.Incident
	userLocation *models.Location

	// fetchSeq нумерует запросы списка: применяется только ответ
	// последнего выданного запроса, медленный ранний ответ отбрасывается
	fetchSeq    atomic.Uint64
	unsubscribe func()
}

func NewView(store Store, provider Provider, filters *FilterBus, geo Geolocator, notifier Notifier, logger *logrus.Logger) *View {
	v := &View{
		store:     store,
		surface:   NewSurface(provider, logger),
		selection: NewSelection(),
		filters:   filters,
		geo:       geo,
		notifier:  notifier,
		logger:    logger,
		validate:  validator.New(),
	}
	v.markers = NewMarkerLayer(v.surface, logger)

	v.markers.OnIncidentSelected(func(incident *models.Incident) {
		v.selection.OpenIncident(incident)
	})
	v.surface.OnMapClicked(func(loc models.Location) {
		v.selection.OpenCompose(loc)
	})
	// Смена фильтра перерисовывает маркеры, камера не трогается
	v.unsubscribe = filters.Subscribe(func(*models.Category) {
		v.render()
	})

	return v
}

// Initialize определяет позицию пользователя, создает карту с центром в ней
// и загружает инциденты. При недоступной геолокации центр - DefaultLocation
func (v *View) Initialize(ctx context.Context, token string) error {
	userLocation := v.locateUser(ctx)

	if err := v.surface.Initialize(token, userLocation, &userLocation); err != nil {
		v.notifier.Error("Error", "Failed to initialize map. Please check your map token.")
		return err
	}
	v.notifier.Success("Success", "Map initialized successfully")

	return v.Refresh(ctx)
}

// locateUser запрашивает позицию устройства с откатом на DefaultLocation
func (v *View) locateUser(ctx context.Context) models.Location {
	log := v.logger.WithField("component", "view")

	loc, err := v.geo.CurrentPosition(ctx)
	if err != nil {
		log.WithError(err).Warn("Geolocation unavailable, falling back to default location")
		v.notifier.Info("Location", "Could not get your location. Defaulting to NYC.")
		loc = DefaultLocation
	} else {
		v.notifier.Success("Success", "Located your position successfully")
	}

	v.mu.Lock()
	v.userLocation = &loc
	v.mu.Unlock()
	return loc
}

// Refresh перечитывает список инцидентов целиком и сверяет маркеры.
// Устаревший ответ (выдан раньше, завершился позже) отбрасывается
func (v *View) Refresh(ctx context.Context) error {
	log := v.logger.WithField("component", "view")
	seq := v.fetchSeq.Add(1)

	incidents, err := v.store.ListIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch incidents")
		v.notifier.Error("Error", "Failed to fetch incidents")
		return &StoreError{Op: "list incidents", Err: err}
	}

	v.mu.Lock()
	if seq != v.fetchSeq.Load() {
		v.mu.Unlock()
		log.WithField("seq", seq).Debug("Dropping stale incident list response")
		return nil
	}
	v.all = incidents
	v.mu.Unlock()

	// Открытый просмотр подхватывает свежий тред
	for _, incident := range incidents {
		v.selection.replaceActive(incident)
	}

	v.render()
	return nil
}

// render сверяет маркеры с отфильтрованным списком
func (v *View) render() {
	v.mu.Lock()
	all := v.all
	v.mu.Unlock()
	v.markers.Reconcile(ApplyFilter(all, v.filters.Current()))
}

// SubmitIncident проверяет черновик локально и вставляет инцидент.
// При ошибке хранилища диалог остается открытым, введенные значения
// не теряются - их держит вызывающая сторона, pendingLocation не сбрасывается
func (v *View) SubmitIncident(ctx context.Context, draft IncidentDraft) error {
	log := v.logger.WithField("component", "view")

	pending := v.selection.PendingLocation()
	if pending == nil {
		return &ValidationError{Field: "location", Reason: "no compose dialog is open"}
	}

	if err := v.validate.Struct(draft); err != nil {
		log.WithError(err).Warn("Incident draft validation failed")
		v.notifier.Error("Error", "Please fill in all fields")
		return &ValidationError{Field: "draft", Reason: err.Error()}
	}
	if err := pending.Validate(); err != nil {
		log.WithError(err).Warn("Pending location out of range")
		v.notifier.Error("Error", "Incident location is out of range")
		return &ValidationError{Field: "location", Reason: err.Error()}
	}

	incident := &models.Incident{
		Title:       draft.Title,
		Description: draft.Description,
		Category:    models.Category(draft.Category),
		Latitude:    pending.Latitude,
		Longitude:   pending.Longitude,
		CreatedAt:   time.Now().UTC(),
	}

	if err := v.store.InsertIncident(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to submit incident")
		v.notifier.Error("Error", "Failed to submit incident")
		return &StoreError{Op: "insert incident", Err: err}
	}

	v.selection.CloseCompose()
	v.notifier.Success("Success", "Incident reported successfully")

	return v.Refresh(ctx)
}

// SendMessage добавляет сообщение в тред открытого инцидента.
// При ошибке хранилища набранный текст остается у вызывающей стороны
func (v *View) SendMessage(ctx context.Context, text string) error {
	log := v.logger.WithField("component", "view")

	active := v.selection.ActiveIncident()
	if active == nil {
		return &ValidationError{Field: "incident", Reason: "no incident is open"}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		v.notifier.Error("Error", "Message text must not be blank")
		return &ValidationError{Field: "text", Reason: "must not be blank"}
	}

	message := &models.Message{
		IncidentID: active.ID,
		Author:     models.AnonymousAuthor,
		Text:       trimmed,
	}

	if err := v.store.InsertMessage(ctx, message); err != nil {
		log.WithError(err).Error("Failed to send message")
		v.notifier.Error("Error", "Failed to send message")
		return &StoreError{Op: "insert message", Err: err}
	}

	v.notifier.Success("Success", "Message sent successfully")

	return v.Refresh(ctx)
}

// Selection возвращает состояние выбора
func (v *View) Selection() *Selection {
	return v.selection
}

// Incidents возвращает последний загруженный список
func (v *View) Incidents() []*models.Incident {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.all
}

// UserLocation возвращает определенную позицию пользователя
func (v *View) UserLocation() *models.Location {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.userLocation
}

// Close отписывается от шины фильтра и уничтожает карту
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
	v.markers.Clear()
	v.surface.Destroy()
}
