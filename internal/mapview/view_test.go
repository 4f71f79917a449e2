package mapview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avolkov/community_safety_watch/internal/mapview/mocks"
	"github.com/avolkov/community_safety_watch/internal/models"
)

type viewFixture struct {
	view     *View
	store    *mocks.MockStore
	provider *fakeProvider
	filters  *FilterBus
	geo      *fakeGeolocator
	notifier *recordingNotifier
}

func newTestView(t *testing.T) *viewFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	provider := &fakeProvider{}
	filters := NewFilterBus()
	geo := &fakeGeolocator{loc: models.Location{Latitude: 51.50, Longitude: -0.12}}
	notifier := &recordingNotifier{}

	return &viewFixture{
		view:     NewView(store, provider, filters, geo, notifier, newTestLogger()),
		store:    store,
		provider: provider,
		filters:  filters,
		geo:      geo,
		notifier: notifier,
	}
}

func TestViewInitialize_Success(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incidents := []*models.Incident{
		testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00),
		testIncident("Loud party", models.CategoryNoise, 40.72, -74.01),
	}

	// Ожидания
	f.store.EXPECT().ListIncidents(ctx).Return(incidents, nil)

	// Действие
	err := f.view.Initialize(ctx, "pk.test-token")

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, f.view.UserLocation())
	assert.Equal(t, f.geo.loc, *f.view.UserLocation())
	assert.Equal(t, f.geo.loc, f.provider.lastMap().center)
	assert.Equal(t, incidents, f.view.Incidents())
	// Два маркера инцидентов плюс маркер собственной позиции
	assert.Equal(t, 2, f.view.markers.Count())
	assert.Equal(t, 3, f.provider.lastMap().markerCount())
}

func TestViewInitialize_SecondInitializeRestoresMarkers(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.store.EXPECT().ListIncidents(ctx).Return([]*models.Incident{incident}, nil).Times(2)
	require.NoError(t, f.view.Initialize(ctx, "pk.test-token"))
	first := f.provider.lastMap()
	require.Equal(t, 2, first.markerCount())

	// Действие: повторная инициализация, инцидент все еще в списке
	require.NoError(t, f.view.Initialize(ctx, "pk.new-token"))

	// Проверки: новая карта несет и маркер позиции, и маркер инцидента
	second := f.provider.lastMap()
	require.NotSame(t, first, second)
	assert.True(t, first.destroyed)
	assert.Equal(t, 1, f.view.markers.Count())
	assert.Equal(t, 2, second.markerCount())
	assert.NotNil(t, second.markerAt(incident.Location()))
}

func TestViewInitialize_GeolocationFallback(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	f.geo.err = ErrGeolocationUnavailable
	ctx := context.Background()

	// Ожидания
	f.store.EXPECT().ListIncidents(ctx).Return(nil, nil)

	// Действие
	err := f.view.Initialize(ctx, "pk.test-token")

	// Проверки: откат ровно на точку по умолчанию
	require.NoError(t, err)
	require.NotNil(t, f.view.UserLocation())
	assert.Equal(t, DefaultLocation, *f.view.UserLocation())
	assert.Equal(t, DefaultLocation, f.provider.lastMap().center)
	assert.Contains(t, f.notifier.infos, "Could not get your location. Defaulting to NYC.")
}

func TestViewInitialize_MapFailure(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	f.provider.failErr = errors.New("gl context lost")
	ctx := context.Background()

	// Действие: список не запрашивается, ожиданий на хранилище нет
	err := f.view.Initialize(ctx, "pk.test-token")

	// Проверки
	var initErr *InitFailure
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "Failed to initialize map. Please check your map token.", f.notifier.lastError())
}

func TestViewRefresh_StoreError(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()

	// Ожидания
	f.store.EXPECT().ListIncidents(ctx).Return(nil, errors.New("connection refused"))

	// Действие
	err := f.view.Refresh(ctx)

	// Проверки
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list incidents", storeErr.Op)
	assert.Equal(t, "Failed to fetch incidents", f.notifier.lastError())
}

func TestViewRefresh_DropsStaleResponse(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	stale := []*models.Incident{testIncident("Old pothole", models.CategoryInfrastructure, 40.71, -74.00)}
	fresh := []*models.Incident{testIncident("New crash", models.CategoryAccident, 40.72, -74.01)}

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	// Ожидания: первый запрос выдан раньше, но завершается позже второго
	gomock.InOrder(
		f.store.EXPECT().ListIncidents(ctx).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
			close(firstStarted)
			<-release
			return stale, nil
		}),
		f.store.EXPECT().ListIncidents(ctx).Return(fresh, nil),
	)

	// Действие
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- f.view.Refresh(ctx)
	}()
	<-firstStarted
	require.NoError(t, f.view.Refresh(ctx))
	close(release)
	require.NoError(t, <-firstDone)

	// Проверки: применен ответ последнего выданного запроса
	assert.Equal(t, fresh, f.view.Incidents())
}

func TestViewFilterChange_RedrawsMarkers(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incidents := []*models.Incident{
		testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00),
		testIncident("Loud party", models.CategoryNoise, 40.72, -74.01),
	}
	f.store.EXPECT().ListIncidents(ctx).Return(incidents, nil)
	require.NoError(t, f.view.Initialize(ctx, "pk.test-token"))
	mapBefore := f.provider.lastMap()
	centerBefore := mapBefore.center

	// Действие
	category := models.CategoryNoise
	f.filters.Publish(&category)

	// Проверки: маркеры пересчитаны, камера и карта не тронуты
	assert.Equal(t, 1, f.view.markers.Count())
	assert.Same(t, mapBefore, f.provider.lastMap())
	assert.Equal(t, centerBefore, f.provider.lastMap().center)

	// Действие: сброс фильтра возвращает все маркеры
	f.filters.Publish(nil)
	assert.Equal(t, 2, f.view.markers.Count())
}

func TestViewMapClick_OpensCompose(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.store.EXPECT().ListIncidents(ctx).Return([]*models.Incident{incident}, nil)
	require.NoError(t, f.view.Initialize(ctx, "pk.test-token"))
	f.provider.lastMap().markerAt(incident.Location()).click()
	require.True(t, f.view.Selection().Viewing())

	// Действие
	target := models.Location{Latitude: 40.75, Longitude: -73.99}
	f.provider.lastMap().click(target)

	// Проверки: клик по карте открывает создание и закрывает просмотр
	assert.True(t, f.view.Selection().Composing())
	assert.False(t, f.view.Selection().Viewing())
	assert.Equal(t, target, *f.view.Selection().PendingLocation())
}

func TestViewMarkerClick_OpensIncident(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.store.EXPECT().ListIncidents(ctx).Return([]*models.Incident{incident}, nil)
	require.NoError(t, f.view.Initialize(ctx, "pk.test-token"))
	f.provider.lastMap().click(models.Location{Latitude: 40.75, Longitude: -73.99})
	require.True(t, f.view.Selection().Composing())

	// Действие
	f.provider.lastMap().markerAt(incident.Location()).click()

	// Проверки: клик по маркеру открывает просмотр и закрывает создание
	assert.True(t, f.view.Selection().Viewing())
	assert.False(t, f.view.Selection().Composing())
	assert.Equal(t, incident.ID, f.view.Selection().ActiveIncident().ID)
}

func TestSubmitIncident_NoComposeOpen(t *testing.T) {
	// Подготовка
	f := newTestView(t)

	// Действие
	err := f.view.SubmitIncident(context.Background(), IncidentDraft{
		Title:       "Pothole",
		Description: "Deep pothole",
		Category:    "infrastructure",
	})

	// Проверки
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "location", valErr.Field)
}

func TestSubmitIncident_InvalidDraft(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	loc := models.Location{Latitude: 40.75, Longitude: -73.99}
	f.view.Selection().OpenCompose(loc)

	// Действие: пустой заголовок, ожиданий на хранилище нет
	err := f.view.SubmitIncident(context.Background(), IncidentDraft{
		Description: "Deep pothole",
		Category:    "infrastructure",
	})

	// Проверки: диалог остается открытым, точка не теряется
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "draft", valErr.Field)
	require.NotNil(t, f.view.Selection().PendingLocation())
	assert.Equal(t, loc, *f.view.Selection().PendingLocation())
}

func TestSubmitIncident_StoreError(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	f.view.Selection().OpenCompose(models.Location{Latitude: 40.75, Longitude: -73.99})

	// Ожидания
	f.store.EXPECT().InsertIncident(ctx, gomock.Any()).Return(errors.New("connection refused"))

	// Действие
	err := f.view.SubmitIncident(ctx, IncidentDraft{
		Title:       "Pothole",
		Description: "Deep pothole",
		Category:    "infrastructure",
	})

	// Проверки: диалог остается открытым для повторной отправки
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, f.view.Selection().Composing())
	assert.Equal(t, "Failed to submit incident", f.notifier.lastError())
}

func TestSubmitIncident_Success(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	loc := models.Location{Latitude: 40.75, Longitude: -73.99}
	f.view.Selection().OpenCompose(loc)

	// Ожидания
	var inserted *models.Incident
	f.store.EXPECT().InsertIncident(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, incident *models.Incident) error {
		inserted = incident
		return nil
	})
	f.store.EXPECT().ListIncidents(ctx).Return(nil, nil)

	// Действие
	err := f.view.SubmitIncident(ctx, IncidentDraft{
		Title:       "Pothole",
		Description: "Deep pothole",
		Category:    "infrastructure",
	})

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "Pothole", inserted.Title)
	assert.Equal(t, models.CategoryInfrastructure, inserted.Category)
	assert.Equal(t, loc.Latitude, inserted.Latitude)
	assert.Equal(t, loc.Longitude, inserted.Longitude)
	assert.False(t, f.view.Selection().Composing())
	assert.Contains(t, f.notifier.successes, "Incident reported successfully")
}

func TestSendMessage_NoIncidentOpen(t *testing.T) {
	// Подготовка
	f := newTestView(t)

	// Действие
	err := f.view.SendMessage(context.Background(), "Still there")

	// Проверки
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "incident", valErr.Field)
}

func TestSendMessage_BlankText(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	f.view.Selection().OpenIncident(testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00))

	// Действие
	err := f.view.SendMessage(context.Background(), "   \n\t ")

	// Проверки
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "text", valErr.Field)
}

func TestSendMessage_StoreError(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.view.Selection().OpenIncident(incident)

	// Ожидания
	f.store.EXPECT().InsertMessage(ctx, gomock.Any()).Return(errors.New("connection refused"))

	// Действие
	err := f.view.SendMessage(ctx, "Still there")

	// Проверки: просмотр остается открытым
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, f.view.Selection().Viewing())
}

func TestSendMessage_Success(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.view.Selection().OpenIncident(incident)

	refreshed := *incident
	refreshed.Messages = []*models.Message{{
		IncidentID: incident.ID,
		Author:     models.AnonymousAuthor,
		Text:       "Still there",
		CreatedAt:  time.Now().UTC(),
	}}

	// Ожидания
	var sent *models.Message
	f.store.EXPECT().InsertMessage(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, message *models.Message) error {
		sent = message
		return nil
	})
	f.store.EXPECT().ListIncidents(ctx).Return([]*models.Incident{&refreshed}, nil)

	// Действие
	err := f.view.SendMessage(ctx, "  Still there  ")

	// Проверки: текст обрезан, автор анонимный, просмотр подхватил тред
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, incident.ID, sent.IncidentID)
	assert.Equal(t, models.AnonymousAuthor, sent.Author)
	assert.Equal(t, "Still there", sent.Text)
	require.NotNil(t, f.view.Selection().ActiveIncident())
	assert.Len(t, f.view.Selection().ActiveIncident().Messages, 1)
}

func TestViewClose(t *testing.T) {
	// Подготовка
	f := newTestView(t)
	ctx := context.Background()
	incident := testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00)
	f.store.EXPECT().ListIncidents(ctx).Return([]*models.Incident{incident}, nil)
	require.NoError(t, f.view.Initialize(ctx, "pk.test-token"))
	liveMap := f.provider.lastMap()

	// Действие
	f.view.Close()

	// Проверки: маркеры убраны, карта уничтожена, подписка снята
	assert.Equal(t, 0, f.view.markers.Count())
	assert.True(t, liveMap.destroyed)
	category := models.CategoryNoise
	f.filters.Publish(&category)
	assert.Equal(t, 0, f.view.markers.Count())
}
