package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/community_safety_watch/internal/models"
)

func TestApplyFilter_NilShowsAll(t *testing.T) {
	// Подготовка
	all := []*models.Incident{
		testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00),
		testIncident("Loud party", models.CategoryNoise, 40.72, -74.01),
	}

	// Действие
	filtered := ApplyFilter(all, nil)

	// Проверки
	assert.Equal(t, all, filtered)
}

func TestApplyFilter_ByCategory(t *testing.T) {
	// Подготовка
	safety := testIncident("Broken streetlight", models.CategorySafety, 40.73, -74.02)
	all := []*models.Incident{
		testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00),
		safety,
		testIncident("Loud party", models.CategoryNoise, 40.72, -74.01),
	}

	// Действие
	category := models.CategorySafety
	filtered := ApplyFilter(all, &category)

	// Проверки: только инциденты выбранной категории
	require.Len(t, filtered, 1)
	assert.Equal(t, safety.ID, filtered[0].ID)
}

func TestApplyFilter_NoMatches(t *testing.T) {
	// Подготовка
	all := []*models.Incident{
		testIncident("Pothole", models.CategoryInfrastructure, 40.71, -74.00),
	}

	// Действие
	category := models.CategoryAccident
	filtered := ApplyFilter(all, &category)

	// Проверки
	assert.Empty(t, filtered)
}

func TestFilterBus_PublishNotifiesSubscribers(t *testing.T) {
	// Подготовка
	bus := NewFilterBus()
	var received []*models.Category
	bus.Subscribe(func(category *models.Category) {
		received = append(received, category)
	})

	// Действие
	category := models.CategoryNoise
	bus.Publish(&category)
	bus.Publish(nil)

	// Проверки
	require.Len(t, received, 2)
	assert.Equal(t, &category, received[0])
	assert.Nil(t, received[1])
	assert.Nil(t, bus.Current())
}

func TestFilterBus_CurrentHoldsLastPublished(t *testing.T) {
	// Подготовка
	bus := NewFilterBus()
	require.Nil(t, bus.Current())

	// Действие
	category := models.CategorySafety
	bus.Publish(&category)

	// Проверки
	require.NotNil(t, bus.Current())
	assert.Equal(t, models.CategorySafety, *bus.Current())
}

func TestFilterBus_Unsubscribe(t *testing.T) {
	// Подготовка
	bus := NewFilterBus()
	calls := 0
	unsubscribe := bus.Subscribe(func(*models.Category) {
		calls++
	})
	category := models.CategoryOther
	bus.Publish(&category)
	require.Equal(t, 1, calls)

	// Действие
	unsubscribe()
	bus.Publish(nil)

	// Проверки: после отписки уведомлений нет
	assert.Equal(t, 1, calls)
}
