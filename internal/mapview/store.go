package mapview

import (
	"context"

	"github.com/avolkov/community_safety_watch/internal/models"
)

// Store определяет контракт удаленного хранилища инцидентов.
// Реализуется HTTP-клиентом сервиса (storeclient)
type Store interface {
	// ListIncidents возвращает инциденты по убыванию времени создания,
	// каждый с вложенным тредом сообщений
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	// InsertIncident вставляет один инцидент, заполняя ID и CreatedAt
	InsertIncident(ctx context.Context, incident *models.Incident) error
	// InsertMessage вставляет одно сообщение в тред инцидента
	InsertMessage(ctx context.Context, message *models.Message) error
}
