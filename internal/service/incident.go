package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/config"
	"github.com/avolkov/community_safety_watch/internal/models"
	"github.com/avolkov/community_safety_watch/internal/notify"
)

// ErrIncidentNotFound возвращается, когда инцидент с указанным id не существует
var ErrIncidentNotFound = errors.New("incident not found")

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncidentByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, category *models.Category) ([]*models.Incident, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	GetReportStats(ctx context.Context, minutes int) (int, error)
	GetListFromCache(ctx context.Context, category *models.Category) ([]*models.Incident, error)
	SetListCache(ctx context.Context, category *models.Category, incidents []*models.Incident) error
	InvalidateListCache(ctx context.Context) error
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, category *models.Category) ([]*models.Incident, error)
	AddMessage(ctx context.Context, message *models.Message) error
	GetStats(ctx context.Context) (int, error)
}

type incidentService struct {
	repo      IncidentRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher notify.EventPublisher
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger, cfg *config.Config, publisher notify.EventPublisher) IncidentService {
	return &incidentService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
	}
}

// CreateIncident создает инцидент и инвалидирует кэш списка
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "CreateIncident",
		"title":    incident.Title,
		"category": incident.Category,
	})
	log.Info("Attempting to create a new incident")

	if err := incident.Location().Validate(); err != nil {
		log.WithError(err).Warn("Incident location out of range")
		return fmt.Errorf("service: invalid incident location: %w", err)
	}

	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	// Кэшированные списки больше не отражают состояние хранилища
	if err := s.repo.InvalidateListCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident list cache")
	}

	if err := s.publisher.Publish(ctx, notify.IncidentEvent{
		IncidentID:  incident.ID.String(),
		Title:       incident.Title,
		Category:    incident.Category,
		Latitude:    incident.Latitude,
		Longitude:   incident.Longitude,
		ReportedAt:  incident.CreatedAt,
		PublishedAt: time.Now().UTC(),
	}); err != nil {
		// Доставка уведомлений не должна ломать создание инцидента
		log.WithError(err).Warn("Failed to publish incident event")
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID вместе с тредом сообщений
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Incident not found")
			return nil, err
		}
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает инциденты по убыванию времени создания.
// category == nil означает "показать все"
func (s *incidentService) ListIncidents(ctx context.Context, category *models.Category) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})
	if category != nil {
		log = log.WithField("category", *category)
	}
	log.Info("Listing incidents")

	// Сначала пробуем кэш
	cached, err := s.repo.GetListFromCache(ctx, category)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident list cache")
	}
	if cached != nil {
		log.WithField("count", len(cached)).Info("Incidents listed from cache")
		return cached, nil
	}

	incidents, err := s.repo.ListIncidents(ctx, category)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	if err := s.repo.SetListCache(ctx, category, incidents); err != nil {
		log.WithError(err).Warn("Failed to set incident list cache")
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// AddMessage добавляет сообщение в тред инцидента
func (s *incidentService) AddMessage(ctx context.Context, message *models.Message) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "AddMessage",
		"incident_id": message.IncidentID,
	})
	log.Info("Attempting to add a message to incident thread")

	message.Text = strings.TrimSpace(message.Text)
	if message.Text == "" {
		log.Warn("Rejected blank message")
		return fmt.Errorf("service: message text must not be blank")
	}

	if message.Author == "" {
		message.Author = models.AnonymousAuthor
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Attempted to add message to non-existent incident")
			return err
		}
		log.WithError(err).Error("Failed to create message in repository")
		return fmt.Errorf("service: could not create message: %w", err)
	}

	// Открытый тред подтягивает новое сообщение через перечитывание списка
	if err := s.repo.InvalidateListCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident list cache")
	}

	log.WithField("message_id", message.ID).Info("Message added successfully")
	return nil
}

// GetStats возвращает количество инцидентов за настроенное окно времени
func (s *incidentService) GetStats(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "GetStats",
	})
	log.Info("Fetching report stats")

	count, err := s.repo.GetReportStats(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		log.WithError(err).Error("Failed to get report stats from repository")
		return 0, fmt.Errorf("service: could not get report stats: %w", err)
	}
	return count, nil
}
