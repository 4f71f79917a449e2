package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/avolkov/community_safety_watch/internal/models"
	"github.com/avolkov/community_safety_watch/internal/service"
)

type IncidentRepository struct {
	db           *pgxpool.Pool
	redisClient  *redis.Client
	listCacheTTL time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, listCacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:           db,
		redisClient:  redisClient,
		listCacheTTL: listCacheTTL,
	}
}

// CreateIncident создает новую запись об инциденте в бд
func (r *IncidentRepository) CreateIncident(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (title, description, category, location, created_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Longitude,
		incident.Latitude,
		incident.CreatedAt,
	).Scan(&incident.ID)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetIncidentByID возвращает инцидент по его UUID вместе с тредом сообщений
func (r *IncidentRepository) GetIncidentByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident := &models.Incident{}
	query := `
		SELECT
			id,
			title,
			description,
			category,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			created_at
		FROM incidents
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Category,
		&incident.Latitude,
		&incident.Longitude,
		&incident.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}

	messages, err := r.listMessages(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	incident.Messages = messages[id]
	return incident, nil
}

// ListIncidents возвращает инциденты по убыванию времени создания,
// каждый с вложенным тредом сообщений. category == nil означает "все"
func (r *IncidentRepository) ListIncidents(ctx context.Context, category *models.Category) ([]*models.Incident, error) {
	query := `
		SELECT
			id,
			title,
			description,
			category,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			created_at
		FROM incidents
		WHERE ($1::text IS NULL OR category = $1)
		ORDER BY created_at DESC;
	`
	var categoryArg *string
	if category != nil {
		s := string(*category)
		categoryArg = &s
	}

	rows, err := r.db.Query(ctx, query, categoryArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.ID,
			&incident.Title,
			&incident.Description,
			&incident.Category,
			&incident.Latitude,
			&incident.Longitude,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
		ids = append(ids, incident.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}

	if len(ids) == 0 {
		return incidents, nil
	}

	messages, err := r.listMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, incident := range incidents {
		incident.Messages = messages[incident.ID]
	}
	return incidents, nil
}

// listMessages возвращает сообщения указанных инцидентов, сгруппированные по инциденту.
// Порядок внутри треда - порядок вставки (seq), а не только created_at
func (r *IncidentRepository) listMessages(ctx context.Context, incidentIDs []uuid.UUID) (map[uuid.UUID][]*models.Message, error) {
	query := `
		SELECT id, incident_id, author, text, seq, created_at
		FROM messages
		WHERE incident_id = ANY($1)
		ORDER BY seq ASC;
	`
	rows, err := r.db.Query(ctx, query, incidentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	grouped := make(map[uuid.UUID][]*models.Message)
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.IncidentID,
			&msg.Author,
			&msg.Text,
			&msg.Seq,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		grouped[msg.IncidentID] = append(grouped[msg.IncidentID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error message iteration: %w", err)
	}
	return grouped, nil
}

// CreateMessage создает сообщение в треде инцидента
func (r *IncidentRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (incident_id, author, text, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id, seq;
	`
	err := r.db.QueryRow(ctx, query,
		message.IncidentID,
		message.Author,
		message.Text,
		message.CreatedAt,
	).Scan(&message.ID, &message.Seq)
	if err != nil {
		// Нарушение внешнего ключа - инцидента не существует
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return service.ErrIncidentNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetReportStats возвращает количество инцидентов, созданных за последние minutes минут
func (r *IncidentRepository) GetReportStats(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM incidents
		WHERE created_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get report stats: %w", err)
	}
	return count, nil
}

// listCacheKey строит ключ кэша для списка с учетом фильтра категории
func listCacheKey(category *models.Category) string {
	if category == nil {
		return "incidents:list:all"
	}
	return fmt.Sprintf("incidents:list:%s", *category)
}

// GetListFromCache пытается получить список инцидентов из Redis
func (r *IncidentRepository) GetListFromCache(ctx context.Context, category *models.Category) ([]*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, listCacheKey(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident list from cache: %w", err)
	}

	incidents := make([]*models.Incident, 0)
	if err := json.Unmarshal(val, &incidents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident list from cache: %w", err)
	}
	return incidents, nil
}

// SetListCache сохраняет список инцидентов в Redis
func (r *IncidentRepository) SetListCache(ctx context.Context, category *models.Category, incidents []*models.Incident) error {
	val, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to marshal incident list for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, listCacheKey(category), val, r.listCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident list in cache: %w", err)
	}
	return nil
}

// InvalidateListCache удаляет все варианты списка из Redis.
// Вызывается после каждой успешной вставки инцидента или сообщения
func (r *IncidentRepository) InvalidateListCache(ctx context.Context) error {
	keys := make([]string, 0, len(models.Categories)+1)
	keys = append(keys, listCacheKey(nil))
	for i := range models.Categories {
		keys = append(keys, listCacheKey(&models.Categories[i]))
	}
	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident list cache: %w", err)
	}
	return nil
}
