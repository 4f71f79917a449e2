package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/community_safety_watch/internal/models"
)

const (
	eventQueueKey = "incident_events"
)

// IncidentEvent - структура для данных исходящего уведомления о новом инциденте
type IncidentEvent struct {
	IncidentID  string          `json:"incident_id"`
	Title       string          `json:"title"`
	Category    models.Category `json:"category"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	ReportedAt  time.Time       `json:"reported_at"`
	PublishedAt time.Time       `json:"published_at"`
}

// EventPublisher - интерфейс для публикации событий об инцидентах
type EventPublisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisEventPublisher - реализация EventPublisher, использующая Redis
type RedisEventPublisher struct {
	redisClient *redis.Client
}

// NewRedisEventPublisher создает новый RedisEventPublisher
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisEventPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, eventQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
