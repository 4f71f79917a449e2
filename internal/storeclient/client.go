package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/mapview"
	"github.com/avolkov/community_safety_watch/internal/models"
)

// Client - HTTP-клиент хранилища инцидентов с ограниченным таймаутом запросов.
// Реализует mapview.Store
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ mapview.Store = (*Client)(nil)

func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type createIncidentPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type createMessagePayload struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// ListIncidents запрашивает полный список инцидентов с тредами
func (c *Client) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/incidents", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list incidents returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	incidents := make([]*models.Incident, 0)
	if err := json.NewDecoder(resp.Body).Decode(&incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incident list: %w", err)
	}
	return incidents, nil
}

// InsertIncident вставляет один инцидент. ID и CreatedAt заполняются из ответа
func (c *Client) InsertIncident(ctx context.Context, incident *models.Incident) error {
	payload := createIncidentPayload{
		Title:       incident.Title,
		Description: incident.Description,
		Category:    string(incident.Category),
		Latitude:    incident.Latitude,
		Longitude:   incident.Longitude,
	}

	var created models.Incident
	if err := c.post(ctx, "/api/v1/incidents", payload, &created); err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}

	incident.ID = created.ID
	incident.CreatedAt = created.CreatedAt
	return nil
}

// InsertMessage вставляет одно сообщение в тред инцидента
func (c *Client) InsertMessage(ctx context.Context, message *models.Message) error {
	payload := createMessagePayload{
		Text:   message.Text,
		Author: message.Author,
	}

	path := fmt.Sprintf("/api/v1/incidents/%s/messages", message.IncidentID)
	var created models.Message
	if err := c.post(ctx, path, payload, &created); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	message.ID = created.ID
	message.CreatedAt = created.CreatedAt
	return nil
}

// post выполняет POST с JSON-телом и декодирует ответ 201
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// readErrorBody читает тело ошибки для диагностики, обрезая длинные ответы
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(data)
}
