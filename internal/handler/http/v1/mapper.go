package v1

import "github.com/avolkov/community_safety_watch/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    models.Category(dto.Category),
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
	}
}

// ModelToMessageResponse преобразует сообщение в DTO для ответа
func ModelToMessageResponse(model *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:         model.ID,
		IncidentID: model.IncidentID,
		Author:     model.Author,
		Text:       model.Text,
		CreatedAt:  model.CreatedAt,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	messages := make([]*MessageResponse, len(model.Messages))
	for i, msg := range model.Messages {
		messages[i] = ModelToMessageResponse(msg)
	}
	return &IncidentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Category:    string(model.Category),
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		CreatedAt:   model.CreatedAt,
		Messages:    messages,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
