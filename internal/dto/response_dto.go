package dto

import (
	"time"

	"gorm.io/datatypes"
)

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type UserActivityDTO struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	ActivityType string            `json:"activity_type"`
	Title        string            `json:"title"`
	Details      datatypes.JSONMap `json:"details" swaggertype:"object"`
	CreatedAt    time.Time         `json:"created_at"`
}

type JournalDTO struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	AIAnalysis datatypes.JSONMap `json:"ai_analysis" swaggertype:"object"`
	CreatedAt  time.Time         `json:"created_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
