package dto

import (
	"time"

	"gorm.io/datatypes"
)

// AssessmentResponseItem is one submitted answer. Value is deliberately loose:
// numbers, numeric strings and booleans are coerced, anything else counts as 0.
type AssessmentResponseItem struct {
	QuestionID string  `json:"question_id"`
	Value      any     `json:"value" swaggertype:"integer"`
	Text       *string `json:"text,omitempty"`
}

// AssessmentSubmitDTO is the request body of POST /api/assessments/submit.
type AssessmentSubmitDTO struct {
	UserID       string                   `json:"user_id"`
	AssessmentID string                   `json:"assessment_id"`
	Responses    []AssessmentResponseItem `json:"responses"`
}

// QuestionDTO is used for displaying an assessment's questions.
type QuestionDTO struct {
	ID            string `json:"id"`
	AssessmentID  string `json:"assessment_id"`
	QuestionText  string `json:"question_text"`
	QuestionOrder int    `json:"question_order"`
}

// AssessmentSummaryDTO is used for listing available assessments.
type AssessmentSummaryDTO struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssessmentDetailDTO is an assessment with its questions in display order.
type AssessmentDetailDTO struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Questions   []QuestionDTO `json:"questions"`
	CreatedAt   time.Time     `json:"created_at"`
}

// UserAssessmentDTO is the aggregate result returned to the caller.
type UserAssessmentDTO struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	AssessmentID string            `json:"assessment_id"`
	TotalScore   int               `json:"total_score"`
	RiskLevel    string            `json:"risk_level"`
	AIAnalysis   datatypes.JSONMap `json:"ai_analysis" swaggertype:"object"`
	CreatedAt    time.Time         `json:"created_at"`
}

type UserAssessmentResponseDTO struct {
	ID            string  `json:"id"`
	QuestionID    string  `json:"question_id"`
	ResponseValue int     `json:"response_value"`
	ResponseText  *string `json:"response_text,omitempty"`
}

// UserAssessmentDetailDTO is a stored submission with its itemized responses.
type UserAssessmentDetailDTO struct {
	ID             string                      `json:"id"`
	UserID         string                      `json:"user_id"`
	AssessmentID   string                      `json:"assessment_id"`
	AssessmentCode string                      `json:"assessment_code,omitempty"`
	TotalScore     int                         `json:"total_score"`
	RiskLevel      string                      `json:"risk_level"`
	AIAnalysis     datatypes.JSONMap           `json:"ai_analysis" swaggertype:"object"`
	Responses      []UserAssessmentResponseDTO `json:"responses"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// SubmitAssessmentResponse wraps a successful submission.
type SubmitAssessmentResponse struct {
	Success bool              `json:"success"`
	Result  UserAssessmentDTO `json:"result"`
}
