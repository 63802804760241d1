package dto

// ChatRequest is relayed to the LLM as a single user message.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Model   string `json:"model"` // Optional: overrides the configured model
}

type AnalyzeRequest struct {
	Content string `json:"content" binding:"required"`
}

// JournalCreateDTO is the request body for saving a journal entry.
type JournalCreateDTO struct {
	UserID  string `json:"user_id" binding:"required"`
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}
