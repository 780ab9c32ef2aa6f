package api

import (
	"github.com/stickon/stickon/internal/ai"
	"github.com/stickon/stickon/internal/carousel"
	"github.com/stickon/stickon/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Text       string       `json:"text" example:"Buy milk"`
	ImageURL   string       `json:"image_url,omitempty"`
	DrawingURL string       `json:"drawing_url,omitempty"`
	AudioURL   string       `json:"audio_url,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	Color      models.Color `json:"color,omitempty" example:"yellow"`
	X          float64      `json:"canvas_x,omitempty"`
	Y          float64      `json:"canvas_y,omitempty"`
}

// NoteListResponse wraps a filtered note listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Tags  []string      `json:"tags" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// PositionRequest is the request body for a note position update.
type PositionRequest struct {
	X float64 `json:"x" validate:"required"`
	Y float64 `json:"y" validate:"required"`
}

// TidyRequest is the request body for arranging the canvas into a grid.
type TidyRequest struct {
	ContainerWidth float64 `json:"container_width" example:"1280" validate:"required"`
}

// StackRequest names a note for a stacking operation.
type StackRequest struct {
	ID string `json:"id" validate:"required"`
}

// StackStateResponse reports the armed stacking source, empty when inactive.
type StackStateResponse struct {
	Armed string `json:"armed"`
}

// CarouselSlide pairs a note with its rendered 3D transform and the shadow
// layers for notes stacked beneath it.
type CarouselSlide struct {
	Note       models.Note        `json:"note" validate:"required"`
	Transform  carousel.Transform `json:"transform" validate:"required"`
	StackCount int                `json:"stack_count"`
	Shadows    []carousel.Shadow  `json:"shadows,omitempty"`
}

// CarouselResponse is the rendered carousel state.
type CarouselResponse struct {
	Slides []CarouselSlide `json:"slides" validate:"required"`
	Active int             `json:"active" validate:"required"`
	Total  int             `json:"total" validate:"required"`
}

// JumpRequest asks the carousel to focus a specific note.
type JumpRequest struct {
	ID string `json:"id" validate:"required"`
}

// ImportResponse reports the outcome of a collection import.
type ImportResponse struct {
	Imported int `json:"imported" validate:"required"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// SignUpRequest is the request body for account registration.
type SignUpRequest struct {
	Email    string `json:"email" example:"ada@example.com" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
}

// SignInRequest is the request body for authentication.
type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// QueryRequest is the request body for a conversational canvas query.
type QueryRequest struct {
	Question string       `json:"question" validate:"required"`
	History  []ai.Message `json:"history,omitempty"`
}
