package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents a service API key
type APIKey struct {
	ID                 string
	KeyHash            string
	KeyPrefix          string
	Name               string
	RateLimitPerMinute int
	IsActive           bool
	LastUsedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Document represents an uploaded study document with its extracted text
type Document struct {
	ID        int64      `json:"id"`
	UUID      uuid.UUID  `json:"uuid"`
	Title     string     `json:"title"`
	Filename  string     `json:"filename"`
	FilePath  string     `json:"-"`
	FileType  string     `json:"file_type"` // pdf, pptx, docx, txt, md
	FileSize  int64      `json:"file_size"` // in bytes
	Content   string     `json:"content,omitempty"`
	UserID    string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"-"`
}

// Question is a study question generated from a document
type Question struct {
	ID            int64      `json:"id"`
	UUID          uuid.UUID  `json:"uuid"`
	QuestionText  string     `json:"question_text"`
	QuestionType  string     `json:"question_type"` // multiple_choice, short_answer, true_false
	CorrectAnswer string     `json:"correct_answer"`
	Options       *string    `json:"options,omitempty"` // JSON array for multiple choice
	Explanation   *string    `json:"explanation,omitempty"`
	Difficulty    string     `json:"difficulty"` // easy, medium, hard
	DocumentID    int64      `json:"document_id"`
	UserID        string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	IsDeleted     bool       `json:"-"`
}

// StudySession tracks one run through a document's questions
type StudySession struct {
	ID               int64      `json:"id"`
	UUID             uuid.UUID  `json:"uuid"`
	SessionName      string     `json:"session_name"`
	TotalQuestions   int        `json:"total_questions"`
	CorrectAnswers   int        `json:"correct_answers"`
	ScorePercentage  *float64   `json:"score_percentage,omitempty"`
	TimeSpentMinutes *int       `json:"time_spent_minutes,omitempty"`
	Answers          *string    `json:"answers,omitempty"` // JSON of user answers
	DocumentID       int64      `json:"document_id"`
	UserID           string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	IsDeleted        bool       `json:"-"`
}
