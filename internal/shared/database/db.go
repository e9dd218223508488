package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/codementor-ai/codementor/internal/shared/models"
)

// ErrNotFound is returned when a row does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetAPIKey retrieves an API key by its raw key value
func (db *DB) GetAPIKey(ctx context.Context, rawKey string) (*models.APIKey, error) {
	// Hash the key
	hash := sha256.Sum256([]byte(rawKey))
	keyHash := hex.EncodeToString(hash[:])

	query := `
		SELECT id, key_hash, key_prefix, name, rate_limit_per_minute,
		       is_active, last_used_at, created_at, updated_at
		FROM api_keys
		WHERE key_hash = $1 AND is_active = true
	`

	var apiKey models.APIKey
	err := db.conn.QueryRowContext(ctx, query, keyHash).Scan(
		&apiKey.ID,
		&apiKey.KeyHash,
		&apiKey.KeyPrefix,
		&apiKey.Name,
		&apiKey.RateLimitPerMinute,
		&apiKey.IsActive,
		&apiKey.LastUsedAt,
		&apiKey.CreatedAt,
		&apiKey.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid API key")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &apiKey, nil
}

// UpdateAPIKeyLastUsed updates the last_used_at timestamp
func (db *DB) UpdateAPIKeyLastUsed(ctx context.Context, apiKeyID string) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, query, apiKeyID)
	return err
}

// CreateDocument inserts a document row and returns it with generated fields
func (db *DB) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.UUID = uuid.New()

	query := `
		INSERT INTO documents (uuid, title, filename, file_path, file_type, file_size, content, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := db.conn.QueryRowContext(ctx, query,
		doc.UUID,
		doc.Title,
		doc.Filename,
		doc.FilePath,
		doc.FileType,
		doc.FileSize,
		doc.Content,
		doc.UserID,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return doc, nil
}

const documentColumns = `
	id, uuid, title, filename, file_path, file_type, file_size,
	COALESCE(content, ''), user_id, created_at, updated_at, is_deleted`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.UUID,
		&doc.Title,
		&doc.Filename,
		&doc.FilePath,
		&doc.FileType,
		&doc.FileSize,
		&doc.Content,
		&doc.UserID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.IsDeleted,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &doc, nil
}

// GetDocument fetches one non-deleted document owned by userID
func (db *DB) GetDocument(ctx context.Context, id int64, userID string) (*models.Document, error) {
	query := `SELECT` + documentColumns + `
		FROM documents
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	return scanDocument(db.conn.QueryRowContext(ctx, query, id, userID))
}

// ListDocuments fetches all non-deleted documents owned by userID
func (db *DB) ListDocuments(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `SELECT` + documentColumns + `
		FROM documents
		WHERE user_id = $1 AND is_deleted = false
		ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateDocumentTitle renames a document
func (db *DB) UpdateDocumentTitle(ctx context.Context, id int64, userID, title string) (*models.Document, error) {
	query := `
		UPDATE documents SET title = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false
		RETURNING ` + documentColumns

	return scanDocument(db.conn.QueryRowContext(ctx, query, id, userID, title))
}

// SoftDeleteDocument marks a document deleted without removing the row
func (db *DB) SoftDeleteDocument(ctx context.Context, id int64, userID string) error {
	query := `
		UPDATE documents SET is_deleted = true, deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	res, err := db.conn.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateQuestion inserts a generated question
func (db *DB) CreateQuestion(ctx context.Context, q *models.Question) (*models.Question, error) {
	q.UUID = uuid.New()

	query := `
		INSERT INTO questions (uuid, question_text, question_type, correct_answer,
			options, explanation, difficulty, document_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := db.conn.QueryRowContext(ctx, query,
		q.UUID,
		q.QuestionText,
		q.QuestionType,
		q.CorrectAnswer,
		q.Options,
		q.Explanation,
		q.Difficulty,
		q.DocumentID,
		q.UserID,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return q, nil
}

const questionColumns = `
	id, uuid, question_text, question_type, correct_answer, options,
	explanation, difficulty, document_id, user_id, created_at, updated_at, is_deleted`

func scanQuestion(row interface{ Scan(...any) error }) (*models.Question, error) {
	var q models.Question
	err := row.Scan(
		&q.ID,
		&q.UUID,
		&q.QuestionText,
		&q.QuestionType,
		&q.CorrectAnswer,
		&q.Options,
		&q.Explanation,
		&q.Difficulty,
		&q.DocumentID,
		&q.UserID,
		&q.CreatedAt,
		&q.UpdatedAt,
		&q.IsDeleted,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &q, nil
}

// GetQuestion fetches one non-deleted question owned by userID
func (db *DB) GetQuestion(ctx context.Context, id int64, userID string) (*models.Question, error) {
	query := `SELECT` + questionColumns + `
		FROM questions
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	return scanQuestion(db.conn.QueryRowContext(ctx, query, id, userID))
}

// ListQuestionsByDocument fetches all non-deleted questions for a document
func (db *DB) ListQuestionsByDocument(ctx context.Context, documentID int64, userID string) ([]*models.Question, error) {
	query := `SELECT` + questionColumns + `
		FROM questions
		WHERE document_id = $1 AND user_id = $2 AND is_deleted = false
		ORDER BY created_at`

	rows, err := db.conn.QueryContext(ctx, query, documentID, userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpdateQuestionExplanation replaces a question's explanation
func (db *DB) UpdateQuestionExplanation(ctx context.Context, id int64, userID, explanation string) (*models.Question, error) {
	query := `
		UPDATE questions SET explanation = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false
		RETURNING ` + questionColumns

	return scanQuestion(db.conn.QueryRowContext(ctx, query, id, userID, explanation))
}

// SoftDeleteQuestion marks a question deleted
func (db *DB) SoftDeleteQuestion(ctx context.Context, id int64, userID string) error {
	query := `
		UPDATE questions SET is_deleted = true, deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	res, err := db.conn.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateStudySession inserts a new study session
func (db *DB) CreateStudySession(ctx context.Context, s *models.StudySession) (*models.StudySession, error) {
	s.UUID = uuid.New()

	query := `
		INSERT INTO study_sessions (uuid, session_name, total_questions, document_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, correct_answers, created_at
	`

	err := db.conn.QueryRowContext(ctx, query,
		s.UUID,
		s.SessionName,
		s.TotalQuestions,
		s.DocumentID,
		s.UserID,
	).Scan(&s.ID, &s.CorrectAnswers, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s, nil
}

const sessionColumns = `
	id, uuid, session_name, total_questions, correct_answers, score_percentage,
	time_spent_minutes, answers, document_id, user_id, created_at, updated_at, is_deleted`

func scanStudySession(row interface{ Scan(...any) error }) (*models.StudySession, error) {
	var s models.StudySession
	err := row.Scan(
		&s.ID,
		&s.UUID,
		&s.SessionName,
		&s.TotalQuestions,
		&s.CorrectAnswers,
		&s.ScorePercentage,
		&s.TimeSpentMinutes,
		&s.Answers,
		&s.DocumentID,
		&s.UserID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.IsDeleted,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &s, nil
}

// GetStudySession fetches one non-deleted session owned by userID
func (db *DB) GetStudySession(ctx context.Context, id int64, userID string) (*models.StudySession, error) {
	query := `SELECT` + sessionColumns + `
		FROM study_sessions
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	return scanStudySession(db.conn.QueryRowContext(ctx, query, id, userID))
}

// ListStudySessions fetches all non-deleted sessions owned by userID
func (db *DB) ListStudySessions(ctx context.Context, userID string) ([]*models.StudySession, error) {
	query := `SELECT` + sessionColumns + `
		FROM study_sessions
		WHERE user_id = $1 AND is_deleted = false
		ORDER BY created_at DESC`

	return db.collectStudySessions(ctx, query, userID)
}

// ListStudySessionsByDocument fetches all non-deleted sessions for a document
func (db *DB) ListStudySessionsByDocument(ctx context.Context, documentID int64, userID string) ([]*models.StudySession, error) {
	query := `SELECT` + sessionColumns + `
		FROM study_sessions
		WHERE document_id = $1 AND user_id = $2 AND is_deleted = false
		ORDER BY created_at DESC`

	return db.collectStudySessions(ctx, query, documentID, userID)
}

func (db *DB) collectStudySessions(ctx context.Context, query string, args ...any) ([]*models.StudySession, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var sessions []*models.StudySession
	for rows.Next() {
		s, err := scanStudySession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// StudySessionUpdate carries the updatable result fields; nil fields are left unchanged.
type StudySessionUpdate struct {
	SessionName      *string
	CorrectAnswers   *int
	ScorePercentage  *float64
	TimeSpentMinutes *int
	Answers          *string
}

// UpdateStudySession applies session results
func (db *DB) UpdateStudySession(ctx context.Context, id int64, userID string, upd StudySessionUpdate) (*models.StudySession, error) {
	query := `
		UPDATE study_sessions SET
			session_name = COALESCE($3, session_name),
			correct_answers = COALESCE($4, correct_answers),
			score_percentage = COALESCE($5, score_percentage),
			time_spent_minutes = COALESCE($6, time_spent_minutes),
			answers = COALESCE($7, answers),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false
		RETURNING ` + sessionColumns

	return scanStudySession(db.conn.QueryRowContext(ctx, query, id, userID,
		upd.SessionName,
		upd.CorrectAnswers,
		upd.ScorePercentage,
		upd.TimeSpentMinutes,
		upd.Answers,
	))
}

// SoftDeleteStudySession marks a session deleted
func (db *DB) SoftDeleteStudySession(ctx context.Context, id int64, userID string) error {
	query := `
		UPDATE study_sessions SET is_deleted = true, deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	res, err := db.conn.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
