package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/codementor-ai/codementor/internal/shared/database"
	"github.com/codementor-ai/codementor/internal/shared/models"
)

// StudySessionHandler manages study sessions over a document's questions.
type StudySessionHandler struct {
	db *database.DB
}

func NewStudySessionHandler(db *database.DB) *StudySessionHandler {
	return &StudySessionHandler{db: db}
}

type createSessionRequest struct {
	SessionName    string `json:"session_name"`
	TotalQuestions int    `json:"total_questions"`
	DocumentID     int64  `json:"document_id"`
}

// HandleCreate handles POST /v1/study-sessions
func (h *StudySessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionName == "" || req.TotalQuestions <= 0 || req.DocumentID <= 0 {
		writeError(w, http.StatusBadRequest, "session_name, total_questions and document_id are required")
		return
	}

	// Document must exist and belong to the caller
	if _, err := h.db.GetDocument(r.Context(), req.DocumentID, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	session, err := h.db.CreateStudySession(r.Context(), &models.StudySession{
		SessionName:    req.SessionName,
		TotalQuestions: req.TotalQuestions,
		DocumentID:     req.DocumentID,
		UserID:         apiKey.ID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// HandleList handles GET /v1/study-sessions
func (h *StudySessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.db.ListStudySessions(r.Context(), apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*models.StudySession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// HandleListByDocument handles GET /v1/study-sessions/document/{documentID}
func (h *StudySessionHandler) HandleListByDocument(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	documentID, err := urlParamInt64(r, "documentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if _, err := h.db.GetDocument(r.Context(), documentID, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	sessions, err := h.db.ListStudySessionsByDocument(r.Context(), documentID, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*models.StudySession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// HandleGet handles GET /v1/study-sessions/{id}
func (h *StudySessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.db.GetStudySession(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type updateSessionRequest struct {
	SessionName      *string  `json:"session_name,omitempty"`
	CorrectAnswers   *int     `json:"correct_answers,omitempty"`
	ScorePercentage  *float64 `json:"score_percentage,omitempty"`
	TimeSpentMinutes *int     `json:"time_spent_minutes,omitempty"`
	Answers          *string  `json:"answers,omitempty"`
}

// HandleUpdate handles PUT /v1/study-sessions/{id}. When correct_answers is
// supplied without an explicit score, the score percentage is derived.
func (h *StudySessionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.db.GetStudySession(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	score := req.ScorePercentage
	if req.CorrectAnswers != nil && score == nil && session.TotalQuestions > 0 {
		derived := float64(*req.CorrectAnswers) / float64(session.TotalQuestions) * 100
		score = &derived
	}

	updated, err := h.db.UpdateStudySession(r.Context(), id, apiKey.ID, database.StudySessionUpdate{
		SessionName:      req.SessionName,
		CorrectAnswers:   req.CorrectAnswers,
		ScorePercentage:  score,
		TimeSpentMinutes: req.TimeSpentMinutes,
		Answers:          req.Answers,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /v1/study-sessions/{id}
func (h *StudySessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := h.db.SoftDeleteStudySession(r.Context(), id, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "study session deleted successfully"})
}
