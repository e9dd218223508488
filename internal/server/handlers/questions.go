package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/codementor-ai/codementor/internal/ai"
	"github.com/codementor-ai/codementor/internal/shared/database"
	"github.com/codementor-ai/codementor/internal/shared/models"
)

// QuestionHandler manages AI-generated study questions.
type QuestionHandler struct {
	db  *database.DB
	svc *ai.Service
}

func NewQuestionHandler(db *database.DB, svc *ai.Service) *QuestionHandler {
	return &QuestionHandler{db: db, svc: svc}
}

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// HandleGenerate handles POST /v1/questions/generate/{documentID}.
// Query params: num_questions (1-20, default 5), difficulty (default medium).
func (h *QuestionHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
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

	numQuestions := 5
	if raw := r.URL.Query().Get("num_questions"); raw != "" {
		numQuestions, err = strconv.Atoi(raw)
		if err != nil || numQuestions < 1 || numQuestions > 20 {
			writeError(w, http.StatusBadRequest, "num_questions must be between 1 and 20")
			return
		}
	}

	difficulty := r.URL.Query().Get("difficulty")
	if difficulty == "" {
		difficulty = "medium"
	}
	if !validDifficulties[difficulty] {
		writeError(w, http.StatusBadRequest, "difficulty must be easy, medium, or hard")
		return
	}

	document, err := h.db.GetDocument(r.Context(), documentID, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if document.Content == "" {
		writeError(w, http.StatusBadRequest, "document has no extractable content")
		return
	}

	generated, err := h.svc.GenerateQuestions(r.Context(), ai.GenerateQuestionsRequest{
		Content:      document.Content,
		NumQuestions: numQuestions,
		Difficulty:   difficulty,
		UserID:       apiKey.ID,
	})
	if err != nil {
		writeAIError(w, err)
		return
	}

	saved := make([]*models.Question, 0, len(generated))
	for _, g := range generated {
		q := &models.Question{
			QuestionText:  g.QuestionText,
			QuestionType:  g.QuestionType,
			CorrectAnswer: g.CorrectAnswer,
			Difficulty:    g.Difficulty,
			DocumentID:    documentID,
			UserID:        apiKey.ID,
		}
		if len(g.Options) > 0 {
			raw, err := json.Marshal(g.Options)
			if err == nil {
				options := string(raw)
				q.Options = &options
			}
		}
		if g.Explanation != "" {
			explanation := g.Explanation
			q.Explanation = &explanation
		}

		stored, err := h.db.CreateQuestion(r.Context(), q)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		saved = append(saved, stored)
	}

	respondJSON(w, http.StatusOK, saved)
}

// HandleListByDocument handles GET /v1/questions/document/{documentID}
func (h *QuestionHandler) HandleListByDocument(w http.ResponseWriter, r *http.Request) {
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

	// Ownership check before listing
	if _, err := h.db.GetDocument(r.Context(), documentID, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	questions, err := h.db.ListQuestionsByDocument(r.Context(), documentID, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	respondJSON(w, http.StatusOK, questions)
}

// HandleGet handles GET /v1/questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	question, err := h.db.GetQuestion(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, question)
}

// HandleDelete handles DELETE /v1/questions/{id}
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	if err := h.db.SoftDeleteQuestion(r.Context(), id, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "question deleted successfully"})
}

// HandleRegenerateExplanation handles POST /v1/questions/{id}/regenerate-explanation
func (h *QuestionHandler) HandleRegenerateExplanation(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	question, err := h.db.GetQuestion(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	explanation, err := h.svc.GenerateAnswerExplanation(r.Context(), question.QuestionText, question.CorrectAnswer, apiKey.ID)
	if err != nil {
		writeAIError(w, err)
		return
	}

	updated, err := h.db.UpdateQuestionExplanation(r.Context(), id, apiKey.ID, explanation)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
