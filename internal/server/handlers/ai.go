package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/codementor-ai/codementor/internal/ai"
)

// AIHandler exposes the AI operations over HTTP.
type AIHandler struct {
	svc *ai.Service
}

func NewAIHandler(svc *ai.Service) *AIHandler {
	return &AIHandler{svc: svc}
}

type generateCodeRequest struct {
	Description            string `json:"description"`
	Language               string `json:"language,omitempty"`
	Framework              string `json:"framework,omitempty"`
	AdditionalRequirements string `json:"additional_requirements,omitempty"`
}

// HandleGenerateCode handles POST /v1/ai/generate-code
func (h *AIHandler) HandleGenerateCode(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	result, err := h.svc.GenerateCode(r.Context(), ai.GenerateCodeRequest{
		Description:            req.Description,
		Language:               req.Language,
		Framework:              req.Framework,
		AdditionalRequirements: req.AdditionalRequirements,
		UserID:                 apiKey.ID,
	})
	if err != nil {
		writeAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type explainCodeRequest struct {
	Code           string `json:"code"`
	FocusAreas     string `json:"focus_areas,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
}

// HandleExplainCode handles POST /v1/ai/explain-code
func (h *AIHandler) HandleExplainCode(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req explainCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.svc.ExplainCode(r.Context(), ai.ExplainCodeRequest{
		Code:           req.Code,
		FocusAreas:     req.FocusAreas,
		TargetAudience: req.TargetAudience,
		UserID:         apiKey.ID,
	})
	if err != nil {
		writeAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type reviewCodeRequest struct {
	Code             string `json:"code"`
	ReviewType       string `json:"review_type,omitempty"`
	SpecificConcerns string `json:"specific_concerns,omitempty"`
}

// HandleReviewCode handles POST /v1/ai/review-code
func (h *AIHandler) HandleReviewCode(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req reviewCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.svc.ReviewCode(r.Context(), ai.ReviewCodeRequest{
		Code:             req.Code,
		ReviewType:       req.ReviewType,
		SpecificConcerns: req.SpecificConcerns,
		UserID:           apiKey.ID,
	})
	if err != nil {
		writeAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /v1/ai/health. Always 200; failures surface in
// the payload instead.
func (h *AIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.HealthCheck(r.Context()))
}

// HandleContext handles GET /v1/ai/context
func (h *AIHandler) HandleContext(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ContextInfo(r.Context()))
}

// HandleMetrics handles GET /v1/ai/metrics
func (h *AIHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Metrics())
}
