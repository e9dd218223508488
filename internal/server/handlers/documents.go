package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/codementor-ai/codementor/internal/extract"
	"github.com/codementor-ai/codementor/internal/shared/database"
	"github.com/codementor-ai/codementor/internal/shared/models"
	"github.com/codementor-ai/codementor/internal/upload"
)

// DocumentHandler manages uploaded study documents.
type DocumentHandler struct {
	db    *database.DB
	store *upload.Store
}

func NewDocumentHandler(db *database.DB, store *upload.Store) *DocumentHandler {
	return &DocumentHandler{db: db, store: store}
}

// HandleUpload handles POST /v1/documents/upload (multipart, field "file").
// The file is stored, its text extracted, and a document row created.
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(h.store.MaxBytes()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	fileType, err := extract.ValidateFileType(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.store.MaxBytes()+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if int64(len(data)) > h.store.MaxBytes() {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	path, err := h.store.Save(data, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	content, err := extract.Text(data, fileType)
	if err != nil {
		// Processing failed; don't keep the orphaned file around
		h.store.Delete(path)
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := h.db.CreateDocument(r.Context(), &models.Document{
		Title:    titleFromFilename(header.Filename),
		Filename: header.Filename,
		FilePath: path,
		FileType: fileType,
		FileSize: int64(len(data)),
		Content:  content,
		UserID:   apiKey.ID,
	})
	if err != nil {
		h.store.Delete(path)
		writeStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func titleFromFilename(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}

// HandleList handles GET /v1/documents
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.db.ListDocuments(r.Context(), apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	respondJSON(w, http.StatusOK, docs)
}

// HandleGet handles GET /v1/documents/{id}
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.db.GetDocument(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title string `json:"title"`
}

// HandleUpdate handles PUT /v1/documents/{id}
func (h *DocumentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	doc, err := h.db.UpdateDocumentTitle(r.Context(), id, apiKey.ID, req.Title)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// HandleDelete handles DELETE /v1/documents/{id}
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := APIKeyFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.db.GetDocument(r.Context(), id, apiKey.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := h.db.SoftDeleteDocument(r.Context(), id, apiKey.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	// Physical file removal is best effort
	h.store.Delete(doc.FilePath)

	respondJSON(w, http.StatusOK, map[string]string{"message": "document deleted successfully"})
}
