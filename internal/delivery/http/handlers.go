package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/middleware"
	"github.com/goodpapers/backend/internal/usecase"
	"github.com/goodpapers/backend/pkg/arxiv"
)

// MetadataFetcher previews arXiv metadata without writing anything.
type MetadataFetcher interface {
	FetchByID(ctx context.Context, id string) (*arxiv.Metadata, error)
}

type Handler struct {
	library  *usecase.LibraryUsecase
	query    *usecase.QueryUsecase
	arxiv    MetadataFetcher
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(library *usecase.LibraryUsecase, query *usecase.QueryUsecase, fetcher MetadataFetcher, log *logger.Logger) *Handler {
	return &Handler{
		library:  library,
		query:    query,
		arxiv:    fetcher,
		validate: validator.New(),
		log:      log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeUsecaseError maps an error from the use case layer to a status code.
func (h *Handler) writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	var ve validator.ValidationErrors
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, validationMessage(ve))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, usecase.ErrPaperNotInLibrary):
		writeError(w, http.StatusNotFound, "Paper not in library")
	case arxiv.IsAbsent(err):
		h.log.Warn("arxiv unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "Could not fetch paper metadata from arXiv")
	default:
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return "Invalid request: " + strings.Join(parts, ", ")
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Msg: "invalid JSON"}
	}
	return h.validate.Struct(dst)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Users

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := h.decode(r, &req); err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}

	user, err := h.library.CreateUser(r.Context(), req.Email, req.Name, req.Username)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	user, err := h.query.GetUser(r.Context(), userID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUserUpdates(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	updates, err := h.query.GetUpdatesForUser(r.Context(), userID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updates": nonNil(updates)})
}

// Library

func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	entries, err := h.query.GetLibrary(r.Context(), userID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"papers": entries,
		"total":  len(entries),
	})
}

type addPaperRequest struct {
	URL             string  `json:"url" validate:"required,url"`
	Source          string  `json:"source"`
	ReadingStatus   string  `json:"reading_status"`
	ReadingProgress float64 `json:"reading_progress" validate:"gte=0,lte=1"`
}

func (h *Handler) AddToLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req addPaperRequest
	if err := h.decode(r, &req); err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	if req.Source == "" {
		req.Source = domain.SourceArxiv
	}

	result, err := h.library.AddPaper(r.Context(), usecase.AddPaperInput{
		UserID:          userID,
		URL:             req.URL,
		Source:          req.Source,
		ReadingStatus:   domain.ReadingStatus(req.ReadingStatus),
		ReadingProgress: req.ReadingProgress,
	})
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type updateLibraryPaperRequest struct {
	ReadingStatus   string  `json:"reading_status" validate:"required"`
	ReadingProgress float64 `json:"reading_progress" validate:"gte=0,lte=1"`
}

func (h *Handler) UpdateLibraryPaper(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	paperID, ok := pathID(r, "paperId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid paper id")
		return
	}

	var req updateLibraryPaperRequest
	if err := h.decode(r, &req); err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}

	update, err := h.library.UpdateReadingState(r.Context(), userID, paperID, domain.ReadingStatus(req.ReadingStatus), req.ReadingProgress)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

// Papers

func (h *Handler) GetPaper(w http.ResponseWriter, r *http.Request) {
	paperID, ok := pathID(r, "paperId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid paper id")
		return
	}

	paper, err := h.query.GetPaper(r.Context(), paperID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	analyses, err := h.query.GetAnalysesForPaper(r.Context(), paperID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"paper":    paper,
		"analyses": nonNil(analyses),
	})
}

func (h *Handler) GetPaperUpdates(w http.ResponseWriter, r *http.Request) {
	paperID, ok := pathID(r, "paperId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid paper id")
		return
	}

	updates, err := h.query.GetUpdatesForPaper(r.Context(), paperID)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updates": nonNil(updates)})
}

// PreviewArxiv returns parsed metadata for an arXiv id. Old-style ids contain
// a slash, so the id is the rest of the path.
func (h *Handler) PreviewArxiv(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(chi.URLParam(r, "*"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "arXiv id is required")
		return
	}

	meta, err := h.arxiv.FetchByID(r.Context(), id)
	if err != nil {
		h.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
