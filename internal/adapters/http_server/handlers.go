package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"employee_reviews/internal/adapters/observability"
	"employee_reviews/internal/app"
	"employee_reviews/internal/domain"
)

type Handlers struct {
	Reviews   *app.Reviews
	Employees *app.Employees
}

// validator caches struct metadata and is safe for concurrent use.
var validate = validator.New()

const maxBodyBytes = 1 << 20

type problem struct {
	Type   string         `json:"type"`
	Title  string         `json:"title"`
	Status int            `json:"status"`
	Detail string         `json:"detail,omitempty"`
	Errors []fieldProblem `json:"errors,omitempty"`
}

type fieldProblem struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type employeeRequest struct {
	Name     string `json:"name" validate:"required"`
	JobTitle string `json:"job_title"`
}

type createReviewRequest struct {
	Year       *int    `json:"year" validate:"required,gte=2000"`
	Summary    *string `json:"summary" validate:"required"`
	EmployeeID *int64  `json:"employee_id" validate:"required,gt=0"`
}

// Absent fields keep their stored value.
type updateReviewRequest struct {
	Year       *int    `json:"year" validate:"omitempty,gte=2000"`
	Summary    *string `json:"summary"`
	EmployeeID *int64  `json:"employee_id" validate:"omitempty,gt=0"`
}

type reviewResponse struct {
	ID         int64  `json:"id"`
	Year       int    `json:"year"`
	Summary    string `json:"summary"`
	EmployeeID int64  `json:"employee_id"`
}

type reviewsResponse struct {
	Items []reviewResponse `json:"items"`
}

func toReviewResponse(r *domain.Review) reviewResponse {
	row := r.Row()
	return reviewResponse{ID: row.ID, Year: row.Year, Summary: row.Summary, EmployeeID: row.EmployeeID}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/employees", h.createEmployee)
	s.mux.Get("/v1/employees/{id}", h.getEmployee)

	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Post("/v1/reviews", h.createReview)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Put("/v1/reviews/{id}", h.updateReview)
	s.mux.Delete("/v1/reviews/{id}", h.deleteReview)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields ...fieldProblem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain and validation errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	var ferr *domain.FieldError
	switch {
	case errors.As(err, &verrs):
		fields := make([]fieldProblem, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldProblem{Field: jsonField(fe.Field()), Error: "failed " + fe.Tag() + " " + fe.Param()})
		}
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "validation failed", fields...)
	case errors.As(err, &ferr):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", err.Error(), fieldProblem{Field: ferr.Field, Error: ferr.Msg})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		writeProblem(w, http.StatusConflict, "Invalid Operation", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Str("type", observability.LabelErr(err)).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// jsonField turns a validator struct field name into its JSON key.
func jsonField(name string) string {
	switch name {
	case "EmployeeID":
		return "employee_id"
	case "JobTitle":
		return "job_title"
	default:
		return strings.ToLower(name)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return 0, false
	}
	return id, true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCacheable serves v with a weak ETag and answers If-None-Match with 304.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// ---- employees ----

func (h *Handlers) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := h.Employees.Create(r.Context(), req.Name, req.JobTitle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/employees/%d", e.ID))
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handlers) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.Employees.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if e == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "employee not found")
		return
	}
	writeCacheable(w, r, e)
}

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	all, err := h.Reviews.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := reviewsResponse{Items: make([]reviewResponse, 0, len(all))}
	for _, rv := range all {
		out.Items = append(out.Items, toReviewResponse(rv))
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if !decode(w, r, &req) {
		return
	}
	rv, err := h.Reviews.Create(r.Context(), *req.Year, *req.Summary, *req.EmployeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := toReviewResponse(rv)
	w.Header().Set("Location", fmt.Sprintf("/v1/reviews/%d", resp.ID))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) findReview(w http.ResponseWriter, r *http.Request) (*domain.Review, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	rv, err := h.Reviews.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if rv == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
		return nil, false
	}
	return rv, true
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	rv, ok := h.findReview(w, r)
	if !ok {
		return
	}
	writeCacheable(w, r, toReviewResponse(rv))
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	rv, ok := h.findReview(w, r)
	if !ok {
		return
	}
	var req updateReviewRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Year != nil {
		if err := rv.SetYear(*req.Year); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Summary != nil {
		if err := rv.SetSummary(*req.Summary); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.EmployeeID != nil {
		if err := rv.SetEmployeeID(r.Context(), h.Reviews.Employees(), *req.EmployeeID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := h.Reviews.Save(r.Context(), rv); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(rv))
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	rv, ok := h.findReview(w, r)
	if !ok {
		return
	}
	if err := h.Reviews.Delete(r.Context(), rv); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
