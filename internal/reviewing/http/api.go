package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

type reviewJSON struct {
	ID         int64  `json:"id"`
	Year       int    `json:"year"`
	Summary    string `json:"summary"`
	EmployeeID int64  `json:"employee_id"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// APIHandler serves reviews as JSON.
func APIHandler(repo ReviewRepository) func(chi.Router) {
	api := api{repo: repo}

	return func(r chi.Router) {
		r.Get("/", api.Index)
		r.Post("/", api.Create)
		r.Get("/{id}", api.Show)
		r.Delete("/{id}", api.Delete)
	}
}

type api struct {
	repo ReviewRepository
}

func (a api) Index(w http.ResponseWriter, r *http.Request) {
	reviews, err := a.repo.All(r.Context())
	if err != nil {
		slog.Error("failed to fetch all reviews", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "failed to fetch reviews"})
		return
	}

	ret := make([]reviewJSON, 0, len(reviews))
	for _, review := range reviews {
		ret = append(ret, toJSON(review))
	}

	writeJSON(w, http.StatusOK, ret)
}

// Create takes the values as sent, so a year sent as "2022" is rejected rather than converted.
func (a api) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid json: " + err.Error()})
		return
	}

	review, err := a.repo.CreateFromValues(r.Context(), body["year"], body["summary"], body["employee_id"])
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to create review", "error", err)
		}
		writeJSON(w, status, errorJSON{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, toJSON(review))
}

func (a api) Show(w http.ResponseWriter, r *http.Request) {
	review, ok := a.find(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toJSON(review))
}

func (a api) Delete(w http.ResponseWriter, r *http.Request) {
	review, ok := a.find(w, r)
	if !ok {
		return
	}

	if err := a.repo.Delete(r.Context(), review); err != nil {
		slog.Error("failed to delete review", "id", review.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "failed to delete review"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a api) find(w http.ResponseWriter, r *http.Request) (*reviewing.Review, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid id"})
		return nil, false
	}

	review, err := a.repo.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("error finding review", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "failed to find review"})
		return nil, false
	}
	if review == nil {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "review not found"})
		return nil, false
	}

	return review, true
}

func toJSON(r *reviewing.Review) reviewJSON {
	return reviewJSON{
		ID:         r.ID,
		Year:       r.Year,
		Summary:    r.Summary,
		EmployeeID: r.EmployeeID(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write json response", "error", err)
	}
}
