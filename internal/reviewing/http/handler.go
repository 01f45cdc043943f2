package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/donseba/go-htmx"
	"github.com/donseba/go-partial"
	"github.com/donseba/go-partial/connector"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"

	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

var (
	//go:embed templates/*
	templates embed.FS
)

// ReviewRepository is what the handlers need from reviewing.Repository.
type ReviewRepository interface {
	Create(ctx context.Context, year int, summary string, employeeID int64) (*reviewing.Review, error)
	CreateFromValues(ctx context.Context, year, summary, employeeID any) (*reviewing.Review, error)
	FindByID(ctx context.Context, id int64) (*reviewing.Review, error)
	All(ctx context.Context) ([]*reviewing.Review, error)
	Update(ctx context.Context, review *reviewing.Review) error
	Delete(ctx context.Context, review *reviewing.Review) error
	SetEmployeeID(ctx context.Context, review *reviewing.Review, employeeID int64) error
}

type App struct {
	htmx    *htmx.HTMX
	partial *partial.Service
	decoder *form.Decoder
	repo    ReviewRepository
}

// Handler serves the HTML pages for reviews.
func Handler(repo ReviewRepository) func(chi.Router) {
	app := App{
		htmx: htmx.New(),
		partial: partial.NewService(&partial.Config{
			Connector: connector.NewHTMX(&connector.Config{UseURLQuery: true}),
			UseCache:  true,
		}),
		decoder: form.NewDecoder(),
		repo:    repo,
	}

	return func(r chi.Router) {
		r.Get("/", app.Index)
		r.Post("/", app.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.Show)
			r.Get("/edit", app.Edit)
			r.Post("/edit", app.Update)
			r.Post("/delete", app.Delete)
		})
	}
}

// ReviewBasic is a review as the templates and forms see it.
type ReviewBasic struct {
	ID         int64  `form:"id"`
	Year       int    `form:"year"`
	Summary    string `form:"summary"`
	EmployeeID int64  `form:"employeeId"`
}

func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	a.renderIndex(h, r, map[string]any{})
}

func (a *App) Create(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	if err := r.ParseForm(); err != nil {
		slog.Error("failed to parse form", "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		return
	}

	var rb ReviewBasic
	if err := a.decoder.Decode(&rb, r.Form); err != nil {
		slog.Info("failed to decode review form", "error", err)
		h.WriteHeader(http.StatusBadRequest)
		h.JustWriteString(err.Error())
		return
	}

	review, err := a.repo.Create(r.Context(), rb.Year, rb.Summary, rb.EmployeeID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to create review", "error", err)
		}
		h.WriteHeader(status)
		a.renderIndex(h, r, map[string]any{
			"Notice": map[string]any{"Message": err.Error()},
			"Form":   rb,
		})
		return
	}

	a.renderIndex(h, r, map[string]any{
		"Notice": map[string]any{
			"Message": "Review created",
			"ID":      review.ID,
		},
	})
}

func (a *App) renderIndex(h *htmx.Handler, r *http.Request, data map[string]any) {
	if _, ok := data["Form"]; !ok {
		data["Form"] = ReviewBasic{}
	}
	if _, ok := data["Reviews"]; !ok {
		reviews, err := a.repo.All(r.Context())
		if err != nil {
			// Only log the error and set the empty listing as it's an okay fallback instead of returning an error
			slog.Error("failed to fetch all reviews", "error", err)
		}
		data["Reviews"] = convertToHttpObjects(reviews)
	}

	page := htmx.NewComponent("templates/index.html").
		FS(templates).
		SetData(data).
		With(
			htmx.NewComponent("templates/_new.html").
				FS(templates).
				SetData(data).
				Attach("templates/_review-fields.html"),
			"New",
		).
		Wrap(baseContent(), "Body")

	_, err := h.Render(r.Context(), page)
	if err != nil {
		slog.Error("failed to render page", "page", "reviews/index", "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		_, _ = h.WriteString("failed to render")
	}
}

func (a *App) Show(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	review, ok := a.findReview(h, r)
	if !ok {
		return
	}

	a.renderShow(h, r, review)
}

func (a *App) renderShow(h *htmx.Handler, r *http.Request, review *reviewing.Review) {
	page := htmx.NewComponent("templates/show.html").
		FS(templates).
		SetData(map[string]any{"Review": convertToHttpObject(review)}).
		Attach("templates/_review-fields.html").
		Wrap(baseContent(), "Body")

	_, err := h.Render(r.Context(), page)
	if err != nil {
		slog.Error("failed to render", "page", "reviews/show", "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		_, _ = h.WriteString("failed to render")
	}
}

// Edit renders only the edit form for htmx requests, everyone else gets the
// show page which has the form on it.
func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	review, ok := a.findReview(h, r)
	if !ok {
		return
	}

	if !h.RenderPartial() {
		a.renderShow(h, r, review)
		return
	}

	layout := a.partial.NewLayout().FS(templates)
	layout.Set(partial.
		NewID("edit",
			"templates/_edit.html",
			"templates/_review-fields.html",
		).
		AddData("Review", convertToHttpObject(review)),
	)

	if err := layout.WriteWithRequest(r.Context(), w, r); err != nil {
		slog.Error("failed to render partial", "partial", "reviews/_edit", "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func (a *App) Update(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	review, ok := a.findReview(h, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.Error("failed to parse form", "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		return
	}

	var rb ReviewBasic
	if err := a.decoder.Decode(&rb, r.Form); err != nil {
		slog.Info("failed to decode review form", "error", err)
		h.WriteHeader(http.StatusBadRequest)
		h.JustWriteString(err.Error())
		return
	}

	// Edit a copy so the instance in the identity map only changes once it's stored.
	edited := *review
	if err := a.assignFromHttpObject(r.Context(), rb, &edited); err != nil {
		h.WriteHeader(statusFor(err))
		h.JustWriteString(err.Error())
		return
	}

	if err := a.repo.Update(r.Context(), &edited); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to update review", "id", review.ID, "error", err)
		}
		h.WriteHeader(status)
		h.JustWriteString(err.Error())
		return
	}
	*review = edited

	h.Header().Add("Location", fmt.Sprintf("/reviews/%d", review.ID))
	h.WriteHeader(http.StatusSeeOther)
}

func (a *App) Delete(w http.ResponseWriter, r *http.Request) {
	h := a.htmx.NewHandler(w, r)

	review, ok := a.findReview(h, r)
	if !ok {
		return
	}

	if err := a.repo.Delete(r.Context(), review); err != nil {
		slog.Error("failed to delete review", "id", review.ID, "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		h.JustWriteString(err.Error())
		return
	}

	h.Header().Add("Location", "/reviews")
	h.WriteHeader(http.StatusSeeOther)
}

// findReview looks up the review in the URL and writes the error response when it can't.
func (a *App) findReview(h *htmx.Handler, r *http.Request) (*reviewing.Review, bool) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		slog.Info("failed to parse id", "id", chi.URLParam(r, "id"), "error", err)
		h.WriteHeader(http.StatusBadRequest)
		h.JustWriteString("invalid id")
		return nil, false
	}

	review, err := a.repo.FindByID(r.Context(), reviewID)
	if err != nil {
		slog.Error("error finding review", "id", reviewID, "error", err)
		h.WriteHeader(http.StatusInternalServerError)
		h.JustWriteString("failed to find review")
		return nil, false
	}
	if review == nil {
		h.WriteHeader(http.StatusNotFound)
		h.JustWriteString(fmt.Sprintf("404: review by id '%d' not found.", reviewID))
		return nil, false
	}

	return review, true
}

func baseContent() htmx.RenderableComponent {
	return htmx.NewComponent("templates/base.html").FS(templates)
}

// statusFor maps the repository's errors onto a response status.
func statusFor(err error) int {
	var invalid *reviewing.InvalidArgumentError
	var notFound *reviewing.ReferenceNotFoundError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reviewing.ErrNotPersisted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func convertToHttpObject(r *reviewing.Review) ReviewBasic {
	return ReviewBasic{
		ID:         r.ID,
		Year:       r.Year,
		Summary:    r.Summary,
		EmployeeID: r.EmployeeID(),
	}
}

func convertToHttpObjects(rs []*reviewing.Review) []ReviewBasic {
	ret := make([]ReviewBasic, 0, len(rs))
	for _, r := range rs {
		ret = append(ret, convertToHttpObject(r))
	}

	return ret
}

// assignFromHttpObject takes the editable values from rb and assigns them to r.
// Changing the employee goes through the repository so it's checked.
func (a *App) assignFromHttpObject(ctx context.Context, rb ReviewBasic, r *reviewing.Review) error {
	r.Year = rb.Year
	r.Summary = rb.Summary

	if rb.EmployeeID != r.EmployeeID() {
		return a.repo.SetEmployeeID(ctx, r, rb.EmployeeID)
	}

	return nil
}
