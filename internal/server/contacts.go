package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
)

const maxBodyBytes = 1 << 20

// ContactRepository is the persistence the handler serves from.
type ContactRepository interface {
	services.ContactStore
	Page(ctx context.Context, limit, offset int) (models.ContactList, int, error)
}

// ContactHandler serves the contacts resource.
//
// PageSize, when positive, paginates list responses that do not ask for a limit.
type ContactHandler struct {
	repo     ContactRepository
	logger   *log.Logger
	PageSize int
}

// NewContactHandler creates a handler over repo.
func NewContactHandler(repo ContactRepository, logger *log.Logger) *ContactHandler {
	return &ContactHandler{repo: repo, logger: logger}
}

const (
	routeList    = "GET /contacts/{$}"
	routeCreate  = "POST /contacts/{$}"
	routeGet     = "GET /contacts/{id}/{$}"
	routeUpdate  = "PUT /contacts/{id}/{$}"
	routeDelete  = "DELETE /contacts/{id}/{$}"
	routeReorder = "POST /contacts/reorder/{$}"
	routeSearch  = "GET /contacts/search_contact/{$}"
)

// Routes returns the HTTP routes this handler serves.
func (h *ContactHandler) Routes() []string {
	return []string{routeList, routeCreate, routeGet, routeUpdate, routeDelete, routeReorder, routeSearch}
}

// ServeHTTP dispatches on the matched pattern.
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeList:
		h.list(w, r)
	case routeCreate:
		h.create(w, r)
	case routeGet:
		h.get(w, r)
	case routeUpdate:
		h.update(w, r)
	case routeDelete:
		h.delete(w, r)
	case routeReorder:
		h.reorder(w, r)
	case routeSearch:
		h.search(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found.")
	}
}

// listResponse mirrors a paginated collection: count is the total, next/previous are absolute URLs or null.
type listResponse struct {
	Count    int                `json:"count"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  models.ContactList `json:"results"`
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", h.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(q, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if limit <= 0 {
		contacts, err := h.repo.List(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Count: len(contacts), Results: contacts})
		return
	}

	contacts, total, err := h.repo.Page(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := listResponse{Count: total, Results: contacts}
	if offset+limit < total {
		resp.Next = pageURL(r, limit, offset+limit)
	}
	if offset > 0 {
		resp.Previous = pageURL(r, limit, max(offset-limit, 0))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	var nc models.NewContact
	if !decodeBody(w, r, &nc) {
		return
	}

	c, err := h.repo.Create(r.Context(), nc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContactHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.Get(r.Context(), models.ContactID(r.PathValue("id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) update(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = models.ContactID(r.PathValue("id"))

	stored, err := h.repo.Update(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), models.ContactID(r.PathValue("id"))); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) reorder(w http.ResponseWriter, r *http.Request) {
	var order []models.OrderEntry
	if !decodeBody(w, r, &order) {
		return
	}

	if err := h.repo.Reorder(r.Context(), order); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) search(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.repo.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// fail maps a repository error to a status code.
func (h *ContactHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, shared.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("contact store failure", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return false
	}
	return true
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func pageURL(r *http.Request, limit, offset int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	u := (&url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}).String()
	return &u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// NewContactRouter wires the contact handler behind request logging and panic recovery.
func NewContactRouter(repo ContactRepository, logger *log.Logger, pageSize int) *BasicRouter {
	handler := NewContactHandler(repo, logger)
	handler.PageSize = pageSize

	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recoverer(logger))
	router.Handler(handler)
	return router
}
