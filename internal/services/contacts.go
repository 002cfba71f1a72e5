// HTTP [ContactStore] implementation
//
// Talks to a REST resource rooted at <baseURL>/contacts/.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	maxListPages   = 1000
	requestIDKey   = "X-Request-ID"
)

// HTTPContactStore implements [ContactStore] over HTTP with JSON bodies.
type HTTPContactStore struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// StoreOpts configures an [HTTPContactStore].
type StoreOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
	Logger            *log.Logger
}

// NewHTTPContactStore creates a store client from opts, filling in defaults.
func NewHTTPContactStore(opts StoreOpts) *HTTPContactStore {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &HTTPContactStore{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// request describes one call against the store.
type request struct {
	method string
	path   string // relative to baseURL, or an absolute URL
	body   any
	result any
	// entity marks requests addressing a single contact, where 404 means [shared.ErrNotFound].
	entity bool
}

func (s *HTTPContactStore) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return s.baseURL + path
}

func (s *HTTPContactStore) do(ctx context.Context, r request) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s %s: %v", shared.ErrRemoteUnavailable, r.method, r.path, err)
		}
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, s.resolve(r.path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDKey, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("store request failed", "method", r.method, "path", r.path, "request_id", requestID, "err", err)
		return fmt.Errorf("%w: %s %s: %v", shared.ErrRemoteUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("store request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sentinel := shared.ErrRemoteUnavailable
		if r.entity && resp.StatusCode == http.StatusNotFound {
			sentinel = shared.ErrNotFound
		}

		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: %s %s: status %d: %s", sentinel, r.method, r.path, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: %s %s: status %d", sentinel, r.method, r.path, resp.StatusCode)
	}

	if r.result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.result); err != nil {
		return fmt.Errorf("%w: %s %s: malformed response: %v", shared.ErrRemoteUnavailable, r.method, r.path, err)
	}
	return nil
}

// page is a list response, either a bare array or a paginated envelope.
type page struct {
	Results models.ContactList
	Next    string
}

func (p *page) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.Results)
	}

	var envelope struct {
		Results models.ContactList `json:"results"`
		Next    *string            `json:"next"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	p.Results = envelope.Results
	if envelope.Next != nil {
		p.Next = *envelope.Next
	}
	return nil
}

func (s *HTTPContactStore) collect(ctx context.Context, path string) (models.ContactList, error) {
	contacts := models.ContactList{}
	seen := make(map[string]bool)

	for range maxListPages {
		var p page
		if err := s.do(ctx, request{method: http.MethodGet, path: path, result: &p}); err != nil {
			return nil, err
		}
		contacts = append(contacts, p.Results...)

		if p.Next == "" || seen[p.Next] {
			return contacts, nil
		}
		seen[p.Next] = true
		path = p.Next
	}

	return nil, fmt.Errorf("%w: list exceeded %d pages", shared.ErrRemoteUnavailable, maxListPages)
}

func entityPath(id models.ContactID) string {
	return "/contacts/" + url.PathEscape(id.String()) + "/"
}

// List returns every contact, following pagination links when the store sends them.
//
// Calls GET /contacts/.
func (s *HTTPContactStore) List(ctx context.Context) (models.ContactList, error) {
	return s.collect(ctx, "/contacts/")
}

// Get calls GET /contacts/{id}/.
func (s *HTTPContactStore) Get(ctx context.Context, id models.ContactID) (*models.Contact, error) {
	var c models.Contact
	if err := s.do(ctx, request{method: http.MethodGet, path: entityPath(id), result: &c, entity: true}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create calls POST /contacts/.
func (s *HTTPContactStore) Create(ctx context.Context, contact models.NewContact) (*models.Contact, error) {
	var c models.Contact
	if err := s.do(ctx, request{method: http.MethodPost, path: "/contacts/", body: contact, result: &c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update calls PUT /contacts/{id}/ with the full record.
func (s *HTTPContactStore) Update(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	if contact.ID == "" {
		return nil, fmt.Errorf("%w: contact has no id", shared.ErrInvalidArgument)
	}

	var c models.Contact
	if err := s.do(ctx, request{method: http.MethodPut, path: entityPath(contact.ID), body: contact, result: &c, entity: true}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete calls DELETE /contacts/{id}/.
func (s *HTTPContactStore) Delete(ctx context.Context, id models.ContactID) error {
	return s.do(ctx, request{method: http.MethodDelete, path: entityPath(id), entity: true})
}

// Reorder calls POST /contacts/reorder/ with [{id, order}, ...].
func (s *HTTPContactStore) Reorder(ctx context.Context, order []models.OrderEntry) error {
	if order == nil {
		order = []models.OrderEntry{}
	}
	return s.do(ctx, request{method: http.MethodPost, path: "/contacts/reorder/", body: order})
}

// Search calls GET /contacts/search_contact/?q={keyword}.
func (s *HTTPContactStore) Search(ctx context.Context, keyword string) (models.ContactList, error) {
	return s.collect(ctx, "/contacts/search_contact/?q="+url.QueryEscape(keyword))
}

// IsUnavailable reports whether err came from an unreachable or failing store.
func IsUnavailable(err error) bool {
	return errors.Is(err, shared.ErrRemoteUnavailable)
}
