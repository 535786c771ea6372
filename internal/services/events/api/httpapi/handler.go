// Package httpapi exposes the event catalog over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/services/auth/session"
	"github.com/devsphere/devsphere/internal/services/events"
	"github.com/devsphere/devsphere/internal/services/events/event"
)

// maxUploadBytes bounds multipart event submissions, image included.
const maxUploadBytes = 32 << 20

const (
	eventsPath   = "/api/events"
	eventsPrefix = "/api/events/"
)

// Service is the catalog surface the handler depends on.
type Service interface {
	Create(ctx context.Context, input event.CreateEventInput, image io.Reader) (event.Event, error)
	List(ctx context.Context) ([]event.Event, error)
	GetBySlug(ctx context.Context, slug string) (event.Event, error)
	SimilarBySlug(ctx context.Context, slug string) ([]event.Event, error)
	Update(ctx context.Context, eventID string, input events.UpdateEventInput, image io.Reader) (event.Event, error)
	Delete(ctx context.Context, eventID string) error
}

// SessionVerifier checks admin session tokens for the mutating routes.
type SessionVerifier interface {
	Verify(token string) (session.Claims, error)
}

// Handler serves the event catalog routes. Reads are public; mutations
// require a valid admin session cookie.
type Handler struct {
	service  Service
	sessions SessionVerifier
	log      *log.Logger
}

// NewHandler builds the events HTTP handler.
func NewHandler(service Service, sessions SessionVerifier, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, sessions: sessions, log: logger}
}

// RegisterRoutes wires event routes into the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc(eventsPath, h.HandleEvents)
	mux.HandleFunc(eventsPrefix, h.HandleEventPath)
}

// HandleEvents serves the collection routes: list and create.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		h.handleCreate(w, r)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleEventPath serves the item routes: get by slug, similar by slug,
// and update or delete by id.
func (h *Handler) HandleEventPath(w http.ResponseWriter, r *http.Request) {
	parts := splitPathParts(strings.TrimPrefix(r.URL.Path, eventsPrefix))

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetBySlug(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "similar" && r.Method == http.MethodGet:
		h.handleSimilar(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		h.handleUpdate(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		h.handleDelete(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

// requireAdmin gates mutating routes on a valid session cookie.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	token, ok := session.ReadCookie(r)
	if !ok || h.sessions == nil {
		respond(w, http.StatusUnauthorized, messageResponse{Message: "Not authenticated"})
		return false
	}
	if _, err := h.sessions.Verify(token); err != nil {
		respond(w, http.StatusUnauthorized, messageResponse{Message: "Invalid or expired token"})
		return false
	}
	return true
}

type messageResponse struct {
	Message string `json:"message"`
}

type eventResponse struct {
	Message string      `json:"message"`
	Event   event.Event `json:"event"`
}

type eventsResponse struct {
	Message string        `json:"message"`
	Events  []event.Event `json:"events"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	listed, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err, "Event fetching failed")
		return
	}
	if listed == nil {
		listed = []event.Event{}
	}
	respond(w, http.StatusOK, eventsResponse{Message: "Events fetched successfully", Events: listed})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, image, err := parseEventForm(r)
	if err != nil {
		respond(w, http.StatusBadRequest, messageResponse{Message: "Invalid form data"})
		return
	}
	if image == nil {
		respond(w, http.StatusBadRequest, messageResponse{Message: "Image file is required"})
		return
	}
	defer image.Close()

	created, err := h.service.Create(r.Context(), event.CreateEventInput{
		Title:       form.value("title"),
		Slug:        form.value("slug"),
		Description: form.value("description"),
		Overview:    form.value("overview"),
		Venue:       form.value("venue"),
		Location:    form.value("location"),
		Date:        form.value("date"),
		Time:        form.value("time"),
		Mode:        form.value("mode"),
		Audience:    form.value("audience"),
		Agenda:      form.list("agenda"),
		Organizer:   form.value("organizer"),
		Tags:        form.list("tags"),
	}, image)
	if err != nil {
		h.fail(w, err, "Event creation failed")
		return
	}
	respond(w, http.StatusCreated, eventResponse{Message: "Event created successfully", Event: created})
}

func (h *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	found, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			respond(w, http.StatusNotFound, messageResponse{Message: "Event with slug \"" + slug + "\" not found"})
			return
		}
		h.fail(w, err, "Failed to fetch event")
		return
	}
	respond(w, http.StatusOK, eventResponse{Message: "Event fetched successfully", Event: found})
}

func (h *Handler) handleSimilar(w http.ResponseWriter, r *http.Request, slug string) {
	similar, err := h.service.SimilarBySlug(r.Context(), slug)
	if err != nil {
		h.fail(w, err, "Event fetching failed")
		return
	}
	if similar == nil {
		similar = []event.Event{}
	}
	respond(w, http.StatusOK, eventsResponse{Message: "Events fetched successfully", Events: similar})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, eventID string) {
	form, image, err := parseEventForm(r)
	if err != nil {
		respond(w, http.StatusBadRequest, messageResponse{Message: "Invalid form data"})
		return
	}
	if image != nil {
		defer image.Close()
	}

	input := events.UpdateEventInput{
		Title:       form.optional("title"),
		Slug:        form.optional("slug"),
		Description: form.optional("description"),
		Overview:    form.optional("overview"),
		Venue:       form.optional("venue"),
		Location:    form.optional("location"),
		Date:        form.optional("date"),
		Time:        form.optional("time"),
		Mode:        form.optional("mode"),
		Audience:    form.optional("audience"),
		Organizer:   form.optional("organizer"),
	}
	if form.has("agenda") {
		input.Agenda = form.list("agenda")
	}
	if form.has("tags") {
		input.Tags = form.list("tags")
	}

	var reader io.Reader
	if image != nil {
		reader = image
	}
	updated, err := h.service.Update(r.Context(), eventID, input, reader)
	if err != nil {
		h.fail(w, err, "Failed to update event")
		return
	}
	respond(w, http.StatusOK, eventResponse{Message: "Event updated successfully", Event: updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, eventID string) {
	if err := h.service.Delete(r.Context(), eventID); err != nil {
		h.fail(w, err, "Failed to delete event")
		return
	}
	respond(w, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

// fail maps coded errors onto their status with the domain message and
// hides everything else behind a generic one.
func (h *Handler) fail(w http.ResponseWriter, err error, generic string) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		h.log.Printf("events api: %v", err)
		respond(w, http.StatusInternalServerError, messageResponse{Message: generic})
		return
	}
	respond(w, code.HTTPStatus(), messageResponse{Message: err.Error()})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode events response: %v", err)
	}
}

// eventForm wraps the parsed multipart values.
type eventForm struct {
	values map[string][]string
}

func (f eventForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f eventForm) value(key string) string {
	if vals := f.values[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (f eventForm) optional(key string) *string {
	if !f.has(key) {
		return nil
	}
	v := f.value(key)
	return &v
}

// list decodes an array field submitted either as a JSON array or as a
// comma-separated string.
func (f eventForm) list(key string) []string {
	raw := strings.TrimSpace(f.value(key))
	if raw == "" {
		return []string{}
	}
	var decoded []string
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return decoded
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitPathParts(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// parseEventForm reads a multipart submission; the returned image is nil
// when no file was attached.
func parseEventForm(r *http.Request) (eventForm, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return eventForm{}, nil, err
	}

	form := eventForm{values: r.MultipartForm.Value}
	file, _, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return form, nil, nil
		}
		return eventForm{}, nil, err
	}
	return form, file, nil
}
