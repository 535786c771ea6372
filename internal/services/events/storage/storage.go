// Package storage defines persistence interfaces for the event catalog.
package storage

import (
	"context"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/services/events/event"
)

var (
	// ErrNotFound indicates a requested event is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "event not found")
	// ErrDuplicateSlug indicates the slug's unique index already holds an
	// event.
	ErrDuplicateSlug = apperrors.New(apperrors.CodeSlugConflict, "event with this slug already exists")
)

// Update carries a partial event mutation. Nil pointers and nil slices
// leave the stored field untouched; pointing at a value replaces it.
type Update struct {
	Title       *string
	Slug        *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *event.Mode
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

// Empty reports whether the update touches no fields.
func (u Update) Empty() bool {
	return u.Title == nil && u.Slug == nil && u.Description == nil &&
		u.Overview == nil && u.Image == nil && u.Venue == nil &&
		u.Location == nil && u.Date == nil && u.Time == nil &&
		u.Mode == nil && u.Agenda == nil && u.Audience == nil &&
		u.Organizer == nil && u.Tags == nil
}

// EventStore persists catalog events.
type EventStore interface {
	// Create inserts a new event. The slug unique index arbitrates
	// concurrent creations; losers receive ErrDuplicateSlug.
	Create(ctx context.Context, e event.Event) error
	// GetBySlug fetches an event by its URL slug.
	GetBySlug(ctx context.Context, slug string) (event.Event, error)
	// GetByID fetches an event by id.
	GetByID(ctx context.Context, eventID string) (event.Event, error)
	// List returns all events, newest first.
	List(ctx context.Context) ([]event.Event, error)
	// Update applies a partial mutation and returns the updated event.
	Update(ctx context.Context, eventID string, u Update, now time.Time) (event.Event, error)
	// Delete removes an event.
	Delete(ctx context.Context, eventID string) error
	// ListSimilar returns up to limit events sharing at least one of the
	// given tags, excluding excludeID, soonest date first.
	ListSimilar(ctx context.Context, excludeID string, tags []string, limit int) ([]event.Event, error)
}
