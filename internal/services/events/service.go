// Package events orchestrates the event catalog: listings, image assets,
// and the similar-events lookup.
package events

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/platform/id"
	"github.com/devsphere/devsphere/internal/services/events/event"
	"github.com/devsphere/devsphere/internal/services/events/storage"
	"github.com/devsphere/devsphere/internal/services/media"
)

// similarLimit caps the similar-events lookup.
const similarLimit = 3

// ErrImageRequired indicates a create without an image file.
var ErrImageRequired = apperrors.New(apperrors.CodeInvalidArgument, "image file is required")

// UpdateEventInput carries a partial event mutation. Nil pointers and nil
// slices leave fields untouched.
type UpdateEventInput struct {
	Title       *string
	Slug        *string
	Description *string
	Overview    *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *string
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

// Service orchestrates catalog operations over the store and the asset
// host. Asset removal is advisory: a failed destroy logs and the catalog
// mutation proceeds.
type Service struct {
	store       storage.EventStore
	uploader    media.Uploader
	now         func() time.Time
	idGenerator func() (string, error)
	log         *log.Logger
}

// NewService wires the catalog's collaborators. A nil clock falls back to
// time.Now, a nil id generator to the platform default, and a nil logger to
// the standard logger.
func NewService(store storage.EventStore, uploader media.Uploader, now func() time.Time, idGenerator func() (string, error), logger *log.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:       store,
		uploader:    uploader,
		now:         now,
		idGenerator: idGenerator,
		log:         logger,
	}
}

// Create validates a listing, uploads its image, and stores the event.
//
// When the insert loses the slug race the uploaded asset is destroyed so
// the asset host does not accumulate orphans.
func (s *Service) Create(ctx context.Context, input event.CreateEventInput, image io.Reader) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if image == nil {
		return event.Event{}, ErrImageRequired
	}

	e, err := event.New(input, s.now, s.idGenerator)
	if err != nil {
		return event.Event{}, err
	}

	url, err := s.uploader.Upload(ctx, image)
	if err != nil {
		return event.Event{}, err
	}
	e.Image = url

	if err := s.store.Create(ctx, e); err != nil {
		s.destroyAsset(ctx, url)
		return event.Event{}, err
	}
	return e, nil
}

// List returns all events, newest first.
func (s *Service) List(ctx context.Context) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// GetBySlug fetches one event after validating the slug format.
func (s *Service) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := event.ValidateSlug(slug); err != nil {
		return event.Event{}, err
	}
	return s.store.GetBySlug(ctx, slug)
}

// SimilarBySlug returns up to three events sharing a tag with the named
// event, soonest first. An unknown slug yields an empty list rather than an
// error so public listing pages degrade quietly.
func (s *Service) SimilarBySlug(ctx context.Context, slug string) ([]event.Event, error) {
	anchor, err := s.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.store.ListSimilar(ctx, anchor.ID, anchor.Tags, similarLimit)
}

// Update applies a partial mutation, replacing the stored image when a new
// one is supplied. The previous asset is destroyed best-effort after a
// successful replacement upload.
func (s *Service) Update(ctx context.Context, eventID string, input UpdateEventInput, image io.Reader) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}

	existing, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, err
	}

	update, err := buildUpdate(input)
	if err != nil {
		return event.Event{}, err
	}

	if image != nil {
		url, uploadErr := s.uploader.Upload(ctx, image)
		if uploadErr != nil {
			return event.Event{}, uploadErr
		}
		update.Image = &url
		s.destroyAsset(ctx, existing.Image)
	}

	updated, err := s.store.Update(ctx, existing.ID, update, s.now().UTC())
	if err != nil {
		return event.Event{}, err
	}
	return updated, nil
}

// Delete removes an event and destroys its image asset best-effort.
func (s *Service) Delete(ctx context.Context, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	s.destroyAsset(ctx, existing.Image)
	return s.store.Delete(ctx, existing.ID)
}

func (s *Service) destroyAsset(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.uploader.Destroy(ctx, url); err != nil {
		s.log.Printf("destroy event image failed: url=%s: %v", url, err)
	}
}

// buildUpdate validates the set fields of a partial mutation and converts
// them to the storage shape.
func buildUpdate(input UpdateEventInput) (storage.Update, error) {
	update := storage.Update{
		Description: trimmed(input.Description),
		Overview:    trimmed(input.Overview),
		Venue:       trimmed(input.Venue),
		Location:    trimmed(input.Location),
		Time:        trimmed(input.Time),
		Audience:    trimmed(input.Audience),
		Organizer:   trimmed(input.Organizer),
		Agenda:      input.Agenda,
		Tags:        input.Tags,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return storage.Update{}, apperrors.New(apperrors.CodeInvalidArgument, "title is required")
		}
		update.Title = &title
	}
	if input.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*input.Slug))
		if err := event.ValidateSlug(slug); err != nil {
			return storage.Update{}, err
		}
		update.Slug = &slug
	}
	if input.Date != nil {
		date := strings.TrimSpace(*input.Date)
		if err := event.ValidateDate(date); err != nil {
			return storage.Update{}, err
		}
		update.Date = &date
	}
	if input.Mode != nil {
		mode, err := event.NormalizeMode(*input.Mode)
		if err != nil {
			return storage.Update{}, err
		}
		update.Mode = &mode
	}
	return update, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
