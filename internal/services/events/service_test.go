package events

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devsphere/devsphere/internal/services/events/event"
	"github.com/devsphere/devsphere/internal/services/events/storage"
)

type fakeStore struct {
	mu     sync.Mutex
	events map[string]event.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]event.Event)}
}

func (s *fakeStore) Create(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.Slug == e.Slug {
			return storage.ErrDuplicateSlug
		}
	}
	s.events[e.ID] = e
	return nil
}

func (s *fakeStore) GetBySlug(_ context.Context, slug string) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return event.Event{}, storage.ErrNotFound
}

func (s *fakeStore) GetByID(_ context.Context, eventID string) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *fakeStore) List(_ context.Context) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, eventID string, u storage.Update, now time.Time) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&e.Title, u.Title)
	apply(&e.Description, u.Description)
	apply(&e.Overview, u.Overview)
	apply(&e.Image, u.Image)
	apply(&e.Venue, u.Venue)
	apply(&e.Location, u.Location)
	apply(&e.Date, u.Date)
	apply(&e.Time, u.Time)
	apply(&e.Audience, u.Audience)
	apply(&e.Organizer, u.Organizer)
	if u.Slug != nil {
		for id, other := range s.events {
			if id != eventID && other.Slug == *u.Slug {
				return event.Event{}, storage.ErrDuplicateSlug
			}
		}
		e.Slug = *u.Slug
	}
	if u.Mode != nil {
		e.Mode = *u.Mode
	}
	if u.Agenda != nil {
		e.Agenda = u.Agenda
	}
	if u.Tags != nil {
		e.Tags = u.Tags
	}
	e.UpdatedAt = now
	s.events[eventID] = e
	return e, nil
}

func (s *fakeStore) Delete(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.events, eventID)
	return nil
}

func (s *fakeStore) ListSimilar(_ context.Context, excludeID string, tags []string, limit int) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}
	var out []event.Event
	for _, e := range s.events {
		if e.ID == excludeID {
			continue
		}
		for _, tag := range e.Tags {
			if tagSet[tag] {
				out = append(out, e)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUploader struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	failWith  error
}

func (u *fakeUploader) Upload(_ context.Context, _ io.Reader) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failWith != nil {
		return "", u.failWith
	}
	u.uploads++
	return fmt.Sprintf("https://cdn.example.com/dev-events/img-%d.png", u.uploads), nil
}

func (u *fakeUploader) Destroy(_ context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, url)
	return nil
}

func newTestService(store *fakeStore, uploader *fakeUploader) *Service {
	seq := 0
	idGen := func() (string, error) {
		seq++
		return fmt.Sprintf("event-%d", seq), nil
	}
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return NewService(store, uploader, clock, idGen, log.New(io.Discard, "", 0))
}

func validInput(title string) event.CreateEventInput {
	return event.CreateEventInput{
		Title:       title,
		Description: "A community conference.",
		Overview:    "Talks and workshops.",
		Venue:       "City Hall",
		Location:    "Lisbon",
		Date:        "2025-09-12",
		Time:        "09:00",
		Mode:        "online",
		Audience:    "Developers",
		Organizer:   "Go Lisbon",
		Tags:        []string{"go"},
	}
}

func image() io.Reader {
	return strings.NewReader("png-bytes")
}

func TestCreate(t *testing.T) {
	t.Run("uploads the image and stores the listing", func(t *testing.T) {
		store := newFakeStore()
		uploader := &fakeUploader{}
		svc := newTestService(store, uploader)

		e, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if e.Image == "" {
			t.Error("created event must carry the uploaded image URL")
		}
		if e.Slug != "go-west" {
			t.Errorf("slug = %q, want derived slug", e.Slug)
		}
		if _, err := store.GetBySlug(context.Background(), "go-west"); err != nil {
			t.Errorf("event not stored: %v", err)
		}
	})

	t.Run("requires an image", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeUploader{})
		if _, err := svc.Create(context.Background(), validInput("Go West"), nil); err == nil {
			t.Fatal("expected error for missing image")
		}
	})

	t.Run("destroys the uploaded asset when the slug is taken", func(t *testing.T) {
		store := newFakeStore()
		uploader := &fakeUploader{}
		svc := newTestService(store, uploader)

		if _, err := svc.Create(context.Background(), validInput("Go West"), image()); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err == nil {
			t.Fatal("expected duplicate slug error")
		}
		if len(uploader.destroyed) != 1 {
			t.Errorf("destroyed = %v, want the orphaned asset removed", uploader.destroyed)
		}
	})
}

func TestGetBySlug(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{})
	if _, err := svc.Create(context.Background(), validInput("Go West"), image()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("normalizes casing", func(t *testing.T) {
		e, err := svc.GetBySlug(context.Background(), " GO-WEST ")
		if err != nil {
			t.Fatalf("GetBySlug: %v", err)
		}
		if e.Title != "Go West" {
			t.Errorf("title = %q", e.Title)
		}
	})

	t.Run("rejects a malformed slug", func(t *testing.T) {
		if _, err := svc.GetBySlug(context.Background(), "not a slug"); err == nil {
			t.Fatal("expected slug format error")
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		if _, err := svc.GetBySlug(context.Background(), "missing"); err == nil {
			t.Fatal("expected not-found error")
		}
	})
}

func TestSimilarBySlug(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{})

	create := func(title, date string, tags ...string) event.Event {
		t.Helper()
		input := validInput(title)
		input.Date = date
		input.Tags = tags
		e, err := svc.Create(context.Background(), input, image())
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		return e
	}

	create("Anchor", "2025-09-01", "go", "web")
	create("Later Go", "2025-12-01", "go")
	create("Sooner Web", "2025-10-01", "web")
	create("Unrelated", "2025-09-15", "rust")

	t.Run("shares a tag, excludes self, soonest first", func(t *testing.T) {
		similar, err := svc.SimilarBySlug(context.Background(), "anchor")
		if err != nil {
			t.Fatalf("SimilarBySlug: %v", err)
		}
		if len(similar) != 2 {
			t.Fatalf("got %d events, want 2", len(similar))
		}
		if similar[0].Title != "Sooner Web" || similar[1].Title != "Later Go" {
			t.Errorf("order = [%s, %s], want soonest date first", similar[0].Title, similar[1].Title)
		}
	})

	t.Run("unknown slug yields an empty list", func(t *testing.T) {
		similar, err := svc.SimilarBySlug(context.Background(), "missing")
		if err != nil {
			t.Fatalf("SimilarBySlug: %v", err)
		}
		if len(similar) != 0 {
			t.Errorf("got %d events, want none", len(similar))
		}
	})

	t.Run("caps at three results", func(t *testing.T) {
		create("Go One", "2025-09-02", "go")
		create("Go Two", "2025-09-03", "go")
		create("Go Three", "2025-09-04", "go")

		similar, err := svc.SimilarBySlug(context.Background(), "anchor")
		if err != nil {
			t.Fatalf("SimilarBySlug: %v", err)
		}
		if len(similar) != 3 {
			t.Errorf("got %d events, want the cap of 3", len(similar))
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies partial fields", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeUploader{})
		created, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		title := "Go West 2026"
		mode := "in-person"
		updated, err := svc.Update(context.Background(), created.ID, UpdateEventInput{Title: &title, Mode: &mode}, nil)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Title != title || updated.Mode != event.ModeOffline {
			t.Errorf("updated = %+v, want new title and normalized mode", updated)
		}
		if updated.Venue != created.Venue {
			t.Error("untouched fields must survive a partial update")
		}
	})

	t.Run("replaces the image and destroys the old asset", func(t *testing.T) {
		store := newFakeStore()
		uploader := &fakeUploader{}
		svc := newTestService(store, uploader)
		created, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		updated, err := svc.Update(context.Background(), created.ID, UpdateEventInput{}, image())
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Image == created.Image {
			t.Error("image must change after a replacement upload")
		}
		if len(uploader.destroyed) != 1 || uploader.destroyed[0] != created.Image {
			t.Errorf("destroyed = %v, want the previous asset", uploader.destroyed)
		}
	})

	t.Run("rejects an invalid mode", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeUploader{})
		created, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		bad := "metaverse"
		if _, err := svc.Update(context.Background(), created.ID, UpdateEventInput{Mode: &bad}, nil); err == nil {
			t.Fatal("expected mode validation error")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeUploader{})
		if _, err := svc.Update(context.Background(), "missing", UpdateEventInput{}, nil); err == nil {
			t.Fatal("expected not-found error")
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("removes the document and its asset", func(t *testing.T) {
		store := newFakeStore()
		uploader := &fakeUploader{}
		svc := newTestService(store, uploader)
		created, err := svc.Create(context.Background(), validInput("Go West"), image())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if err := svc.Delete(context.Background(), created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.GetByID(context.Background(), created.ID); err == nil {
			t.Error("event must be removed")
		}
		if len(uploader.destroyed) != 1 || uploader.destroyed[0] != created.Image {
			t.Errorf("destroyed = %v, want the event image", uploader.destroyed)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeUploader{})
		if err := svc.Delete(context.Background(), "missing"); err == nil {
			t.Fatal("expected not-found error")
		}
	})
}
