// Package mongo implements event catalog persistence over a MongoDB
// collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devsphere/devsphere/internal/services/events/event"
	"github.com/devsphere/devsphere/internal/services/events/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// eventCollection is the collection holding event documents.
const eventCollection = "events"

// Store implements storage.EventStore over a MongoDB database.
type Store struct {
	events *mongo.Collection
}

// NewStore binds the store to its collection and ensures the unique slug
// index that arbitrates concurrent creations.
func NewStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	events := db.Collection(eventCollection)

	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create event indexes: %w", err)
	}

	return &Store{events: events}, nil
}

func (s *Store) Create(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.events == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(e.Slug) == "" {
		return fmt.Errorf("event slug is required")
	}

	if _, err := s.events.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicateSlug
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *Store) GetByID(ctx context.Context, eventID string) (event.Event, error) {
	return s.findOne(ctx, bson.M{"_id": eventID})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.events == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}

	var record event.Event
	if err := s.events.FindOne(ctx, filter).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("find event: %w", err)
	}
	return record, nil
}

func (s *Store) List(ctx context.Context) ([]event.Event, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListSimilar matches events sharing at least one tag, excluding the event
// itself, soonest date first. Dates are stored in a lexically sortable
// format, so the string sort is chronological.
func (s *Store) ListSimilar(ctx context.Context, excludeID string, tags []string, limit int) ([]event.Event, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return s.find(ctx,
		bson.M{
			"_id":  bson.M{"$ne": excludeID},
			"tags": bson.M{"$in": tags},
		},
		options.Find().
			SetSort(bson.D{{Key: "date", Value: 1}}).
			SetLimit(int64(limit)),
	)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	cursor, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cursor.Close(ctx)

	var records []event.Event
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return records, nil
}

func (s *Store) Update(ctx context.Context, eventID string, u storage.Update, now time.Time) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.events == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(eventID) == "" {
		return event.Event{}, fmt.Errorf("event id is required")
	}

	set := bson.M{"updatedAt": now.UTC()}
	setString := func(field string, value *string) {
		if value != nil {
			set[field] = *value
		}
	}
	setString("title", u.Title)
	setString("slug", u.Slug)
	setString("description", u.Description)
	setString("overview", u.Overview)
	setString("image", u.Image)
	setString("venue", u.Venue)
	setString("location", u.Location)
	setString("date", u.Date)
	setString("time", u.Time)
	setString("audience", u.Audience)
	setString("organizer", u.Organizer)
	if u.Mode != nil {
		set["mode"] = *u.Mode
	}
	if u.Agenda != nil {
		set["agenda"] = u.Agenda
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}

	var updated event.Event
	err := s.events.FindOneAndUpdate(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, storage.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return event.Event{}, storage.ErrDuplicateSlug
		}
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.events == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("event id is required")
	}

	result, err := s.events.DeleteOne(ctx, bson.M{"_id": eventID})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
