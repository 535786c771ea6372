// Package event provides the event catalog model and its validation rules.
package event

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/platform/id"
)

// Mode is the attendance mode of an event.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// dateLayout is the canonical event date format. Lexical order on stored
// dates equals chronological order, which the similar-events sort relies on.
const dateLayout = "2006-01-02"

var (
	// ErrInvalidSlug indicates a slug outside the accepted format.
	ErrInvalidSlug = apperrors.New(apperrors.CodeInvalidArgument, "slug must contain only lowercase letters, digits, and hyphens")
	// ErrInvalidMode indicates an unrecognized attendance mode.
	ErrInvalidMode = apperrors.New(apperrors.CodeInvalidArgument, "mode must be online, offline, or hybrid")
	// ErrInvalidDate indicates a date outside the canonical format.
	ErrInvalidDate = apperrors.New(apperrors.CodeInvalidArgument, "date must use the YYYY-MM-DD format")

	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	// slugStrip removes everything a slug cannot carry; runs of stripped
	// characters collapse to a single hyphen.
	slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

	// modeAliases maps the labels event forms submit onto stored modes.
	modeAliases = map[string]Mode{
		"online":                     ModeOnline,
		"offline":                    ModeOffline,
		"in-person":                  ModeOffline,
		"hybrid":                     ModeHybrid,
		"hybrid (in-person & online)": ModeHybrid,
	}
)

// Event is a published listing in the catalog.
type Event struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Slug        string    `bson:"slug" json:"slug"`
	Description string    `bson:"description" json:"description"`
	Overview    string    `bson:"overview" json:"overview"`
	Image       string    `bson:"image" json:"image"`
	Venue       string    `bson:"venue" json:"venue"`
	Location    string    `bson:"location" json:"location"`
	Date        string    `bson:"date" json:"date"`
	Time        string    `bson:"time" json:"time"`
	Mode        Mode      `bson:"mode" json:"mode"`
	Audience    string    `bson:"audience" json:"audience"`
	Agenda      []string  `bson:"agenda" json:"agenda"`
	Organizer   string    `bson:"organizer" json:"organizer"`
	Tags        []string  `bson:"tags" json:"tags"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateEventInput carries the listing fields for a new event. The image
// URL is attached by the service after the asset upload succeeds.
type CreateEventInput struct {
	Title       string
	Slug        string
	Description string
	Overview    string
	Venue       string
	Location    string
	Date        string
	Time        string
	Mode        string
	Audience    string
	Agenda      []string
	Organizer   string
	Tags        []string
}

// Slugify derives a URL slug from free text.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateSlug enforces the accepted slug format.
func ValidateSlug(s string) error {
	if s == "" || !slugPattern.MatchString(s) {
		return ErrInvalidSlug
	}
	return nil
}

// NormalizeMode maps a submitted mode label onto a stored mode.
func NormalizeMode(s string) (Mode, error) {
	mode, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidMode
	}
	return mode, nil
}

// New builds a durable event from validated input. An absent slug is
// derived from the title.
func New(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := Normalize(input)
	if err != nil {
		return Event{}, err
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	mode, err := NormalizeMode(normalized.Mode)
	if err != nil {
		return Event{}, err
	}

	createdAt := now().UTC()
	return Event{
		ID:          eventID,
		Title:       normalized.Title,
		Slug:        normalized.Slug,
		Description: normalized.Description,
		Overview:    normalized.Overview,
		Venue:       normalized.Venue,
		Location:    normalized.Location,
		Date:        normalized.Date,
		Time:        normalized.Time,
		Mode:        mode,
		Audience:    normalized.Audience,
		Agenda:      normalized.Agenda,
		Organizer:   normalized.Organizer,
		Tags:        normalized.Tags,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// Normalize trims and validates create input. The slug falls back to the
// slugified title when absent.
func Normalize(input CreateEventInput) (CreateEventInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Overview = strings.TrimSpace(input.Overview)
	input.Venue = strings.TrimSpace(input.Venue)
	input.Location = strings.TrimSpace(input.Location)
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	input.Audience = strings.TrimSpace(input.Audience)
	input.Organizer = strings.TrimSpace(input.Organizer)
	input.Agenda = trimAll(input.Agenda)
	input.Tags = trimAll(input.Tags)

	for field, value := range map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"overview":    input.Overview,
		"venue":       input.Venue,
		"location":    input.Location,
		"date":        input.Date,
		"time":        input.Time,
		"mode":        input.Mode,
		"audience":    input.Audience,
		"organizer":   input.Organizer,
	} {
		if value == "" {
			return CreateEventInput{}, apperrors.New(apperrors.CodeInvalidArgument, field+" is required")
		}
	}

	if err := ValidateDate(input.Date); err != nil {
		return CreateEventInput{}, err
	}

	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	if input.Slug == "" {
		input.Slug = Slugify(input.Title)
	}
	if err := ValidateSlug(input.Slug); err != nil {
		return CreateEventInput{}, err
	}
	return input, nil
}

// ValidateDate enforces the canonical date format.
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
