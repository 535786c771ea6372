// Package mongo implements admin persistence over a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devsphere/devsphere/internal/services/auth/admin"
	"github.com/devsphere/devsphere/internal/services/auth/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// adminCollection is the collection holding admin identity documents.
const adminCollection = "admins"

// publicProjection excludes credential material from default reads.
var publicProjection = bson.M{"passwordHash": 0, "otp": 0, "otpExpiry": 0}

// Store implements storage.AdminStore over a MongoDB database.
//
// Connection pooling belongs to the driver's client; the store only owns the
// collection handles and index bootstrap.
type Store struct {
	admins *mongo.Collection
}

// NewStore binds the store to its collection and ensures the unique indexes
// that arbitrate concurrent sign-ups.
func NewStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	admins := db.Collection(adminCollection)

	_, err := admins.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create admin indexes: %w", err)
	}

	return &Store{admins: admins}, nil
}

func (s *Store) CreateAdmin(ctx context.Context, a admin.Admin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.admins == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("admin id is required")
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("email is required")
	}

	if _, err := s.admins.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	return s.findOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(publicProjection))
}

func (s *Store) GetAdminByEmailWithSecrets(ctx context.Context, email string) (admin.Admin, error) {
	return s.findOne(ctx, bson.M{"email": email}, options.FindOne())
}

func (s *Store) GetAdminByID(ctx context.Context, adminID string) (admin.Admin, error) {
	return s.findOne(ctx, bson.M{"_id": adminID}, options.FindOne().SetProjection(publicProjection))
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (admin.Admin, error) {
	if err := ctx.Err(); err != nil {
		return admin.Admin{}, err
	}
	if s == nil || s.admins == nil {
		return admin.Admin{}, fmt.Errorf("storage is not configured")
	}

	var record admin.Admin
	if err := s.admins.FindOne(ctx, filter, opts).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return admin.Admin{}, storage.ErrNotFound
		}
		return admin.Admin{}, fmt.Errorf("find admin: %w", err)
	}
	return record, nil
}

func (s *Store) SetOTP(ctx context.Context, adminID string, code string, expiresAt time.Time, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.admins == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(adminID) == "" {
		return fmt.Errorf("admin id is required")
	}

	result, err := s.admins.UpdateByID(ctx, adminID, bson.M{
		"$set": bson.M{
			"otp":       code,
			"otpExpiry": expiresAt.UTC(),
			"updatedAt": now.UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConsumeOTP performs a conditional update keyed on the stored code so a
// resend racing a verification cannot be consumed by a stale submission.
func (s *Store) ConsumeOTP(ctx context.Context, adminID string, code string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.admins == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(adminID) == "" {
		return fmt.Errorf("admin id is required")
	}

	result, err := s.admins.UpdateOne(ctx,
		bson.M{"_id": adminID, "otp": code},
		bson.M{
			"$set":   bson.M{"isEmailVerified": true, "updatedAt": now.UTC()},
			"$unset": bson.M{"otp": "", "otpExpiry": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrOTPConflict
	}
	return nil
}

func (s *Store) LinkGoogle(ctx context.Context, adminID string, googleID string, avatar string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.admins == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(adminID) == "" {
		return fmt.Errorf("admin id is required")
	}
	if strings.TrimSpace(googleID) == "" {
		return fmt.Errorf("google id is required")
	}

	set := bson.M{
		"googleId":        googleID,
		"isEmailVerified": true,
		"updatedAt":       now.UTC(),
	}
	if strings.TrimSpace(avatar) != "" {
		set["avatar"] = avatar
	}

	result, err := s.admins.UpdateByID(ctx, adminID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("link google identity: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
