package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trosc-backend/internal/database"
	"trosc-backend/internal/user/model"
	appErrors "trosc-backend/pkg/errors"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *database.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Active = true
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Photo == "" {
		user.Photo = model.DefaultPhoto
	}

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErrors.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Update applies the given profile fields and returns the updated document.
func (r *UserRepository) Update(ctx context.Context, userID primitive.ObjectID, fields bson.M) (*model.User, error) {
	fields["updated_at"] = time.Now()

	var user model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.ErrUserNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, appErrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string, changedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"password":            passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_login_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"reset_token_hash":       tokenHash,
			"reset_token_expires_at": expiresAt,
			"updated_at":             time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$unset": bson.M{
			"reset_token_hash":       "",
			"reset_token_expires_at": "",
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken atomically finds the user holding an unexpired token with
// the given hash, installs the new password and clears the token fields, all
// in one conditional update. Of two concurrent calls with the same token
// exactly one matches; the other observes no document and gets
// ErrResetTokenInvalid.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, changedAt time.Time) (*model.User, error) {
	filter := bson.M{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": bson.M{"$gt": time.Now()},
	}
	update := bson.M{
		"$set": bson.M{
			"password":            passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now(),
		},
		"$unset": bson.M{
			"reset_token_hash":       "",
			"reset_token_expires_at": "",
		},
	}

	var user model.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return &user, nil
}

// Deactivate soft-deletes the user by clearing the active flag.
func (r *UserRepository) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if res.MatchedCount == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

// Delete removes the user document permanently. Admin operation only; the
// self-service path soft-deletes via Deactivate.
func (r *UserRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
