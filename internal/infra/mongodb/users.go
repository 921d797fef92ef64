package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserStore implements port.UserStore on the users collection.
type UserStore struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewUserStore creates the users store.
func NewUserStore(c *Client) *UserStore {
	return &UserStore{
		coll:    c.db.Collection("users"),
		metrics: c.metrics,
		logger:  c.logger,
	}
}

// fail counts an unexpected database error and wraps it.
func (s *UserStore) fail(op string, err error) error {
	s.metrics.IncrStoreError("users")
	return fmt.Errorf("%s: %w", op, err)
}

// GetByEmail looks up a user by email. Returns (nil, nil) when absent.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "UserStore.GetByEmail")
	defer span.End()

	var u domain.User
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, s.fail("get user by email", err)
	}
	return &u, nil
}

// Get returns a single user by id.
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "UserStore.Get")
	defer span.End()

	oid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}

	var u domain.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "user", ID: id}
		}
		return nil, s.fail("get user", err)
	}
	return &u, nil
}

// Create inserts a new user. The unique email index turns duplicates into
// ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "UserStore.Create")
	defer span.End()

	now := time.Now().UTC()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ErrConflict{Message: fmt.Sprintf("user with email %s already exists", u.Email)}
		}
		return nil, s.fail("insert user", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}
