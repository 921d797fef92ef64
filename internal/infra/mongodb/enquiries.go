package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnquiryStore implements port.EnquiryStore on the enquiries collection.
type EnquiryStore struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewEnquiryStore creates the enquiries store.
func NewEnquiryStore(c *Client) *EnquiryStore {
	return &EnquiryStore{
		coll:    c.db.Collection("enquiries"),
		metrics: c.metrics,
		logger:  c.logger,
	}
}

// fail counts an unexpected database error and wraps it.
func (s *EnquiryStore) fail(op string, err error) error {
	s.metrics.IncrStoreError("enquiries")
	return fmt.Errorf("%s: %w", op, err)
}

// buildEnquiryFilter translates the admin listing filter into a query.
func buildEnquiryFilter(f domain.EnquiryFilter) bson.M {
	query := bson.M{}

	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"email": rx},
			bson.M{"phone": rx},
		}
	}

	return query
}

// List returns enquiries matching the filter, newest first.
func (s *EnquiryStore) List(ctx context.Context, filter domain.EnquiryFilter) ([]domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.List")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, buildEnquiryFilter(filter), opts)
	if err != nil {
		return nil, s.fail("find enquiries", err)
	}

	enquiries := []domain.Enquiry{}
	if err := cur.All(ctx, &enquiries); err != nil {
		return nil, s.fail("decode enquiries", err)
	}
	return enquiries, nil
}

// Get returns a single enquiry by id.
func (s *EnquiryStore) Get(ctx context.Context, id string) (*domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.Get")
	defer span.End()

	oid, err := parseID("enquiry", id)
	if err != nil {
		return nil, err
	}

	var e domain.Enquiry
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
		}
		return nil, s.fail("get enquiry", err)
	}
	return &e, nil
}

// Create inserts a new enquiry and returns it with its assigned id.
func (s *EnquiryStore) Create(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.Create")
	defer span.End()

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Notes == nil {
		e.Notes = []domain.Note{}
	}

	res, err := s.coll.InsertOne(ctx, e)
	if err != nil {
		return nil, s.fail("insert enquiry", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Info("enquiry created",
		zap.String("enquiry_id", e.ID.Hex()),
		zap.String("customer_id", e.CustomerID.Hex()),
		zap.String("product_id", e.ProductID.Hex()),
	)
	return e, nil
}

// SetStatus updates the status and returns the updated enquiry.
func (s *EnquiryStore) SetStatus(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.SetStatus")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
}

// AddNote appends a note and returns the updated enquiry.
func (s *EnquiryStore) AddNote(ctx context.Context, id string, note domain.Note) (*domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.AddNote")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SetFollowUpDate sets or clears the follow-up date.
func (s *EnquiryStore) SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Enquiry, error) {
	ctx, span := tracer.Start(ctx, "EnquiryStore.SetFollowUpDate")
	defer span.End()

	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if date != nil {
		update["$set"].(bson.M)["followUpDate"] = *date
	} else {
		update["$unset"] = bson.M{"followUpDate": ""}
	}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *EnquiryStore) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Enquiry, error) {
	oid, err := parseID("enquiry", id)
	if err != nil {
		return nil, err
	}

	var e domain.Enquiry
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, findAfter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
		}
		return nil, s.fail("update enquiry", err)
	}
	return &e, nil
}
