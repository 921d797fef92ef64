package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CustomerStore implements port.CustomerStore on the customers collection.
type CustomerStore struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCustomerStore creates the customers store.
func NewCustomerStore(c *Client) *CustomerStore {
	return &CustomerStore{
		coll:    c.db.Collection("customers"),
		metrics: c.metrics,
		logger:  c.logger,
	}
}

// fail counts an unexpected database error and wraps it.
func (s *CustomerStore) fail(op string, err error) error {
	s.metrics.IncrStoreError("customers")
	return fmt.Errorf("%s: %w", op, err)
}

// buildCustomerFilter translates the admin listing filter into a query.
func buildCustomerFilter(f domain.CustomerFilter) bson.M {
	query := bson.M{}

	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"email": rx},
			bson.M{"phone": rx},
			bson.M{"company": rx},
		}
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}

	return query
}

// List returns customers matching the filter, most recently contacted first.
func (s *CustomerStore) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.List")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "lastContact", Value: -1}})
	cur, err := s.coll.Find(ctx, buildCustomerFilter(filter), opts)
	if err != nil {
		return nil, s.fail("find customers", err)
	}

	customers := []domain.Customer{}
	if err := cur.All(ctx, &customers); err != nil {
		return nil, s.fail("decode customers", err)
	}
	return customers, nil
}

// Get returns a single customer by id.
func (s *CustomerStore) Get(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.Get")
	defer span.End()

	oid, err := parseID("customer", id)
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
		}
		return nil, s.fail("get customer", err)
	}
	return &c, nil
}

// GetByEmail looks up a customer by case-folded email.
// Returns (nil, nil) when no customer carries the email.
func (s *CustomerStore) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.GetByEmail")
	defer span.End()

	var c domain.Customer
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, s.fail("get customer by email", err)
	}
	return &c, nil
}

// Create inserts a new customer. Email is stored lower-cased; the unique
// index turns a concurrent duplicate into ErrConflict.
func (s *CustomerStore) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.Create")
	defer span.End()

	now := time.Now().UTC()
	c.Email = strings.ToLower(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Enquiries == nil {
		c.Enquiries = []primitive.ObjectID{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Notes == nil {
		c.Notes = []domain.Note{}
	}

	res, err := s.coll.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ErrConflict{Message: fmt.Sprintf("customer with email %s already exists", c.Email)}
		}
		return nil, s.fail("insert customer", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID.Hex()),
		zap.String("email", c.Email),
	)
	return c, nil
}

// Update applies the non-nil fields and returns the updated document.
func (s *CustomerStore) Update(ctx context.Context, id string, update domain.CustomerUpdate) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.Update")
	defer span.End()

	oid, err := parseID("customer", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = strings.ToLower(*update.Email)
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Company != nil {
		set["company"] = *update.Company
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.FollowUpDate != nil {
		set["followUpDate"] = *update.FollowUpDate
	}

	var c domain.Customer
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, findAfter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ErrConflict{Message: "another customer already uses that email"}
		}
		return nil, s.fail("update customer", err)
	}
	return &c, nil
}

// AppendEnquiry pushes an enquiry reference onto the customer's enquiries
// list. This is the second write of the intake sequence and is not atomic
// with the enquiry insert.
func (s *CustomerStore) AppendEnquiry(ctx context.Context, customerID, enquiryID string) error {
	ctx, span := tracer.Start(ctx, "CustomerStore.AppendEnquiry")
	defer span.End()

	cid, err := parseID("customer", customerID)
	if err != nil {
		return err
	}
	eid, err := parseID("enquiry", enquiryID)
	if err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": cid}, bson.M{
		"$push": bson.M{"enquiries": eid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return s.fail("append enquiry", err)
	}
	if res.MatchedCount == 0 {
		return &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	return nil
}

// AddNote appends a note and returns the updated customer.
func (s *CustomerStore) AddNote(ctx context.Context, id string, note domain.Note) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.AddNote")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// AddTag adds a tag with set semantics ($addToSet).
func (s *CustomerStore) AddTag(ctx context.Context, id, tag string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.AddTag")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"tags": tag},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveTag removes a tag; removing an absent tag is a no-op ($pull).
func (s *CustomerStore) RemoveTag(ctx context.Context, id, tag string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.RemoveTag")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"tags": tag},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SetTags replaces the whole tag list.
func (s *CustomerStore) SetTags(ctx context.Context, id string, tags []string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.SetTags")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"tags": tags, "updatedAt": time.Now().UTC()},
	})
}

// SetFollowUpDate sets or clears the follow-up date.
func (s *CustomerStore) SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.SetFollowUpDate")
	defer span.End()

	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if date != nil {
		update["$set"].(bson.M)["followUpDate"] = *date
	} else {
		update["$unset"] = bson.M{"followUpDate": ""}
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// SetLastContact stamps the last-contact timestamp.
func (s *CustomerStore) SetLastContact(ctx context.Context, id string, at time.Time) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerStore.SetLastContact")
	defer span.End()

	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"lastContact": at, "updatedAt": time.Now().UTC()},
	})
}

func (s *CustomerStore) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Customer, error) {
	oid, err := parseID("customer", id)
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, findAfter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
		}
		return nil, s.fail("update customer", err)
	}
	return &c, nil
}
