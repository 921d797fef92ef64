package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductStore implements port.ProductStore on the products collection.
type ProductStore struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewProductStore creates the products store.
func NewProductStore(c *Client) *ProductStore {
	return &ProductStore{
		coll:    c.db.Collection("products"),
		metrics: c.metrics,
		logger:  c.logger,
	}
}

// fail counts an unexpected database error and wraps it. Misses, duplicate
// keys and validation errors are not failures and never pass through here.
func (s *ProductStore) fail(op string, err error) error {
	s.metrics.IncrStoreError("products")
	return fmt.Errorf("%s: %w", op, err)
}

// buildProductFilter translates a domain filter into a Mongo query document.
// All fields AND together; search is an OR of case-insensitive substring
// matches over name/brand/description.
func buildProductFilter(f domain.ProductFilter) bson.M {
	query := bson.M{}

	if f.Type != "" {
		query["type"] = f.Type
	}
	if f.Brand != "" {
		query["brand"] = f.Brand
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.IsActive != nil {
		query["isActive"] = *f.IsActive
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"brand": rx},
			bson.M{"description": rx},
		}
	}

	return query
}

// productSort maps a sort name onto a Mongo sort document.
// Unknown values fall back to name_asc.
func productSort(s string) bson.D {
	switch s {
	case domain.SortNameDesc:
		return bson.D{{Key: "name", Value: -1}}
	case domain.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "name", Value: 1}}
	}
}

// List returns products matching the filter in the requested order.
func (s *ProductStore) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.List")
	defer span.End()

	cur, err := s.coll.Find(ctx, buildProductFilter(filter), options.Find().SetSort(productSort(filter.Sort)))
	if err != nil {
		return nil, s.fail("find products", err)
	}

	products := []domain.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, s.fail("decode products", err)
	}
	return products, nil
}

// Get returns a single product by id.
func (s *ProductStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.Get")
	defer span.End()

	oid, err := parseID("product", id)
	if err != nil {
		return nil, err
	}

	var p domain.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "product", ID: id}
		}
		return nil, s.fail("get product", err)
	}
	return &p, nil
}

// Create inserts a new product and returns it with its assigned id.
func (s *ProductStore) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.Create")
	defer span.End()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return nil, s.fail("insert product", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Info("product created",
		zap.String("product_id", p.ID.Hex()),
		zap.String("name", p.Name),
	)
	return p, nil
}

// Update applies the non-nil fields and returns the updated document.
func (s *ProductStore) Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.Update")
	defer span.End()

	oid, err := parseID("product", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Brand != nil {
		set["brand"] = *update.Brand
	}
	if update.KVARating != nil {
		set["kvaRating"] = *update.KVARating
	}
	if update.Specifications != nil {
		set["specifications"] = *update.Specifications
	}
	if update.ImageURL != nil {
		set["imageURL"] = *update.ImageURL
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}

	var p domain.Product
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, findAfter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.ErrNotFound{Resource: "product", ID: id}
		}
		return nil, s.fail("update product", err)
	}
	return &p, nil
}

// Delete removes a product.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ProductStore.Delete")
	defer span.End()

	oid, err := parseID("product", id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return s.fail("delete product", err)
	}
	if res.DeletedCount == 0 {
		return &domain.ErrNotFound{Resource: "product", ID: id}
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// DistinctBrands returns the sorted set of brand values in the catalog.
func (s *ProductStore) DistinctBrands(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.DistinctBrands")
	defer span.End()

	return s.distinct(ctx, "brand")
}

// DistinctTypes returns the sorted set of type values in the catalog.
func (s *ProductStore) DistinctTypes(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ProductStore.DistinctTypes")
	defer span.End()

	return s.distinct(ctx, "type")
}

func (s *ProductStore) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := s.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, s.fail("distinct "+field, err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	sort.Strings(out)
	return out, nil
}
