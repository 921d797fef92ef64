package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/angtech/catalog-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes for the persistence ports ---

type fakeProductStore struct {
	products map[string]*domain.Product
	listErr  error
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[string]*domain.Product)}
}

func (f *fakeProductStore) add(p *domain.Product) *domain.Product {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.products[p.ID.Hex()] = p
	return p
}

func (f *fakeProductStore) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductStore) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	return p, nil
}

func (f *fakeProductStore) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return f.add(p), nil
}

func (f *fakeProductStore) Update(_ context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	return p, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return &domain.ErrNotFound{Resource: "product", ID: id}
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) DistinctBrands(_ context.Context) ([]string, error) {
	return f.distinct(func(p *domain.Product) string { return p.Brand })
}

func (f *fakeProductStore) DistinctTypes(_ context.Context) ([]string, error) {
	return f.distinct(func(p *domain.Product) string { return string(p.Type) })
}

func (f *fakeProductStore) distinct(key func(*domain.Product) string) ([]string, error) {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range f.products {
		if k := key(p); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeCustomerStore struct {
	customers map[string]*domain.Customer

	addTagCalls    int
	removeTagCalls int
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{customers: make(map[string]*domain.Customer)}
}

func (f *fakeCustomerStore) add(c *domain.Customer) *domain.Customer {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.customers[c.ID.Hex()] = c
	return c
}

func (f *fakeCustomerStore) List(_ context.Context, _ domain.CustomerFilter) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCustomerStore) Get(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	return c, nil
}

func (f *fakeCustomerStore) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerStore) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	c.Enquiries = []primitive.ObjectID{}
	c.Tags = []string{}
	c.Notes = []domain.Note{}
	return f.add(c), nil
}

func (f *fakeCustomerStore) Update(_ context.Context, id string, update domain.CustomerUpdate) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Tags != nil {
		c.Tags = *update.Tags
	}
	return c, nil
}

func (f *fakeCustomerStore) AppendEnquiry(_ context.Context, customerID, enquiryID string) error {
	c, ok := f.customers[customerID]
	if !ok {
		return &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	oid, err := primitive.ObjectIDFromHex(enquiryID)
	if err != nil {
		return err
	}
	c.Enquiries = append(c.Enquiries, oid)
	return nil
}

func (f *fakeCustomerStore) AddNote(_ context.Context, id string, note domain.Note) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Notes = append(c.Notes, note)
	return c, nil
}

func (f *fakeCustomerStore) AddTag(_ context.Context, id, tag string) (*domain.Customer, error) {
	f.addTagCalls++
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Tags = append(c.Tags, tag)
	return c, nil
}

func (f *fakeCustomerStore) RemoveTag(_ context.Context, id, tag string) (*domain.Customer, error) {
	f.removeTagCalls++
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	c.Tags = kept
	return c, nil
}

func (f *fakeCustomerStore) SetTags(_ context.Context, id string, tags []string) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Tags = tags
	return c, nil
}

func (f *fakeCustomerStore) SetFollowUpDate(_ context.Context, id string, date *time.Time) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.FollowUpDate = date
	return c, nil
}

func (f *fakeCustomerStore) SetLastContact(_ context.Context, id string, at time.Time) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.LastContact = &at
	return c, nil
}

type fakeEnquiryStore struct {
	enquiries map[string]*domain.Enquiry
	createErr error
}

func newFakeEnquiryStore() *fakeEnquiryStore {
	return &fakeEnquiryStore{enquiries: make(map[string]*domain.Enquiry)}
}

func (f *fakeEnquiryStore) List(_ context.Context, filter domain.EnquiryFilter) ([]domain.Enquiry, error) {
	out := []domain.Enquiry{}
	for _, e := range f.enquiries {
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEnquiryStore) Get(_ context.Context, id string) (*domain.Enquiry, error) {
	e, ok := f.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	return e, nil
}

func (f *fakeEnquiryStore) Create(_ context.Context, e *domain.Enquiry) (*domain.Enquiry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.Notes = []domain.Note{}
	f.enquiries[e.ID.Hex()] = e
	return e, nil
}

func (f *fakeEnquiryStore) SetStatus(_ context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	e, ok := f.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.Status = status
	return e, nil
}

func (f *fakeEnquiryStore) AddNote(_ context.Context, id string, note domain.Note) (*domain.Enquiry, error) {
	e, ok := f.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.Notes = append(e.Notes, note)
	return e, nil
}

func (f *fakeEnquiryStore) SetFollowUpDate(_ context.Context, id string, date *time.Time) (*domain.Enquiry, error) {
	e, ok := f.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.FollowUpDate = date
	return e, nil
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return u, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID.Hex()] = u
	return u, nil
}
