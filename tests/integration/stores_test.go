package integration_test

import (
	"context"
	"sync"
	"time"

	"github.com/angtech/catalog-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store implementations used to exercise the full HTTP stack
// without a database. They honor the same contracts as the Mongo stores:
// GetByEmail returns (nil, nil) on absence, writes return the updated
// document, and ids are ObjectID hex strings.

type memProductStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[string]*domain.Product)}
}

func (s *memProductStore) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range s.products {
		if filter.Type != "" && string(p.Type) != filter.Type {
			continue
		}
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memProductStore) Get(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID.Hex()] = p
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Update(_ context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return &domain.ErrNotFound{Resource: "product", ID: id}
	}
	delete(s.products, id)
	return nil
}

func (s *memProductStore) DistinctBrands(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.products {
		if !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	return out, nil
}

func (s *memProductStore) DistinctTypes(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.products {
		if !seen[string(p.Type)] {
			seen[string(p.Type)] = true
			out = append(out, string(p.Type))
		}
	}
	return out, nil
}

type memCustomerStore struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
}

func newMemCustomerStore() *memCustomerStore {
	return &memCustomerStore{customers: make(map[string]*domain.Customer)}
}

func (s *memCustomerStore) List(_ context.Context, _ domain.CustomerFilter) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Customer{}
	for _, c := range s.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memCustomerStore) Get(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memCustomerStore) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.Enquiries = []primitive.ObjectID{}
	c.Tags = []string{}
	c.Notes = []domain.Note{}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.customers[c.ID.Hex()] = c
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) Update(_ context.Context, id string, update domain.CustomerUpdate) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Company != nil {
		c.Company = *update.Company
	}
	if update.Tags != nil {
		c.Tags = *update.Tags
	}
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) AppendEnquiry(_ context.Context, customerID, enquiryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
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

func (s *memCustomerStore) AddNote(_ context.Context, id string, note domain.Note) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Notes = append(c.Notes, note)
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) AddTag(_ context.Context, id, tag string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Tags = append(c.Tags, tag)
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) RemoveTag(_ context.Context, id, tag string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
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
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) SetTags(_ context.Context, id string, tags []string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.Tags = tags
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) SetFollowUpDate(_ context.Context, id string, date *time.Time) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.FollowUpDate = date
	cp := *c
	return &cp, nil
}

func (s *memCustomerStore) SetLastContact(_ context.Context, id string, at time.Time) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	c.LastContact = &at
	cp := *c
	return &cp, nil
}

type memEnquiryStore struct {
	mu        sync.Mutex
	enquiries map[string]*domain.Enquiry
}

func newMemEnquiryStore() *memEnquiryStore {
	return &memEnquiryStore{enquiries: make(map[string]*domain.Enquiry)}
}

func (s *memEnquiryStore) List(_ context.Context, filter domain.EnquiryFilter) ([]domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Enquiry{}
	for _, e := range s.enquiries {
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *memEnquiryStore) Get(_ context.Context, id string) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	cp := *e
	return &cp, nil
}

func (s *memEnquiryStore) Create(_ context.Context, e *domain.Enquiry) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	e.Notes = []domain.Note{}
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	s.enquiries[e.ID.Hex()] = e
	cp := *e
	return &cp, nil
}

func (s *memEnquiryStore) SetStatus(_ context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	return &cp, nil
}

func (s *memEnquiryStore) AddNote(_ context.Context, id string, note domain.Note) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.Notes = append(e.Notes, note)
	cp := *e
	return &cp, nil
}

func (s *memEnquiryStore) SetFollowUpDate(_ context.Context, id string, date *time.Time) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "enquiry", ID: id}
	}
	e.FollowUpDate = date
	cp := *e
	return &cp, nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = primitive.NewObjectID()
	s.users[u.ID.Hex()] = u
	cp := *u
	return &cp, nil
}
