package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/angtech/catalog-api/internal/config"
	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/handler"
	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/infra/upload"
	"github.com/angtech/catalog-api/internal/service"

	"go.uber.org/zap"
)

type env struct {
	server     *httptest.Server
	products   *memProductStore
	adminToken string
}

// newEnv wires the full HTTP stack against in-memory stores and returns a
// running test server with one catalog product and a logged-in admin.
func newEnv(t *testing.T) *env {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	products := newMemProductStore()
	customers := newMemCustomerStore()
	enquiries := newMemEnquiryStore()
	users := newMemUserStore()

	hash, err := service.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := users.Create(context.Background(), &domain.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: hash,
		Role:     domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	uploads, err := upload.NewStorage(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("init upload storage: %v", err)
	}

	cfg := &config.Config{
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxUploadSize:  5 * 1024 * 1024,
		MaxUploadFiles: 5,
	}
	router := handler.NewRouter(cfg, handler.Services{
		Intake:    service.NewIntake(products, customers, enquiries, metrics, logger),
		Catalog:   service.NewCatalog(products, logger),
		Enquiries: service.NewEnquiryService(enquiries, logger),
		Customers: service.NewCustomerService(customers, logger),
		Auth:      service.NewAuthService(users, "integration-secret", time.Hour, logger),
		Uploads:   uploads,
		Metrics:   metrics,
	}, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	e := &env{server: server, products: products}
	e.adminToken = e.login(t, "admin@example.com", "admin-pass")
	return e
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	var resp domain.LoginResponse
	e.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: email, Password: password}, http.StatusOK, &resp)
	return resp.Token
}

// do issues a request, asserts the status, and decodes the body into out.
func (e *env) do(t *testing.T, method, path, token string, body any, wantStatus int, out any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var raw bytes.Buffer
		raw.ReadFrom(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, wantStatus, resp.StatusCode, raw.String())
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

// TestIntegration_EnquiryLifecycle walks the main business flow: a visitor
// submits an enquiry, which creates a customer; the admin reviews, annotates
// and completes it.
func TestIntegration_EnquiryLifecycle(t *testing.T) {
	e := newEnv(t)

	// Admin publishes a product.
	var product domain.Product
	e.do(t, http.MethodPost, "/api/products", e.adminToken, domain.Product{
		Name:        "PowerGuard 5kVA Online UPS",
		Type:        domain.ProductTypeUPS,
		Brand:       "PowerGuard",
		KVARating:   5,
		ImageURL:    "/uploads/images-seed.png",
		Description: "Double-conversion online UPS for server rooms",
		Price:       82000,
		Stock:       4,
		IsActive:    true,
	}, http.StatusCreated, &product)

	// Storefront sees it.
	var listing []domain.Product
	e.do(t, http.MethodGet, "/api/products", "", nil, http.StatusOK, &listing)
	if len(listing) != 1 {
		t.Fatalf("expected 1 product in the catalog, got %d", len(listing))
	}

	// A visitor submits an enquiry.
	var enquiry domain.Enquiry
	e.do(t, http.MethodPost, "/api/enquiries", "", domain.EnquiryRequest{
		ProductID: product.ID.Hex(),
		Name:      "Ravi Kumar",
		Email:     "ravi@example.com",
		Phone:     "+91 98765 43210",
		Message:   "Need a quote with installation",
	}, http.StatusCreated, &enquiry)

	if enquiry.Status != domain.StatusPending {
		t.Errorf("new enquiry should be pending, got %s", enquiry.Status)
	}

	// A customer record was created and linked.
	var customers []domain.Customer
	e.do(t, http.MethodGet, "/api/customers", e.adminToken, nil, http.StatusOK, &customers)
	if len(customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(customers))
	}
	customer := customers[0]
	if customer.Email != "ravi@example.com" {
		t.Errorf("unexpected customer email %s", customer.Email)
	}
	if len(customer.Enquiries) != 1 || customer.Enquiries[0] != enquiry.ID {
		t.Errorf("customer should reference the enquiry, got %v", customer.Enquiries)
	}

	// A second enquiry from the same email reuses the customer.
	var second domain.Enquiry
	e.do(t, http.MethodPost, "/api/enquiries", "", domain.EnquiryRequest{
		ProductID: product.ID.Hex(),
		Name:      "Ravi Kumar",
		Email:     "ravi@example.com",
		Phone:     "+91 98765 43210",
		Message:   "Also need 2 spare batteries",
	}, http.StatusCreated, &second)

	e.do(t, http.MethodGet, "/api/customers", e.adminToken, nil, http.StatusOK, &customers)
	if len(customers) != 1 {
		t.Fatalf("second enquiry must not create a second customer, got %d", len(customers))
	}
	if len(customers[0].Enquiries) != 2 {
		t.Errorf("expected 2 linked enquiries, got %d", len(customers[0].Enquiries))
	}

	// Admin works the case.
	var updated domain.Enquiry
	e.do(t, http.MethodPatch, "/api/enquiries/"+enquiry.ID.Hex()+"/status", e.adminToken,
		map[string]string{"status": "in_progress"}, http.StatusOK, &updated)
	if updated.Status != domain.StatusInProgress {
		t.Errorf("expected in_progress, got %s", updated.Status)
	}

	e.do(t, http.MethodPost, "/api/enquiries/"+enquiry.ID.Hex()+"/notes", e.adminToken,
		map[string]string{"content": "quoted 82k with installation"}, http.StatusOK, &updated)
	if len(updated.Notes) != 1 {
		t.Errorf("expected 1 note, got %d", len(updated.Notes))
	}

	e.do(t, http.MethodPatch, "/api/enquiries/"+enquiry.ID.Hex()+"/status", e.adminToken,
		map[string]string{"status": "completed"}, http.StatusOK, &updated)
	if updated.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}

	// Stats reflect one new-customer intake and one existing-customer intake.
	var stats domain.AdminStats
	e.do(t, http.MethodGet, "/api/admin/stats", e.adminToken, nil, http.StatusOK, &stats)
	if stats.EnquiriesTotal != 2 || stats.NewCustomers != 1 || stats.ExistingCustomers != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestIntegration_CustomerTagging(t *testing.T) {
	e := newEnv(t)

	var product domain.Product
	e.do(t, http.MethodPost, "/api/products", e.adminToken, domain.Product{
		Name:        "VoltSafe 2kVA Stabilizer",
		Type:        domain.ProductTypeStabilizer,
		Brand:       "VoltSafe",
		ImageURL:    "/uploads/images-seed.png",
		Description: "Wide-range stabilizer",
		Price:       7500,
		Stock:       20,
		IsActive:    true,
	}, http.StatusCreated, &product)

	var enquiry domain.Enquiry
	e.do(t, http.MethodPost, "/api/enquiries", "", domain.EnquiryRequest{
		ProductID: product.ID.Hex(),
		Name:      "Priya Sharma",
		Email:     "priya@example.com",
		Phone:     "+91 91234 56789",
		Message:   "Is this suitable for a 1.5T AC?",
	}, http.StatusCreated, &enquiry)

	var customers []domain.Customer
	e.do(t, http.MethodGet, "/api/customers", e.adminToken, nil, http.StatusOK, &customers)
	id := customers[0].ID.Hex()

	var customer domain.Customer
	e.do(t, http.MethodPost, "/api/customers/"+id+"/tags", e.adminToken,
		map[string]string{"tag": "Potential Lead"}, http.StatusOK, &customer)
	// Adding the same tag again is a no-op success.
	e.do(t, http.MethodPost, "/api/customers/"+id+"/tags", e.adminToken,
		map[string]string{"tag": "Potential Lead"}, http.StatusOK, &customer)
	if len(customer.Tags) != 1 {
		t.Errorf("duplicate tag add should not grow the list, got %v", customer.Tags)
	}

	// Unknown tags are rejected.
	e.do(t, http.MethodPost, "/api/customers/"+id+"/tags", e.adminToken,
		map[string]string{"tag": "Whale"}, http.StatusBadRequest, nil)

	e.do(t, http.MethodDelete, "/api/customers/"+id+"/tags/"+url.PathEscape("Potential Lead"), e.adminToken,
		nil, http.StatusOK, &customer)
	if len(customer.Tags) != 0 {
		t.Errorf("tag should be removed, got %v", customer.Tags)
	}
}

func TestIntegration_PublicRoutesNeedNoAuth(t *testing.T) {
	e := newEnv(t)

	var listing []domain.Product
	e.do(t, http.MethodGet, "/api/products", "", nil, http.StatusOK, &listing)

	var filters domain.CatalogFilters
	e.do(t, http.MethodGet, "/api/products/filters", "", nil, http.StatusOK, &filters)

	// Admin surface is closed without a token.
	e.do(t, http.MethodGet, "/api/enquiries", "", nil, http.StatusUnauthorized, nil)
	e.do(t, http.MethodGet, "/api/customers", "", nil, http.StatusUnauthorized, nil)
	e.do(t, http.MethodPost, "/api/products", "", domain.Product{}, http.StatusUnauthorized, nil)
}
