package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"expressbuy/internal/domain"
	"expressbuy/internal/events"
	"expressbuy/internal/payment"
	"expressbuy/internal/repos"
	"expressbuy/internal/services"
)

type fixture struct {
	db       *sqlx.DB
	users    *repos.UserRepo
	carts    *repos.CartRepo
	txns     *repos.TransactionRepo
	auth     *services.AuthService
	catalog  *services.CatalogService
	cart     *services.CartService
	checkout *services.CheckoutService
	gateway  *fakeGateway
	events   *recorder
	images   *memImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:      db,
		users:   repos.NewUserRepo(db),
		carts:   repos.NewCartRepo(db),
		txns:    repos.NewTransactionRepo(db),
		gateway: &fakeGateway{verify: map[string]payment.Verification{}},
		events:  &recorder{},
		images:  &memImages{stored: map[string]bool{}},
	}
	cats, prods := repos.NewCategoryRepo(db), repos.NewProductRepo(db)
	f.auth = services.NewAuthService(f.users, services.NewTokenService("test-secret", time.Hour))
	f.catalog = services.NewCatalogService(cats, prods, f.images)
	f.cart = services.NewCartService(f.carts, prods, f.users)
	f.checkout = services.NewCheckoutService(f.users, f.carts, f.txns, f.gateway, f.events, f.events)
	return f
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(services.Registration{
		FullName: "Ada Lovelace", Email: email, Password: "Passw0rd!", ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, price string) *domain.Product {
	t.Helper()
	cats, err := f.catalog.ListCategories()
	require.NoError(t, err)
	var catID string
	if len(cats) == 0 {
		c, err := f.catalog.CreateCategory("Phones")
		require.NoError(t, err)
		catID = c.ID
	} else {
		catID = cats[0].ID
	}
	p, err := f.catalog.CreateProduct(services.ProductInput{
		CategoryID: catID, Description: "Phone", Price: price, Image: imageHeader(t),
	})
	require.NoError(t, err)
	return p
}

func imageHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("productImage", "phone.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["productImage"][0]
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeGateway struct {
	mu         sync.Mutex
	n          int
	initErr    error
	noRef      bool
	verifyErr  error
	verify     map[string]payment.Verification
	lastAmount decimal.Decimal
	lastEmail  string
}

func (g *fakeGateway) Initialize(_ context.Context, amount decimal.Decimal, email string) (payment.Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return payment.Authorization{}, g.initErr
	}
	g.n++
	g.lastAmount, g.lastEmail = amount, email
	if g.noRef {
		return payment.Authorization{AuthorizationURL: "https://pay.test/x"}, nil
	}
	ref := fmt.Sprintf("ref-%d", g.n)
	return payment.Authorization{AuthorizationURL: "https://pay.test/" + ref, AccessCode: "ac", Reference: ref}, nil
}

func (g *fakeGateway) Verify(_ context.Context, ref string) (payment.Verification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return payment.Verification{}, g.verifyErr
	}
	if v, ok := g.verify[ref]; ok {
		return v, nil
	}
	return payment.Verification{Reference: ref, Status: "failed"}, nil
}

func (g *fakeGateway) pay(ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verify[ref] = payment.Verification{Reference: ref, Status: "success", Paid: true}
}

type recorder struct {
	mu       sync.Mutex
	events   []events.Event
	statuses []string
	fail     bool
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func (r *recorder) CheckoutStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type memImages struct {
	mu      sync.Mutex
	n       int
	stored  map[string]bool
	saveErr error
}

func (m *memImages) Save(*multipart.FileHeader) (domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return domain.Image{}, m.saveErr
	}
	m.n++
	key := fmt.Sprintf("products/img-%d.png", m.n)
	m.stored[key] = true
	return domain.Image{URL: "/media/" + key, Key: key}, nil
}

func (m *memImages) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, key)
	return nil
}
