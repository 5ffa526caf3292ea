package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"expressbuy/internal/config"
	"expressbuy/internal/events"
	"expressbuy/internal/http/handlers"
	"expressbuy/internal/metrics"
	"expressbuy/internal/payment"
	"expressbuy/internal/repos"
	"expressbuy/internal/storage"
)

const testPassword = "Passw0rd!"

// pngBytes is enough for content sniffing to report image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// paystackStub mimics the two Paystack endpoints checkout uses.
type paystackStub struct {
	mu    sync.Mutex
	n     int
	paid  map[string]bool
	down  bool
	calls int
}

func (s *paystackStub) markPaid(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid[ref] = true
}

func (s *paystackStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.down {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
		return
	}
	switch {
	case r.URL.Path == "/transaction/initialize":
		s.n++
		ref := fmt.Sprintf("T%06d", s.n)
		fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.test/%s","access_code":"ac%d","reference":"%s"}}`, ref, s.n, ref)
	case strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
		ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
		status := "failed"
		if s.paid[ref] {
			status = "success"
		}
		fmt.Fprintf(w, `{"status":true,"message":"Verification successful","data":{"reference":"%s","status":"%s"}}`, ref, status)
	default:
		http.NotFound(w, r)
	}
}

type testEnv struct {
	app      *fiber.App
	db       *sqlx.DB
	paystack *paystackStub
	metrics  *metrics.Metrics
	mediaDir string
}

func newTestEnv(t *testing.T, loginGuards ...fiber.Handler) *testEnv {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stub := &paystackStub{paid: map[string]bool{}}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, MediaDir: t.TempDir(), MediaURL: "/media"}
	images, err := storage.NewDisk(cfg.MediaDir, cfg.MediaURL)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	m := metrics.New()
	gw := payment.NewPaystack(srv.URL, "sk_test", "", 2*time.Second)
	deps := handlers.NewDeps(db, cfg, gw, events.Nop{}, images, m)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 64 << 10})
	app.Use(requestid.New())
	app.Use(m.Middleware())
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	app.Get("/metrics", m.Handler())
	deps.Mount(app.Group("/api/v1"), loginGuards...)

	return &testEnv{app: app, db: db, paystack: stub, metrics: m, mediaDir: cfg.MediaDir}
}

type apiResponse struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

func (r apiResponse) message() string {
	s, _ := r.Body["message"].(string)
	return s
}

func (r apiResponse) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) apiResponse {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := apiResponse{Status: resp.StatusCode, Raw: raw}
	_ = json.Unmarshal(raw, &out.Body)
	return out
}

func (e *testEnv) call(t *testing.T, method, path, token string, body any) apiResponse {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) register(t *testing.T, path, token, email string) apiResponse {
	t.Helper()
	return e.call(t, "POST", path, token, map[string]string{
		"fullName": "Ada Lovelace", "email": email, "password": testPassword, "confirmPassword": testPassword,
	})
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	r := e.call(t, "POST", "/api/v1/login", "", map[string]string{"email": email, "password": testPassword})
	if r.Status != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, r.Status, r.Raw)
	}
	tok, _ := r.data()["token"].(string)
	if tok == "" {
		t.Fatalf("no token in %s", r.Raw)
	}
	return tok
}

// admin bootstraps the first admin account and returns its token.
func (e *testEnv) admin(t *testing.T) string {
	t.Helper()
	if r := e.register(t, "/api/v1/admin/register", "", "root@expressbuy.test"); r.Status != http.StatusCreated {
		t.Fatalf("admin bootstrap: %d %s", r.Status, r.Raw)
	}
	return e.login(t, "root@expressbuy.test")
}

func (e *testEnv) user(t *testing.T, email string) string {
	t.Helper()
	if r := e.register(t, "/api/v1/register", "", email); r.Status != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, r.Status, r.Raw)
	}
	return e.login(t, email)
}

func productForm(t *testing.T, fields map[string]string, image []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if image != nil {
		fw, err := mw.CreateFormFile("productImage", "item.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) createProduct(t *testing.T, adminTok, categoryID string, fields map[string]string, image []byte) apiResponse {
	t.Helper()
	body, ctype := productForm(t, fields, image)
	req := httptest.NewRequest("POST", "/api/v1/product/"+categoryID, body)
	req.Header.Set("Content-Type", ctype)
	return e.send(t, req, adminTok)
}

// seedCatalog creates one category with one product and returns their ids.
func (e *testEnv) seedCatalog(t *testing.T, adminTok, price string) (string, string) {
	t.Helper()
	r := e.call(t, "POST", "/api/v1/category", adminTok, map[string]string{"name": "Phones"})
	if r.Status != http.StatusCreated {
		t.Fatalf("create category: %d %s", r.Status, r.Raw)
	}
	catID := r.data()["id"].(string)
	r = e.createProduct(t, adminTok, catID, map[string]string{"description": "Phone", "price": price}, pngBytes)
	if r.Status != http.StatusCreated {
		t.Fatalf("create product: %d %s", r.Status, r.Raw)
	}
	return catID, r.data()["id"].(string)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Status int            `json:"status"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs temporarily replaces the standard logger output and parses JSON lines.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
