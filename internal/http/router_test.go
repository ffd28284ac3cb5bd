package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jforshea/authhub/internal/auth"
	"github.com/jforshea/authhub/internal/config"
	apphttp "github.com/jforshea/authhub/internal/http"
	"github.com/jforshea/authhub/internal/repo/memory"
	"github.com/jforshea/authhub/internal/service"
)

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Env:                  "test",
		JWTSecret:            "test-secret-key",
		JWTExpirationSeconds: 3600,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiration())
	store := memory.NewUsersRepo()
	svc := service.NewAuth(store, tokens, nil)

	return apphttp.NewRouter(apphttp.RouterDeps{
		Log:    logger,
		Cfg:    cfg,
		Auth:   svc,
		Tokens: tokens,
	})
}

func doRequest(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

const signupBody = `{"email":"test@test.com","firstName":"Test","lastName":"Testerson","password":"Test123!"}`

func signUp(t *testing.T, router http.Handler) {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/auth/signup", signupBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: status %d body=%s", w.Code, w.Body.String())
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "Authentication" {
			return c
		}
	}

	t.Fatalf("Authentication cookie not found, headers=%v", w.Header())
	return nil
}

func TestSignUpCreatesUser(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/signup", signupBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	mustReadJSON(t, w, &resp)

	if resp.ID != 1 {
		t.Fatalf("got id %d, want 1", resp.ID)
	}
	if resp.Email != "test@test.com" {
		t.Fatalf("got email %q", resp.Email)
	}

	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("signup response must not mention the password: %s", w.Body.String())
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	w := doRequest(router, http.MethodPost, "/auth/signup", signupBody)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Message != "User with that email already exists" {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	w := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Wrong123!"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Message != "Wrong credentials provided" {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

// Unknown account and wrong password must yield byte-identical error
// payloads, otherwise responses leak which emails are registered.
func TestSignInUnknownEmailMatchesWrongPassword(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	wrong := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Wrong123!"}`)
	unknown := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"nobody@test.com","password":"Test123!"}`)

	if wrong.Code != unknown.Code {
		t.Fatalf("status differs: %d vs %d", wrong.Code, unknown.Code)
	}

	var wrongResp, unknownResp errorResponse
	mustReadJSON(t, wrong, &wrongResp)
	mustReadJSON(t, unknown, &unknownResp)

	if wrongResp.Error.Message != unknownResp.Error.Message {
		t.Fatalf("messages differ: %q vs %q", wrongResp.Error.Message, unknownResp.Error.Message)
	}
	if wrongResp.Error.Code != unknownResp.Error.Code {
		t.Fatalf("codes differ: %q vs %q", wrongResp.Error.Code, unknownResp.Error.Code)
	}
}

func TestSignInSetsSessionCookie(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	w := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Test123!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	mustReadJSON(t, w, &resp)

	if resp.ID != 1 || resp.Email != "test@test.com" || resp.FirstName != "Test" || resp.LastName != "Testerson" {
		t.Fatalf("unexpected body: %+v", resp)
	}

	setCookie := w.Header().Get("Set-Cookie")

	if !strings.HasPrefix(setCookie, "Authentication=") {
		t.Fatalf("Set-Cookie should carry the Authentication cookie: %q", setCookie)
	}
	if !strings.Contains(setCookie, "HttpOnly") || !strings.Contains(setCookie, "Path=/") {
		t.Fatalf("cookie attributes missing: %q", setCookie)
	}
	if !strings.Contains(setCookie, "Max-Age=3600") {
		t.Fatalf("cookie should expire with the configured TTL: %q", setCookie)
	}

	cookie := sessionCookie(t, w)
	if cookie.Value == "" {
		t.Fatalf("session cookie has no token")
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	signin := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Test123!"}`)
	cookie := sessionCookie(t, signin)

	w := doRequest(router, http.MethodPost, "/auth/signout", `{}`, cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	want := "Authentication=; HttpOnly; Path=/; Max-Age=0"
	if got := w.Header().Get("Set-Cookie"); got != want {
		t.Fatalf("got Set-Cookie %q, want %q", got, want)
	}
}

// Signout takes no body, so a natural client request carries neither a
// payload nor a Content-Type header.
func TestSignOutWithoutBody(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	signin := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Test123!"}`)
	cookie := sessionCookie(t, signin)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	want := "Authentication=; HttpOnly; Path=/; Max-Age=0"
	if got := w.Header().Get("Set-Cookie"); got != want {
		t.Fatalf("got Set-Cookie %q, want %q", got, want)
	}
}

func TestSignOutWithoutCookieIsUnauthorized(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/signout", `{}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

func TestSignOutWithGarbageTokenIsUnauthorized(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/signout", `{}`,
		&http.Cookie{Name: "Authentication", Value: "not-a-jwt"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	router := setupRouter(t)
	signUp(t, router)

	signin := doRequest(router, http.MethodPost, "/auth/signin",
		`{"email":"test@test.com","password":"Test123!"}`)
	cookie := sessionCookie(t, signin)

	w := doRequest(router, http.MethodGet, "/auth/me", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
	}
	mustReadJSON(t, w, &resp)

	if resp.ID != 1 || resp.Email != "test@test.com" || resp.FirstName != "Test" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{Env: "test", JWTSecret: "test-secret-key", JWTExpirationSeconds: 3600}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiration())
	store := memory.NewUsersRepo()
	svc := service.NewAuth(store, tokens, nil)

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Log:    logger,
		Cfg:    cfg,
		Auth:   svc,
		Tokens: tokens,
	})

	// token minted by a manager whose TTL is already in the past
	expired := auth.NewManager(cfg.JWTSecret, -time.Minute)
	token, err := expired.Sign(1)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	w := doRequest(router, http.MethodGet, "/auth/me", "",
		&http.Cookie{Name: "Authentication", Value: token})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

func TestSignUpRequiresJSONContentType(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(signupBody))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415", w.Code)
	}
}
