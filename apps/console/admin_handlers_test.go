package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBackendToken = "backend-token"

type backendCall struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// fakeBackend records every call the console makes and answers with handler.
type fakeBackend struct {
	server *httptest.Server

	mu    sync.Mutex
	calls []backendCall
}

func newFakeBackend(t *testing.T, handler http.HandlerFunc) *fakeBackend {
	t.Helper()
	backend := &fakeBackend{}
	backend.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		backend.mu.Lock()
		backend.calls = append(backend.calls, backendCall{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		backend.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(backend.server.Close)
	return backend
}

func (b *fakeBackend) recorded() []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendCall(nil), b.calls...)
}

func (b *fakeBackend) find(method, path string) (backendCall, bool) {
	for _, call := range b.recorded() {
		if call.Method == method && call.Path == path {
			return call, true
		}
	}
	return backendCall{}, false
}

func writeBackendJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newConsoleTestServer(t *testing.T, handler http.HandlerFunc) (*App, *gin.Engine, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := newFakeBackend(t, handler)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := gateway.New(gateway.Config{
		BaseURL:      backend.server.URL + "/api",
		PublicOrigin: "http://localhost:5000",
		HTTPClient:   backend.server.Client(),
		Tokens:       gateway.TokenFunc(sessionTokenFromContext),
		Logger:       logger,
	})
	require.NoError(t, err)

	app := &App{
		cfg: &Config{
			Env:              "test",
			AppSigningSecret: testSigningSecret,
			WorkspaceTTL:     time.Hour,
		},
		log:            logger,
		backend:        client,
		sessions:       newCookieSessionStore(testSigningSecret, false),
		uploader:       &BackendImageUploader{Client: client},
		markdown:       newMarkdownRenderer(),
		now:            time.Now,
		adminTemplates: newAdminTemplateRenderer("test"),
	}
	app.workspaces = newWorkspaceRegistry(app.cfg.WorkspaceTTL, app.newWorkspace)
	app.adminProbeImage = func(ctx context.Context, imageURL string) imageState {
		return imageState{Kind: imageLoaded, URL: imageURL}
	}

	router := gin.New()
	app.registerAdminRoutes(router)
	return app, router, backend
}

func testAdminSession() AdminSession {
	return AdminSession{
		Token:       testBackendToken,
		User:        gateway.AdminUser{ID: 1, Email: "admin@citydesk.vn", FullName: "Tran Admin", Role: gateway.RoleAdmin},
		WorkspaceID: "ws-test",
	}
}

func sessionCookie(t *testing.T, app *App, session AdminSession) *http.Cookie {
	t.Helper()
	store, ok := app.sessions.(*cookieSessionStore)
	require.True(t, ok, "test server must use the cookie session store")
	token, err := store.sign(session, time.Now())
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token, Path: "/"}
}

// do sends a request as the default admin. form may be nil for GETs.
func do(t *testing.T, app *App, router *gin.Engine, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(sessionCookie(t, app, testAdminSession()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func findResponseCookie(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

const pendingFloodReports = `{"success":true,"data":[
	{"id":7,"title":"Ngập đường Nguyễn Hữu Cảnh","address":"Bình Thạnh","status":"Pending","imageUrl":"/uploads/flood/7.jpg","createdAt":"2026-10-01T08:00:00Z","userName":"Lan"},
	{"id":8,"title":"Nước dâng cầu Sài Gòn","address":"Thủ Đức","status":"Approved","waterLevel":"Medium","createdAt":"2026-09-30T08:00:00Z"}
]}`

func floodBackend(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/floodreports/admin/all":
		writeBackendJSON(w, http.StatusOK, pendingFloodReports)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/floodreports/admin/"):
		writeBackendJSON(w, http.StatusOK, `{"success":true,"message":"reviewed"}`)
	default:
		writeBackendJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	}
}

func TestFloodReportApproveFlow(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, floodBackend)

	open := do(t, app, router, http.MethodGet, "/admin/flood-reports/7/review?status=Approved", nil)
	require.Equal(t, http.StatusOK, open.Code, open.Body.String())
	assert.Contains(t, open.Body.String(), "Ngập đường Nguyễn Hữu Cảnh")

	form := url.Values{}
	form.Set("water_level", "High")
	form.Set("admin_note", "Đã xác minh tại hiện trường")
	save := do(t, app, router, http.MethodPost, "/admin/flood-reports/7/review", form)
	require.Equal(t, http.StatusOK, save.Code, save.Body.String())
	assert.Contains(t, save.Body.String(), "/admin/flood-reports/7/review/confirm")

	_, sent := backend.find(http.MethodPut, "/api/floodreports/admin/7/review")
	assert.False(t, sent, "nothing may be sent before the confirm step")

	confirm := do(t, app, router, http.MethodPost, "/admin/flood-reports/7/review/confirm", url.Values{"confirmed": {"yes"}})
	require.Equal(t, http.StatusSeeOther, confirm.Code, confirm.Body.String())
	location := confirm.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/admin/flood-reports?"), location)
	assert.Contains(t, location, "notice=")

	call, sent := backend.find(http.MethodPut, "/api/floodreports/admin/7/review")
	require.True(t, sent, "expected the review to reach the backend")
	assert.Equal(t, "Bearer "+testBackendToken, call.Authorization)

	var body map[string]string
	require.NoError(t, json.Unmarshal(call.Body, &body))
	assert.Equal(t, "Approved", body["status"])
	assert.Equal(t, "High", body["waterLevel"])
	assert.Equal(t, "Đã xác minh tại hiện trường", body["adminNote"])

	_, stillOpen := app.workspaces.Get("ws-test").dialog(ReviewFloodReport, 7)
	assert.False(t, stillOpen, "dialog must close after a successful review")

	gets := 0
	for _, call := range backend.recorded() {
		if call.Method == http.MethodGet && call.Path == "/api/floodreports/admin/all" {
			gets++
		}
	}
	assert.GreaterOrEqual(t, gets, 2, "list must be refetched after the review")
}

func TestFloodReportApproveWithoutWaterLevelStaysLocal(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, floodBackend)

	open := do(t, app, router, http.MethodGet, "/admin/flood-reports/7/review?status=Approved", nil)
	require.Equal(t, http.StatusOK, open.Code)
	before := len(backend.recorded())

	save := do(t, app, router, http.MethodPost, "/admin/flood-reports/7/review", url.Values{"admin_note": {"thiếu mức nước"}})
	assert.Equal(t, http.StatusUnprocessableEntity, save.Code)
	assert.Equal(t, before, len(backend.recorded()), "validation must not call the backend")

	dialog, ok := app.workspaces.Get("ws-test").dialog(ReviewFloodReport, 7)
	require.True(t, ok)
	assert.Contains(t, dialog.FieldErrors(), "waterLevel")
	assert.Equal(t, "thiếu mức nước", dialog.Draft().AdminNote)
}

func TestFloodReportReviewRejectsIllegalTransition(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)

	rec := do(t, app, router, http.MethodGet, "/admin/flood-reports/8/review?status=Rejected", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")

	_, open := app.workspaces.Get("ws-test").dialog(ReviewFloodReport, 8)
	assert.False(t, open)
}

func TestReviewConfirmWithoutOpenDialogRedirects(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, floodBackend)

	rec := do(t, app, router, http.MethodPost, "/admin/flood-reports/7/review/confirm", url.Values{"confirmed": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/admin/flood-reports/7?"))
	assert.Empty(t, backend.recorded())
}

func TestEventBannerBulkDelete(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/EventBanners":
			writeBackendJSON(w, http.StatusOK, `[
				{"id":2,"title":"Lễ hội áo dài","imageUrl":"/uploads/2.jpg","createdAt":"2026-10-01T00:00:00Z"},
				{"id":5,"title":"Ngày hội sách","imageUrl":"/uploads/5.jpg","createdAt":"2026-10-02T00:00:00Z"},
				{"id":9,"title":"Đêm nhạc bến cảng","imageUrl":"/uploads/9.jpg","createdAt":"2026-10-03T00:00:00Z"},
				{"id":11,"title":"Chợ phiên cuối tuần","imageUrl":"/uploads/11.jpg","createdAt":"2026-10-04T00:00:00Z"}
			]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/EventBanners/delete-multiple":
			writeBackendJSON(w, http.StatusOK, `{"success":true}`)
		default:
			writeBackendJSON(w, http.StatusNotFound, `{"message":"not found"}`)
		}
	})

	list := do(t, app, router, http.MethodGet, "/admin/events", nil)
	require.Equal(t, http.StatusOK, list.Code, list.Body.String())

	for _, id := range []string{"9", "2", "5"} {
		rec := do(t, app, router, http.MethodPost, "/admin/events/"+id+"/select", url.Values{"return": {"/admin/events"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/events", rec.Header().Get("Location"))
	}

	page := do(t, app, router, http.MethodGet, "/admin/events/bulk-delete", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Đêm nhạc bến cảng")

	submit := do(t, app, router, http.MethodPost, "/admin/events/bulk-delete", url.Values{"confirmed": {"yes"}})
	require.Equal(t, http.StatusSeeOther, submit.Code)
	assert.Contains(t, submit.Header().Get("Location"), "notice=")

	call, ok := backend.find(http.MethodPost, "/api/EventBanners/delete-multiple")
	require.True(t, ok)
	assert.JSONEq(t, `{"ids":[2,5,9]}`, string(call.Body))
	assert.Empty(t, app.workspaces.Get("ws-test").eventBanners.Selected())
}

func TestEventBannerBulkDeleteWithoutSelection(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBackendJSON(w, http.StatusOK, `[]`)
	})

	rec := do(t, app, router, http.MethodGet, "/admin/events/bulk-delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	_, deleted := backend.find(http.MethodPost, "/api/EventBanners/delete-multiple")
	assert.False(t, deleted)
}

func TestEventBannerCreateRejectsShortTitle(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBackendJSON(w, http.StatusOK, `[]`)
	})

	form := url.Values{}
	form.Set("title", "Hội")
	form.Set("image_url", "https://cdn.citydesk.vn/a.jpg")
	rec := do(t, app, router, http.MethodPost, "/admin/events", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, backend.recorded())
}

func TestProtectedRouteRedirectsWithoutSession(t *testing.T) {
	_, router, _ := newConsoleTestServer(t, floodBackend)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/events?page=2", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?next="+url.QueryEscape("/admin/events?page=2"), rec.Header().Get("Location"))
}

func TestExpiredSessionIsClearedAndRedirected(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, floodBackend)
	app.workspaces.Get("ws-test")
	app.workspaces.Get("ws-other")

	session := testAdminSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin/flood-reports", nil)
	req.AddCookie(sessionCookie(t, app, session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/admin/login?next="), location)
	assert.Contains(t, location, "error=")

	cleared := findResponseCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Empty(t, backend.recorded())
	assert.Equal(t, 1, app.workspaces.Len(), "only the expired session's workspace is dropped")
}

func TestExpiredSessionCookieDropsWorkspace(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)
	app.workspaces.Get("ws-test")

	store := app.sessions.(*cookieSessionStore)
	token, err := store.sign(testAdminSession(), time.Now().Add(-sessionDuration-time.Minute))
	require.NoError(t, err)
	expired, err := store.verify(token)
	require.ErrorIs(t, err, ErrAuthExpired)
	require.NotNil(t, expired)
	assert.Equal(t, "ws-test", expired.WorkspaceID)

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token, Path: "/"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	assert.Equal(t, 0, app.workspaces.Len())
}

func TestTamperedSessionCookieIsRejected(t *testing.T) {
	app, _, _ := newConsoleTestServer(t, floodBackend)
	other := newCookieSessionStore("fedcba9876543210", false)
	token, err := other.sign(testAdminSession(), time.Now().Add(-sessionDuration-time.Minute))
	require.NoError(t, err)

	session, err := app.sessions.(*cookieSessionStore).verify(token)
	assert.ErrorIs(t, err, errInvalidSession)
	assert.Nil(t, session)
}

func TestBackendUnauthorizedEndsSession(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBackendJSON(w, http.StatusUnauthorized, `{"message":"token revoked"}`)
	})
	app.workspaces.Get("ws-test")

	rec := do(t, app, router, http.MethodGet, "/admin/tours", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/admin/login?next="))
	assert.Equal(t, 0, app.workspaces.Len())
}

func TestLoginRejectsNonAdminRole(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)
	app.adminLogin = func(ctx context.Context, email, password string) (*gateway.LoginResult, error) {
		return &gateway.LoginResult{
			Token: "user-token",
			User:  gateway.AdminUser{ID: 9, Email: email, Role: "User"},
		}, nil
	}

	form := url.Values{"email": {"citizen@citydesk.vn"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, findResponseCookie(rec.Result(), sessionCookieName))
	assert.Contains(t, rec.Body.String(), adminText(adminDefaultLanguage, "error_admin_role_required"))
}

func TestLoginSuccessSetsSessionAndRedirects(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)
	app.adminLogin = func(ctx context.Context, email, password string) (*gateway.LoginResult, error) {
		if email != "admin@citydesk.vn" || password != "secret" {
			t.Fatalf("unexpected credentials: %s / %s", email, password)
		}
		return &gateway.LoginResult{
			Token: testBackendToken,
			User:  gateway.AdminUser{ID: 1, Email: email, FullName: "Tran Admin", Role: gateway.RoleAdmin},
		}, nil
	}

	form := url.Values{}
	form.Set("email", "admin@citydesk.vn")
	form.Set("password", "secret")
	form.Set("next", "/admin/feedback?status=Pending")
	form.Set("language", "en")
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/feedback?status=Pending", rec.Header().Get("Location"))

	cookie := findResponseCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, cookie)
	session, err := app.sessions.(*cookieSessionStore).verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, testBackendToken, session.Token)
	assert.Equal(t, gateway.RoleAdmin, session.User.Role)
	assert.NotEmpty(t, session.WorkspaceID)

	language := findResponseCookie(rec.Result(), adminLanguageCookieName)
	require.NotNil(t, language)
	assert.Equal(t, "en", language.Value)
}

func TestLogoutDropsWorkspace(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)
	app.workspaces.Get("ws-test")
	require.Equal(t, 1, app.workspaces.Len())

	rec := do(t, app, router, http.MethodPost, "/admin/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.workspaces.Len())
}

func TestLanguageSelectionCookieAndFallback(t *testing.T) {
	_, router, _ := newConsoleTestServer(t, floodBackend)

	post := func(language, next string) *httptest.ResponseRecorder {
		form := url.Values{"language": {language}, "next": {next}}
		req := httptest.NewRequest(http.MethodPost, "/admin/language", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	english := post("en", "/admin/tours")
	require.Equal(t, http.StatusSeeOther, english.Code)
	assert.Equal(t, "/admin/tours", english.Header().Get("Location"))
	cookie := findResponseCookie(english.Result(), adminLanguageCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "en", cookie.Value)

	fallback := post("de", "https://evil.example/admin")
	assert.Equal(t, adminBasePath, fallback.Header().Get("Location"))
	cookie = findResponseCookie(fallback.Result(), adminLanguageCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, adminDefaultLanguage, cookie.Value)
}

func TestBookingStatusChangeRequiresAllowedTransition(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/Booking/all-admin":
			writeBackendJSON(w, http.StatusOK, `{"data":[
				{"bookingId":3,"status":"Pending","totalPrice":2500000,"numberOfPeople":2,"bookingDate":"2026-10-01T00:00:00Z","tour":{"nameTour":"Cần Giờ"}},
				{"bookingId":4,"status":"Confirmed","totalPrice":900000,"numberOfPeople":1,"bookingDate":"2026-10-02T00:00:00Z"}
			]}`)
		default:
			writeBackendJSON(w, http.StatusOK, `{"success":true}`)
		}
	})

	illegal := do(t, app, router, http.MethodPost, "/admin/bookings/4/status", url.Values{"confirmed": {"yes"}, "status": {"Cancelled"}})
	require.Equal(t, http.StatusSeeOther, illegal.Code)
	assert.Contains(t, illegal.Header().Get("Location"), "error=")

	legal := do(t, app, router, http.MethodPost, "/admin/bookings/3/status", url.Values{"confirmed": {"yes"}, "status": {"Confirmed"}})
	require.Equal(t, http.StatusSeeOther, legal.Code)
	assert.Contains(t, legal.Header().Get("Location"), "notice=")

	mutations := 0
	for _, call := range backend.recorded() {
		if call.Method != http.MethodGet {
			mutations++
			assert.Contains(t, call.Path, "/3")
		}
	}
	assert.Equal(t, 1, mutations)
}

func TestSanitizeAdminRedirectTarget(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", adminBasePath},
		{"/admin", "/admin"},
		{"/admin/tours?page=2", "/admin/tours?page=2"},
		{"/admin/feedback?status=Processing", "/admin/feedback?status=Processing"},
		{"https://evil.example/admin", adminBasePath},
		{"//evil.example/admin", adminBasePath},
		{"/adminx", adminBasePath},
		{"/admin/login", adminBasePath},
		{"/healthz", adminBasePath},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeAdminRedirectTarget(tc.input), "input %q", tc.input)
	}
}

func TestBuildAdminPaginationView(t *testing.T) {
	view := buildAdminPaginationView(51, 2, 25, "/admin/tours?q=c%E1%BA%A7n")
	assert.Equal(t, 3, view.TotalPages)
	assert.True(t, view.HasNext)
	assert.True(t, view.HasPrev)
	assert.Equal(t, "&", view.PageSeparator)

	empty := buildAdminPaginationView(0, 0, 0, "/admin/tours")
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
	assert.Equal(t, "?", empty.PageSeparator)
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 ₫", formatVND(0))
	assert.Equal(t, "950 ₫", formatVND(950))
	assert.Equal(t, "2.500.000 ₫", formatVND(2500000))
	assert.Equal(t, "-1.000 ₫", formatVND(-1000))
}

func TestDashboardAPIPreflight(t *testing.T) {
	app, _, _ := newConsoleTestServer(t, floodBackend)
	app.cfg.PublicBaseURL = "https://ops.citydesk.vn"
	router := gin.New()
	app.registerAdminRoutes(router)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/admin/api/dashboard", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", requestIDHeader)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://ops.citydesk.vn")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ops.citydesk.vn", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(requestIDHeader))

	rec = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminTemplateFuncsEscapeByDefault(t *testing.T) {
	funcs := adminTemplateFuncs()
	assert.NotContains(t, funcs, "safe")
	assert.Contains(t, funcs, "markdown")
}
