package main

import (
	"bytes"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngCover = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func tourBackend(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/TravelTour":
		writeBackendJSON(w, http.StatusOK, `{"data":[{"id":4,"nameTour":"Địa đạo Củ Chi","price":450000,"duration":"1 ngày"}]}`)
	case (r.Method == http.MethodPost && r.URL.Path == "/api/TravelTour") ||
		(r.Method == http.MethodPut && r.URL.Path == "/api/TravelTour/4"):
		writeBackendJSON(w, http.StatusOK, `{"success":true}`)
	default:
		writeBackendJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	}
}

// postTourForm submits the tour form as multipart, with an optional cover.
func postTourForm(t *testing.T, app *App, router *gin.Engine, target string, fields map[string]string, cover []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if cover != nil {
		part, err := writer.CreateFormFile("cover_image", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(cover)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(sessionCookie(t, app, testAdminSession()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func readBackendMultipart(t *testing.T, call backendCall) *multipart.Form {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(call.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)
	form, err := multipart.NewReader(bytes.NewReader(call.Body), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	return form
}

func validTourFields() map[string]string {
	return map[string]string{
		"name_tour":  "Miền Tây sông nước",
		"content":    "Đi thuyền chợ nổi Cái Răng.",
		"price":      "1.500.000",
		"tour_type":  "Domestic",
		"duration":   "2 ngày 1 đêm",
		"max_people": "20",
		"gallery":    "/uploads/a.jpg\n/uploads/b.jpg",
	}
}

func TestTourCreateForwardsMultipart(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, tourBackend)

	rec := postTourForm(t, app, router, "/admin/tours", validTourFields(), pngCover)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/admin/tours?notice="))

	call, ok := backend.find(http.MethodPost, "/api/TravelTour")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+testBackendToken, call.Authorization)
	form := readBackendMultipart(t, call)
	assert.Equal(t, []string{"Miền Tây sông nước"}, form.Value["NameTour"])
	assert.Equal(t, []string{"1500000"}, form.Value["Price"])
	assert.Equal(t, []string{"20"}, form.Value["MaxPeople"])
	assert.Equal(t, []string{"/uploads/a.jpg,/uploads/b.jpg"}, form.Value["GalleryImageUrls"])
	require.Len(t, form.File["coverImage"], 1)
	assert.Equal(t, "cover.png", form.File["coverImage"][0].Filename)

	_, refetched := backend.find(http.MethodGet, "/api/TravelTour")
	assert.True(t, refetched, "a successful save reloads the list")
}

func TestTourUpdateWithoutCover(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, tourBackend)

	rec := postTourForm(t, app, router, "/admin/tours/4", validTourFields(), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	call, ok := backend.find(http.MethodPut, "/api/TravelTour/4")
	require.True(t, ok)
	form := readBackendMultipart(t, call)
	assert.Equal(t, []string{"2 ngày 1 đêm"}, form.Value["Duration"])
	assert.Empty(t, form.File["coverImage"], "the existing cover is kept")
}

func TestTourFormRejectsBadNumbersLocally(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		message string
	}{
		{name: "comma grouped price", field: "price", value: "1,500,000", message: "price must be a whole number"},
		{name: "max people", field: "max_people", value: "hai mươi", message: "max people must be a whole number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, router, backend := newConsoleTestServer(t, tourBackend)
			fields := validTourFields()
			fields[tc.field] = tc.value

			rec := postTourForm(t, app, router, "/admin/tours", fields, pngCover)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tc.message)
			assert.Contains(t, body, `value="`+tc.value+`"`, "typed values are kept")
			assert.Contains(t, body, `value="Miền Tây sông nước"`)
			assert.Empty(t, backend.recorded())
		})
	}
}

func TestTourCreateRequiresCover(t *testing.T) {
	app, router, backend := newConsoleTestServer(t, tourBackend)

	rec := postTourForm(t, app, router, "/admin/tours", validTourFields(), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "a cover image is required for a new tour")
	assert.Empty(t, backend.recorded())
}
