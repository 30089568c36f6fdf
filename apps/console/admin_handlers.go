package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
)

const adminBasePath = "/admin"

func (a *App) registerAdminRoutes(r *gin.Engine) {
	staticFS, err := adminStaticFileSystem(a.cfg.Env)
	if err != nil {
		panic(err)
	}
	r.StaticFS("/admin/static", staticFS)

	r.GET("/admin/login", a.adminLoginPageHandler)
	r.POST("/admin/login", a.adminLoginSubmitHandler)
	r.POST("/admin/logout", a.adminLogoutSubmitHandler)
	r.POST("/admin/language", a.adminLanguageSubmitHandler)

	api := r.Group("/admin/api")
	api.Use(a.corsMiddleware(), a.requireAdminSessionAPI())
	{
		api.GET("/dashboard", a.adminDashboardAPIHandler)
	}
	// preflights carry no session, so they are answered before the guard
	r.OPTIONS("/admin/api/*path", a.corsMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	admin := r.Group("/admin")
	admin.Use(a.requireAdminSessionHTML())
	{
		admin.GET("", a.adminDashboardPageHandler)
		admin.GET("/", a.adminDashboardPageHandler)
		admin.GET("/dashboard/export", a.adminDashboardExportHandler)

		a.registerReviewRoutes(admin.Group("/flood-reports"), floodReviewResource)
		a.registerReviewRoutes(admin.Group("/feedback"), feedbackReviewResource)

		admin.GET("/events", a.adminEventsPageHandler)
		admin.GET("/events/new", a.adminEventCreatePageHandler)
		admin.POST("/events", a.adminEventCreateSubmitHandler)
		admin.POST("/events/upload", a.adminEventUploadSubmitHandler)
		admin.POST("/events/select-all", a.adminEventsSelectAllSubmitHandler)
		admin.GET("/events/bulk-delete", a.adminEventsBulkDeletePageHandler)
		admin.POST("/events/bulk-delete", a.adminEventsBulkDeleteSubmitHandler)
		admin.POST("/events/:id/select", a.adminEventSelectSubmitHandler)
		admin.GET("/events/:id/edit", a.adminEventEditPageHandler)
		admin.POST("/events/:id", a.adminEventUpdateSubmitHandler)
		admin.GET("/events/:id/delete", a.adminEventDeletePageHandler)
		admin.POST("/events/:id/delete", a.adminEventDeleteSubmitHandler)

		admin.GET("/tours", a.adminToursPageHandler)
		admin.GET("/tours/new", a.adminTourCreatePageHandler)
		admin.POST("/tours", a.adminTourCreateSubmitHandler)
		admin.GET("/tours/:id", a.adminTourDetailPageHandler)
		admin.GET("/tours/:id/edit", a.adminTourEditPageHandler)
		admin.POST("/tours/:id", a.adminTourUpdateSubmitHandler)
		admin.GET("/tours/:id/delete", a.adminTourDeletePageHandler)
		admin.POST("/tours/:id/delete", a.adminTourDeleteSubmitHandler)

		admin.GET("/bookings", a.adminBookingsPageHandler)
		admin.GET("/bookings/:id/status", a.adminBookingStatusPageHandler)
		admin.POST("/bookings/:id/status", a.adminBookingStatusSubmitHandler)
		admin.GET("/bookings/:id/cancel", a.adminBookingCancelPageHandler)
		admin.POST("/bookings/:id/cancel", a.adminBookingCancelSubmitHandler)

		admin.GET("/users", a.adminUsersPageHandler)
	}
}

func (a *App) adminLoginPageHandler(c *gin.Context) {
	if session, err := a.loadAdminSession(c); err == nil && session != nil {
		c.Redirect(http.StatusSeeOther, adminBasePath)
		return
	}

	next := sanitizeAdminRedirectTarget(c.Query("next"))
	base := a.adminBaseData(c, "page_title_login", "")
	data := adminLoginViewData{
		adminBaseViewData: base,
		Email:             "",
		Next:              next,
	}
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateLoginPath, data)
}

func (a *App) adminLoginSubmitHandler(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	next := sanitizeAdminRedirectTarget(c.PostForm("next"))
	lang := a.adminLanguageFromRequest(c)
	if requested := c.PostForm("language"); requested != "" {
		lang = normalizeAdminLanguage(requested)
		a.setAdminLanguageCookie(c, lang)
	}

	session, err := a.authenticateAdmin(c.Request.Context(), email, password)
	if err != nil {
		status, errorMessage := adminLoginFailure(err, lang)
		a.log.Info("admin login rejected", "email", email, "status", status, "request_id", c.GetString("requestID"))

		base := a.adminBaseData(c, "page_title_login", "")
		base.Lang = lang
		base.Text = adminTexts(lang)
		base.ErrorMessage = errorMessage

		data := adminLoginViewData{
			adminBaseViewData: base,
			Email:             email,
			Next:              next,
		}
		a.renderAdminTemplate(c, status, adminTemplateLoginPath, data)
		return
	}

	session.WorkspaceID = uuid.NewString()
	if err := a.sessions.Save(c, *session); err != nil {
		writeAPIError(c, err)
		return
	}
	a.log.Info("admin signed in", "email", session.User.Email, "workspace", session.WorkspaceID)

	c.Redirect(http.StatusSeeOther, next)
}

func adminLoginFailure(err error, lang string) (int, string) {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
		return http.StatusForbidden, adminText(lang, "error_admin_role_required")
	}
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, validationErr.Message
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Status {
		case http.StatusUnauthorized, http.StatusBadRequest, http.StatusNotFound:
			return http.StatusUnauthorized, adminText(lang, "error_invalid_credentials")
		case 0:
			return http.StatusBadGateway, gwErr.Message
		}
		if strings.TrimSpace(gwErr.Message) != "" {
			return http.StatusBadGateway, gwErr.Message
		}
	}
	return http.StatusInternalServerError, adminText(lang, "error_login_failed")
}

func (a *App) adminLogoutSubmitHandler(c *gin.Context) {
	if session, err := a.sessions.Load(c); err == nil && session.WorkspaceID != "" {
		a.workspaces.Drop(session.WorkspaceID)
	}
	a.sessions.Clear(c)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

func (a *App) adminLanguageSubmitHandler(c *gin.Context) {
	language := normalizeAdminLanguage(c.PostForm("language"))
	a.setAdminLanguageCookie(c, language)
	next := sanitizeAdminRedirectTarget(c.PostForm("next"))
	c.Redirect(http.StatusSeeOther, next)
}

// adminWorkspace returns the per-session workspace. Sessions signed before
// workspaces existed fall back to one keyed by the backend token.
func (a *App) adminWorkspace(c *gin.Context) *workspace {
	session, _ := getAdminSession(c)
	id := session.WorkspaceID
	if id == "" {
		id = "token:" + session.Token
	}
	return a.workspaces.Get(id)
}

func (a *App) renderAdminTemplate(c *gin.Context, status int, contentTemplatePath string, data any) {
	request := c.Request
	templates, err := a.adminTemplates.templatesForRender(contentTemplatePath, template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(request) },
		"markdown":  func(source string) template.HTML { return renderMarkdown(a.markdown, source) },
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "admin template error: %v", err)
		return
	}

	var buffer bytes.Buffer
	if executeErr := templates.ExecuteTemplate(&buffer, "layout", data); executeErr != nil {
		a.log.Error("render admin template failed", "template", contentTemplatePath, "error", executeErr)
		c.String(http.StatusInternalServerError, "render failure")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buffer.Bytes())
}

func (a *App) adminBaseData(c *gin.Context, titleKey, activeNav string) adminBaseViewData {
	lang := a.adminLanguageFromRequest(c)
	var session *AdminSession
	if stored, err := getAdminSession(c); err == nil {
		session = &stored
	}

	return adminBaseViewData{
		Title:         adminText(lang, titleKey),
		Lang:          lang,
		Text:          adminTexts(lang),
		Session:       session,
		CurrentPath:   sanitizeAdminRedirectTarget(c.Request.URL.RequestURI()),
		ActiveNav:     activeNav,
		ErrorMessage:  strings.TrimSpace(c.Query("error")),
		NoticeMessage: strings.TrimSpace(c.Query("notice")),
	}
}

func (a *App) setAdminLanguageCookie(c *gin.Context, language string) {
	secure := strings.EqualFold(a.cfg.Env, "production")
	c.SetCookie(adminLanguageCookieName, normalizeAdminLanguage(language), int(adminLanguageCookieMaxAge.Seconds()), "/", "", secure, true)
}

func (a *App) adminLanguageFromRequest(c *gin.Context) string {
	cookieValue, err := c.Cookie(adminLanguageCookieName)
	if err != nil {
		return adminDefaultLanguage
	}
	return normalizeAdminLanguage(cookieValue)
}

func normalizeAdminLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "en":
		return "en"
	default:
		return adminDefaultLanguage
	}
}

func adminTexts(lang string) map[string]string {
	language := normalizeAdminLanguage(lang)
	if translations, ok := adminTranslations[language]; ok {
		return translations
	}
	return adminTranslations[adminDefaultLanguage]
}

func adminText(lang, key string) string {
	translations := adminTexts(lang)
	if value, ok := translations[key]; ok {
		return value
	}
	fallback := adminTranslations[adminDefaultLanguage]
	if value, ok := fallback[key]; ok {
		return value
	}
	return key
}

// adminStatusLabel translates a backend status. Statuses the console does not
// know are shown as sent.
func adminStatusLabel(lang, status string) string {
	if strings.TrimSpace(status) == "" {
		status = dashboardUnknownStatus
	}
	key := "status_" + status
	if label := adminText(lang, key); label != key {
		return label
	}
	return status
}

func adminLabel(lang, prefix, value string) string {
	if value == "" {
		return adminText(lang, "common_dash")
	}
	key := prefix + value
	if label := adminText(lang, key); label != key {
		return label
	}
	return value
}

func formatAdminTimestamp(raw string) string {
	parsed, ok := gateway.ParseTimestamp(raw)
	if !ok {
		if strings.TrimSpace(raw) == "" {
			return "-"
		}
		return raw
	}
	return parsed.In(adminTimeLocation()).Format(adminDisplayTimestampLayout)
}

func formatAdminTime(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.In(adminTimeLocation()).Format(adminDisplayTimestampLayout)
}

func adminTimeLocation() *time.Location {
	adminTimeZoneOnce.Do(func() {
		location, err := time.LoadLocation("Asia/Ho_Chi_Minh")
		if err != nil {
			adminTimeZone = time.FixedZone("ICT", 7*60*60)
			return
		}
		adminTimeZone = location
	})
	return adminTimeZone
}

// formatVND renders an amount with dot thousands separators.
func formatVND(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	result := b.String() + " ₫"
	if negative {
		return "-" + result
	}
	return result
}

// buildAdminStatusActions lists the transitions allowed from currentStatus.
// urlFor builds the link that opens the confirm step for a candidate.
func buildAdminStatusActions(lang, entity, currentStatus string, urlFor func(status string) string) []adminStatusActionView {
	allowed := statusTransitions[entity][currentStatus]
	actions := make([]adminStatusActionView, 0, len(allowed))
	for _, candidate := range allowed {
		actions = append(actions, adminStatusActionView{
			Status: candidate,
			Label:  adminText(lang, fmt.Sprintf(adminStatusActionLabelTemplate, candidate)),
			URL:    urlFor(candidate),
		})
	}
	return actions
}

func adminStatusFilters(lang, current string, statuses []string) []adminOptionView {
	options := []adminOptionView{{Value: "", Label: adminText(lang, "common_all"), Selected: current == ""}}
	for _, status := range statuses {
		options = append(options, adminOptionView{Value: status, Label: adminStatusLabel(lang, status), Selected: current == status})
	}
	return options
}

func adminOptions(lang, prefix string, values []string, current string) []adminOptionView {
	options := make([]adminOptionView, 0, len(values))
	for _, value := range values {
		options = append(options, adminOptionView{Value: value, Label: adminLabel(lang, prefix, value), Selected: value == current})
	}
	return options
}

// adminColumns builds sortable header links for a list page.
func adminColumns[T any](basePath, filter string, query ListQuery, view ListView[T], keys ...string) map[string]adminColumnView {
	columns := make(map[string]adminColumnView, len(keys))
	for _, key := range keys {
		columns[key] = adminColumnView{
			URL:    adminSortURL(basePath, filter, query, view.SortKey, view.SortDesc, key),
			Active: view.SortKey == key,
			Desc:   view.SortDesc,
		}
	}
	return columns
}

func newAdminListChrome[T any](basePath, filter string, query ListQuery, view ListView[T], sortKeys ...string) adminListChrome {
	refresh := adminListURL(basePath, filter, query)
	if strings.Contains(refresh, "?") {
		refresh += "&refresh=1"
	} else {
		refresh += "?refresh=1"
	}
	return adminListChrome{
		BasePath:   basePath,
		Search:     query.Search,
		Filter:     filter,
		Columns:    adminColumns(basePath, filter, query, view, sortKeys...),
		Pagination: listPagination(basePath, filter, query, view),
		State:      view.State.String(),
		LoadError:  view.Error,
		RefreshURL: refresh,
		ShowSearch: true,
	}
}

func (a *App) adminImageState(raw string) imageState {
	return resolveImageState(a.backend.ImageURL(raw))
}

func parseAdminID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// readAdminUpload reads an optional file field. A missing file is not an
// error; the caller decides whether it was required.
func readAdminUpload(c *gin.Context, field string) (*gateway.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if header.Size > gateway.MaxImageUploadBytes {
		return nil, &gateway.ValidationError{Field: field, Message: "image must be 10 MB or smaller"}
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, gateway.MaxImageUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &gateway.Upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

func sanitizeAdminRedirectTarget(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return adminBasePath
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return adminBasePath
	}
	if parsed.IsAbs() || parsed.Host != "" {
		return adminBasePath
	}
	if strings.HasPrefix(parsed.Path, "//") {
		return adminBasePath
	}
	if parsed.Path != adminBasePath && !strings.HasPrefix(parsed.Path, adminBasePath+"/") {
		return adminBasePath
	}
	if parsed.Path == "/admin/login" || parsed.Path == "/admin/logout" || parsed.Path == "/admin/language" {
		return adminBasePath
	}

	target := parsed.Path
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}

func redirectAdminWithMessage(c *gin.Context, target, key, value string) {
	parsed, err := url.Parse(sanitizeAdminRedirectTarget(target))
	if err != nil {
		c.Redirect(http.StatusSeeOther, adminBasePath)
		return
	}
	query := parsed.Query()
	query.Del("error")
	query.Del("notice")
	query.Del("refresh")
	query.Set(key, value)
	parsed.RawQuery = query.Encode()

	redirectURL := parsed.Path
	if parsed.RawQuery != "" {
		redirectURL += "?" + parsed.RawQuery
	}
	c.Redirect(http.StatusSeeOther, redirectURL)
}

// normalizeAdminErrorMessage picks the message shown to the reviewer.
func normalizeAdminErrorMessage(err error, lang string, fallbackKey string) string {
	var aiErr *gateway.AIAnalysisError
	if errors.As(err, &aiErr) {
		return fmt.Sprintf(adminText(lang, "error_ai_failed"), gateway.Message(aiErr.Err))
	}
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) && strings.TrimSpace(validationErr.Message) != "" {
		return validationErr.Message
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && strings.TrimSpace(gwErr.Message) != "" {
		return gwErr.Message
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return adminText(lang, fallbackKey)
}

func validationFieldErrors(err error) map[string]string {
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]string{validationErr.Field: validationErr.Message}
	}
	return map[string]string{}
}
