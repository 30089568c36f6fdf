package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

const adminSessionContextKey = "adminSession"

func (a *App) requireAdminSessionHTML() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.loadAdminSession(c)
		if err != nil {
			next := sanitizeAdminRedirectTarget(c.Request.URL.RequestURI())
			target := "/admin/login?next=" + url.QueryEscape(next)
			if !errors.Is(err, errNoSession) {
				a.sessions.Clear(c)
			}
			if errors.Is(err, ErrAuthExpired) {
				if session != nil && session.WorkspaceID != "" {
					a.workspaces.Drop(session.WorkspaceID)
				}
				target += "&error=" + url.QueryEscape(adminText(a.adminLanguageFromRequest(c), "error_session_expired"))
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		a.attachAdminSession(c, *session)
		c.Next()
	}
}

func (a *App) requireAdminSessionAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.loadAdminSession(c)
		if err != nil {
			code := "unauthorized"
			if errors.Is(err, ErrAuthExpired) {
				code = "session_expired"
			}
			writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: code, Message: err.Error()})
			c.Abort()
			return
		}
		a.attachAdminSession(c, *session)
		c.Next()
	}
}

func (a *App) loadAdminSession(c *gin.Context) (*AdminSession, error) {
	session, err := a.sessions.Load(c)
	if err != nil {
		if errors.Is(err, ErrAuthExpired) {
			return session, err
		}
		return nil, err
	}
	if session.Expired(a.clock()) {
		return session, ErrAuthExpired
	}
	if session.User.Role != gateway.RoleAdmin {
		return nil, errAdminRoleRequired
	}
	return session, nil
}

func (a *App) attachAdminSession(c *gin.Context, session AdminSession) {
	c.Set(adminSessionContextKey, session)
	c.Request = c.Request.WithContext(withAdminSession(c.Request.Context(), session))
}

func getAdminSession(c *gin.Context) (AdminSession, error) {
	value, ok := c.Get(adminSessionContextKey)
	if !ok {
		return AdminSession{}, fmt.Errorf("missing session")
	}
	session, ok := value.(AdminSession)
	if !ok {
		return AdminSession{}, fmt.Errorf("invalid session")
	}
	return session, nil
}

// handleBackendError redirects with the backend message. A 401 means the
// token was revoked server-side, so the session is dropped as well.
func (a *App) handleBackendError(c *gin.Context, err error, target, fallbackKey string) {
	lang := a.adminLanguageFromRequest(c)
	if gateway.IsUnauthorized(err) {
		a.sendToLogin(c, target)
		return
	}
	a.log.Warn("backend call failed", "path", c.Request.URL.Path, "error", err, "request_id", c.GetString("requestID"))
	redirectAdminWithMessage(c, target, "error", normalizeAdminErrorMessage(err, lang, fallbackKey))
}

// redirectOnUnauthorized ends the session and sends the reviewer to login
// when err is a backend 401. It reports whether it responded.
func (a *App) redirectOnUnauthorized(c *gin.Context, err error) bool {
	if !gateway.IsUnauthorized(err) {
		return false
	}
	next := adminBasePath
	if c.Request.Method == http.MethodGet {
		next = c.Request.URL.RequestURI()
	}
	a.sendToLogin(c, next)
	return true
}

func (a *App) sendToLogin(c *gin.Context, next string) {
	lang := a.adminLanguageFromRequest(c)
	a.endAdminSession(c)
	target := "/admin/login?next=" + url.QueryEscape(sanitizeAdminRedirectTarget(next)) +
		"&error=" + url.QueryEscape(adminText(lang, "error_session_expired"))
	c.Redirect(http.StatusSeeOther, target)
}

func (a *App) endAdminSession(c *gin.Context) {
	if session, err := getAdminSession(c); err == nil && session.WorkspaceID != "" {
		a.workspaces.Drop(session.WorkspaceID)
	}
	a.sessions.Clear(c)
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}
