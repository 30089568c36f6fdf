package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrAuthExpired means the stored backend token is past its exp claim.
	ErrAuthExpired = errors.New("session expired")

	errNoSession         = errors.New("missing session")
	errInvalidSession    = errors.New("invalid session token")
	errAdminRoleRequired = errors.New("access denied: admin role required")
)

// AdminSession is the authenticated reviewer. Token and User are persisted
// and cleared together.
type AdminSession struct {
	Token       string
	User        gateway.AdminUser
	WorkspaceID string
	// ExpiresAt is the backend token's exp; zero when the token has none.
	ExpiresAt time.Time
}

func (s AdminSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore persists the admin session between requests. Load returns the
// expired session together with ErrAuthExpired so callers can release what it
// owned.
type SessionStore interface {
	Load(c *gin.Context) (*AdminSession, error)
	Save(c *gin.Context, session AdminSession) error
	Clear(c *gin.Context)
}

type cookieSessionStore struct {
	secret []byte
	secure bool
}

func newCookieSessionStore(secret string, secure bool) *cookieSessionStore {
	return &cookieSessionStore{secret: []byte(secret), secure: secure}
}

func (s *cookieSessionStore) Save(c *gin.Context, session AdminSession) error {
	token, err := s.sign(session, time.Now())
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookieName, token, int(sessionDuration.Seconds()), "/", "", s.secure, true)
	return nil
}

func (s *cookieSessionStore) Clear(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.secure, true)
}

func (s *cookieSessionStore) Load(c *gin.Context) (*AdminSession, error) {
	raw, err := c.Cookie(sessionCookieName)
	if err != nil || raw == "" {
		return nil, errNoSession
	}
	session, err := s.verify(raw)
	if err != nil {
		return session, err
	}
	if session.Expired(time.Now()) {
		return session, ErrAuthExpired
	}
	return session, nil
}

func (s *cookieSessionStore) sign(session AdminSession, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"token": session.Token,
		"uid":   session.User.ID,
		"email": session.User.Email,
		"name":  session.User.FullName,
		"role":  session.User.Role,
		"wid":   session.WorkspaceID,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionDuration).Unix(),
	}
	if !session.ExpiresAt.IsZero() {
		claims["bexp"] = session.ExpiresAt.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *cookieSessionStore) verify(tokenString string) (*AdminSession, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	// an expired cookie still had its signature checked
	expired := errors.Is(err, jwt.ErrTokenExpired)
	if token == nil || (err != nil && !expired) || (err == nil && !token.Valid) {
		return nil, errInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidSession
	}
	backendToken, _ := claims["token"].(string)
	email, _ := claims["email"].(string)
	if backendToken == "" || email == "" {
		return nil, errInvalidSession
	}
	session := &AdminSession{Token: backendToken}
	session.User.Email = email
	session.User.FullName, _ = claims["name"].(string)
	session.User.Role, _ = claims["role"].(string)
	session.WorkspaceID, _ = claims["wid"].(string)
	if uid, ok := claims["uid"].(float64); ok {
		session.User.ID = int(uid)
	}
	if bexp, ok := claims["bexp"].(float64); ok && bexp > 0 {
		session.ExpiresAt = time.Unix(int64(bexp), 0)
	}
	if expired {
		return session, ErrAuthExpired
	}
	return session, nil
}

// backendTokenExpiry reads exp from the backend JWT without verifying it; the
// console does not hold the backend's key.
func backendTokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

type sessionContextKey struct{}

func withAdminSession(ctx context.Context, session AdminSession) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func adminSessionFromContext(ctx context.Context) (AdminSession, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(AdminSession)
	return session, ok
}

// sessionTokenFromContext feeds the gateway; it is read on every backend call.
func sessionTokenFromContext(ctx context.Context) string {
	session, ok := adminSessionFromContext(ctx)
	if !ok {
		return ""
	}
	return session.Token
}

// authenticateAdmin exchanges credentials for a session. Only the Admin role
// may enter the console.
func (a *App) authenticateAdmin(ctx context.Context, email, password string) (*AdminSession, error) {
	result, err := a.adminLoginCall(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result.User.Role != gateway.RoleAdmin {
		return nil, &apiError{Status: http.StatusForbidden, Code: "forbidden", Message: errAdminRoleRequired.Error()}
	}
	return &AdminSession{
		Token:     result.Token,
		User:      result.User,
		ExpiresAt: backendTokenExpiry(result.Token),
	}, nil
}

func (a *App) adminLoginCall(ctx context.Context, email, password string) (*gateway.LoginResult, error) {
	if a.adminLogin != nil {
		return a.adminLogin(ctx, email, password)
	}
	return a.backend.Login(ctx, email, password)
}
