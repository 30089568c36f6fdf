package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"citydesk/libs/gateway"
	"citydesk/libs/mailer"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/joho/godotenv"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

const (
	sessionCookieName        = "citydesk_admin_session"
	sessionDuration          = 8 * time.Hour
	workspaceCleanupInterval = time.Minute
	listFreshnessWindow      = 2 * time.Second
	imageProbeTimeout        = 5 * time.Second
	shutdownTimeout          = 10 * time.Second
	requestIDHeader          = "X-Request-ID"
	csrfFieldName            = "csrf_token"
	devCORSOriginLocalhost   = "http://localhost:5173"
	trustedProxyLoopbackIPv4 = "127.0.0.1"
	trustedProxyLoopbackIPv6 = "::1"

	uploadProviderBackend    = "backend"
	uploadProviderCloudinary = "cloudinary"
	uploadProviderFallback   = "fallback"
)

type Config struct {
	Addr                 string
	Env                  string
	AppSigningSecret     string
	BackendAPIURL        string
	BackendPublicOrigin  string
	EmulatorHostAliases  []string
	BackendTimeout       time.Duration
	CSRFAuthKey          string
	PublicBaseURL        string
	ImageUploadProvider  string
	CloudinaryCloudName  string
	CloudinaryAPIKey     string
	CloudinaryAPISecret  string
	CloudinaryFolder     string
	AMQPURL              string
	ResendAPIKey         string
	MailerFromAddresses  map[string]string
	ReviewNotifyTo       []string
	WorkspaceTTL         time.Duration
	ImageProbeEnabled    bool
	DashboardExportTitle string
}

type App struct {
	cfg *Config
	log *slog.Logger

	backend    *gateway.Client
	sessions   SessionStore
	workspaces *workspaceRegistry
	uploader   ImageUploader
	events     reviewEventPublisher
	mailer     *mailer.Mailer
	markdown   goldmark.Markdown
	httpProbe  *http.Client
	now        func() time.Time

	adminTemplates *adminTemplateRenderer

	// test hooks for server-rendered admin handlers
	adminLogin      func(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	adminProbeImage func(ctx context.Context, imageURL string) imageState
}

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string { return e.Message }

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app, err := newApp(cfg, logger)
	if err != nil {
		panic(err)
	}
	defer app.close()

	logger.Info(
		"runtime configuration",
		"env", cfg.Env,
		"addr", cfg.Addr,
		"backend", cfg.BackendAPIURL,
		"upload_provider", app.uploader.Name(),
		"mailer", app.mailer.ProviderName(),
	)

	if len(os.Args) > 1 && os.Args[1] == "export-dashboard" {
		if err := app.runDashboardExport(context.Background(), os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "export-dashboard: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.workspaces.startCleanup(ctx, workspaceCleanupInterval)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.log.Info("starting admin console", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error("admin console stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.log.Error("graceful shutdown failed", "error", err)
		return
	}
	app.log.Info("admin console shut down")
}

func newApp(cfg *Config, logger *slog.Logger) (*App, error) {
	app := &App{
		cfg:            cfg,
		log:            logger,
		sessions:       newCookieSessionStore(cfg.AppSigningSecret, strings.EqualFold(cfg.Env, "production")),
		markdown:       newMarkdownRenderer(),
		httpProbe:      &http.Client{Timeout: imageProbeTimeout},
		now:            time.Now,
		adminTemplates: newAdminTemplateRenderer(cfg.Env),
	}

	backend, err := gateway.New(gateway.Config{
		BaseURL:       cfg.BackendAPIURL,
		PublicOrigin:  cfg.BackendPublicOrigin,
		EmulatorHosts: cfg.EmulatorHostAliases,
		HTTPClient:    &http.Client{Timeout: cfg.BackendTimeout},
		Tokens:        gateway.TokenFunc(sessionTokenFromContext),
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	app.backend = backend
	app.workspaces = newWorkspaceRegistry(cfg.WorkspaceTTL, app.newWorkspace)

	app.uploader, err = newImageUploader(cfg, backend, logger)
	if err != nil {
		return nil, err
	}

	var mailProvider mailer.Provider
	if cfg.ResendAPIKey != "" {
		mailProvider = mailer.NewResendProvider(cfg.ResendAPIKey)
	} else {
		mailProvider = mailer.NewLogProvider(logger)
	}
	app.mailer = mailer.New(mailProvider, cfg.MailerFromAddresses[mailProvider.Name()])

	if cfg.AMQPURL != "" {
		publisher, err := newAMQPReviewPublisher(cfg.AMQPURL)
		if err != nil {
			// review events are optional; the console still works without a broker
			logger.Warn("review events disabled", "error", err)
		} else {
			app.events = publisher
		}
	}

	return app, nil
}

func (a *App) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("close review event publisher", "error", err)
		}
	}
}

func (a *App) routes() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies([]string{trustedProxyLoopbackIPv4, trustedProxyLoopbackIPv6}); err != nil {
		panic(err)
	}
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(a.loggingMiddleware())
	if a.cfg.CSRFAuthKey != "" {
		r.Use(a.csrfMiddleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a.registerAdminRoutes(r)
	return r
}

func newMarkdownRenderer() goldmark.Markdown {
	// raw HTML in tour content stays escaped
	return goldmark.New(
		goldmark.WithRendererOptions(
			goldmarkHTML.WithHardWraps(),
		),
	)
}

func loadConfig() (*Config, error) {
	secret := strings.TrimSpace(os.Getenv("APP_SIGNING_SECRET"))
	if len(secret) < 16 {
		return nil, fmt.Errorf("APP_SIGNING_SECRET must be at least 16 characters")
	}

	env := valueFromEnvKeys("APP_ENV", "GIN_ENV")
	if env == "" {
		env = "development"
	}

	backendURL := strings.TrimRight(valueOrDefault("BACKEND_API_URL", gateway.DefaultBaseURL), "/")
	parsedBackend, err := url.Parse(backendURL)
	if err != nil || (parsedBackend.Scheme != "http" && parsedBackend.Scheme != "https") || parsedBackend.Host == "" {
		return nil, fmt.Errorf("BACKEND_API_URL must be an absolute http(s) URL")
	}

	timeoutSeconds, err := strconv.Atoi(valueOrDefault("BACKEND_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be a positive integer")
	}

	workspaceMinutes, err := strconv.Atoi(valueOrDefault("WORKSPACE_TTL_MINUTES", "120"))
	if err != nil || workspaceMinutes <= 0 {
		return nil, fmt.Errorf("WORKSPACE_TTL_MINUTES must be a positive integer")
	}

	cfg := &Config{
		Addr:                valueOrDefault("GIN_ADDR", ":8080"),
		Env:                 env,
		AppSigningSecret:    secret,
		BackendAPIURL:       backendURL,
		BackendPublicOrigin: strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_PUBLIC_ORIGIN")), "/"),
		EmulatorHostAliases: splitEnvList(valueOrDefault("EMULATOR_HOST_ALIASES", strings.Join(gateway.DefaultEmulatorHosts, ","))),
		BackendTimeout:      time.Duration(timeoutSeconds) * time.Second,
		CSRFAuthKey:         strings.TrimSpace(os.Getenv("CSRF_AUTH_KEY")),
		PublicBaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		ImageUploadProvider: strings.ToLower(valueOrDefault("IMAGE_UPLOAD_PROVIDER", uploadProviderBackend)),
		CloudinaryCloudName: strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME")),
		CloudinaryAPIKey:    strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY")),
		CloudinaryAPISecret: strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET")),
		CloudinaryFolder:    valueOrDefault("CLOUDINARY_FOLDER", "citydesk/event-banners"),
		AMQPURL:             strings.TrimSpace(os.Getenv("AMQP_URL")),
		ResendAPIKey:        strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		MailerFromAddresses: map[string]string{
			"resend": valueOrDefault("MAILER_FROM_ADDRESS_RESEND", "noreply@mail.citydesk.vn"),
			"log":    valueOrDefault("MAILER_FROM_ADDRESS_LOG", "noreply@citydesk.local"),
		},
		ReviewNotifyTo:       mailer.ParseRecipients(os.Getenv("REVIEW_NOTIFY_TO")),
		WorkspaceTTL:         time.Duration(workspaceMinutes) * time.Minute,
		ImageProbeEnabled:    !strings.EqualFold(strings.TrimSpace(os.Getenv("IMAGE_PROBE")), "off"),
		DashboardExportTitle: valueOrDefault("DASHBOARD_EXPORT_TITLE", "City dashboard summary"),
	}

	if cfg.CSRFAuthKey != "" && len(cfg.CSRFAuthKey) != 32 {
		return nil, fmt.Errorf("CSRF_AUTH_KEY must be exactly 32 bytes")
	}
	if cfg.CSRFAuthKey == "" && strings.EqualFold(cfg.Env, "production") {
		return nil, fmt.Errorf("CSRF_AUTH_KEY is required in production")
	}

	switch cfg.ImageUploadProvider {
	case uploadProviderBackend:
	case uploadProviderCloudinary, uploadProviderFallback:
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for IMAGE_UPLOAD_PROVIDER=%s", cfg.ImageUploadProvider)
		}
	default:
		return nil, fmt.Errorf("IMAGE_UPLOAD_PROVIDER must be one of backend, cloudinary, fallback")
	}

	return cfg, nil
}

func newImageUploader(cfg *Config, backend *gateway.Client, logger *slog.Logger) (ImageUploader, error) {
	backendUploader := &BackendImageUploader{Client: backend}
	if cfg.ImageUploadProvider == uploadProviderBackend {
		return backendUploader, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cloudUploader := &CloudinaryImageUploader{Cloud: cld, Folder: cfg.CloudinaryFolder}
	if cfg.ImageUploadProvider == uploadProviderCloudinary {
		return cloudUploader, nil
	}
	return &FallbackImageUploader{Primary: backendUploader, Secondary: cloudUploader, Log: logger}, nil
}

func valueOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func valueFromEnvKeys(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}

func splitEnvList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"request_id", c.GetString("requestID"),
		)
	}
}

// corsMiddleware only guards the JSON endpoints; the HTML console is same-origin.
func (a *App) corsMiddleware() gin.HandlerFunc {
	origins := []string{}
	if a.cfg.PublicBaseURL != "" {
		origins = append(origins, a.cfg.PublicBaseURL)
	}
	if strings.EqualFold(a.cfg.Env, "development") {
		origins = append(origins, devCORSOriginLocalhost)
	}
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func (a *App) csrfMiddleware() gin.HandlerFunc {
	protect := csrf.Protect(
		[]byte(a.cfg.CSRFAuthKey),
		csrf.Secure(strings.EqualFold(a.cfg.Env, "production")),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.log.Warn("csrf validation failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			http.Error(w, "invalid csrf token", http.StatusForbidden)
		})),
	)
	return func(c *gin.Context) {
		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func writeAPIError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Code, "message": apiErr.Message})
		return
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		status := gwErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": "backend_error", "message": gwErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
}
