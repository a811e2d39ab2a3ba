package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/i18n"
	"github.com/terraincognita07/waterline/internal/metrics"
	"github.com/terraincognita07/waterline/internal/photo"
	"github.com/terraincognita07/waterline/internal/reminders"
	"github.com/terraincognita07/waterline/internal/services"
	"go.uber.org/zap"
)

const (
	installationTokenTTL     = 365 * 24 * time.Hour
	installationTokenRefresh = 30 * 24 * time.Hour
	defaultRemindersPerMin   = 3
	// ipGenerationFactor scales the per-installation generation rate into the
	// per-client-IP budget shared by every installation behind one address.
	ipGenerationFactor = 5
)

var presetAmounts = []int{250, 500, 750}

type Handler struct {
	registry      *hydration.Registry
	coordinator   *reminders.Coordinator
	limiter       *generationLimiter
	ipLimiter     *generationLimiter
	exports       *services.ExportService
	i18n          *i18n.Manager
	metrics       *metrics.Metrics
	secretKey     []byte
	location      *time.Location
	cookieSecure  bool
	maxPhotoBytes int
	clock         func() time.Time
	logger        *zap.Logger
}

type Options struct {
	SecretKey          string
	Location           *time.Location
	CookieSecure       bool
	RemindersPerMinute int
	MaxPhotoBytes      int
	Clock              func() time.Time
	Logger             *zap.Logger
	Metrics            *metrics.Metrics
}

type installationClaims struct {
	InstallationID string `json:"iid"`
	jwt.RegisteredClaims
}

func NewHandler(registry *hydration.Registry, coordinator *reminders.Coordinator, i18nManager *i18n.Manager, options Options) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("hydration registry is required")
	}
	if coordinator == nil {
		return nil, errors.New("reminder coordinator is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.RemindersPerMinute <= 0 {
		options.RemindersPerMinute = defaultRemindersPerMin
	}
	if options.MaxPhotoBytes <= 0 {
		options.MaxPhotoBytes = photo.DefaultMaxBytes
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &Handler{
		registry:      registry,
		coordinator:   coordinator,
		limiter:       newGenerationLimiter(options.RemindersPerMinute),
		ipLimiter:     newGenerationLimiter(options.RemindersPerMinute * ipGenerationFactor),
		exports:       services.NewExportService(options.Location),
		i18n:          i18nManager,
		metrics:       options.Metrics,
		secretKey:     []byte(options.SecretKey),
		location:      options.Location,
		cookieSecure:  options.CookieSecure,
		maxPhotoBytes: options.MaxPhotoBytes,
		clock:         options.Clock,
		logger:        options.Logger,
	}, nil
}

func (handler *Handler) now() time.Time {
	return handler.clock().In(handler.location)
}
