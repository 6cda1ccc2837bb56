package services

import (
	"fmt"
	"time"

	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/config"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/bobasi/bursary/internal/pkg/filestorage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Clock returns the current time. Services take one so tests can pin dates.
type Clock func() time.Time

// BursarySettings are the fund-wide rules applied to submissions and disbursements
type BursarySettings struct {
	ApplicationPrefix    string
	DisbursementPrefix   string
	FinancialYear        string
	MaxAmount            decimal.Decimal
	NumberAttempts       int
	ReferenceAttempts    int
	AllowedExtensions    []string
	DefaultStaffPassword string
}

// DefaultBursarySettings returns the settings used when no configuration is supplied
func DefaultBursarySettings() BursarySettings {
	return BursarySettings{
		ApplicationPrefix:    "BOB",
		DisbursementPrefix:   "BOB-DISB",
		FinancialYear:        "2025/2026",
		MaxAmount:            decimal.Zero,
		NumberAttempts:       5,
		ReferenceAttempts:    3,
		AllowedExtensions:    []string{"pdf", "png", "jpg", "jpeg", "doc", "docx"},
		DefaultStaffPassword: "Admin@1234",
	}
}

// NewBursarySettings builds the settings from the loaded configuration
func NewBursarySettings(cfg *config.Config) (BursarySettings, error) {
	maxAmount, err := cfg.MaxRequestedAmount()
	if err != nil {
		return BursarySettings{}, fmt.Errorf("invalid bursary max amount: %w", err)
	}
	settings := DefaultBursarySettings()
	settings.ApplicationPrefix = cfg.Bursary.ApplicationPrefix
	settings.DisbursementPrefix = cfg.Bursary.DisbursementPrefix
	settings.FinancialYear = cfg.Bursary.FinancialYear
	settings.MaxAmount = maxAmount
	settings.NumberAttempts = cfg.Bursary.NumberAttempts
	settings.AllowedExtensions = cfg.Storage.AllowedExtensions
	settings.DefaultStaffPassword = cfg.Bursary.DefaultStaffPassword
	return settings, nil
}

// Dependencies groups what every service needs
type Dependencies struct {
	Repos    *repositories.Repositories
	Tx       repositories.TxManager
	JWT      *jwtauth.JWTService
	Storage  filestorage.FileStorage
	Settings BursarySettings
	Clock    Clock
	Logger   zerolog.Logger
}

// Services holds all the service instances
type Services struct {
	Auth          *AuthService
	Applications  *ApplicationService
	Reviews       *ReviewService
	Disbursements *DisbursementService
	Notifications *NotificationService
	Documents     *DocumentService
	Stats         *StatsService
	Students      *StudentService
}

// NewServices wires every service over the same repositories and transaction manager
func NewServices(deps Dependencies) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Services{
		Auth:          NewAuthService(deps.Repos, deps.Tx, deps.JWT, deps.Clock, deps.Logger),
		Applications:  NewApplicationService(deps.Repos, deps.Tx, deps.Settings, deps.Clock, deps.Logger),
		Reviews:       NewReviewService(deps.Repos, deps.Tx, deps.Clock, deps.Logger),
		Disbursements: NewDisbursementService(deps.Repos, deps.Tx, deps.Settings, deps.Clock, deps.Logger),
		Notifications: NewNotificationService(deps.Repos, deps.Logger),
		Documents:     NewDocumentService(deps.Repos, deps.Storage, deps.Settings, deps.Clock, deps.Logger),
		Stats:         NewStatsService(deps.Repos, deps.Logger),
		Students:      NewStudentService(deps.Repos, deps.Logger),
	}
}
