package repositories

import (
	"context"
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories/user"
	"github.com/bobasi/bursary/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, at time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	// Delete removes the user and, through cascading ownership, its student
	// profile, applications, documents, disbursements, grants and notifications.
	Delete(ctx context.Context, id int64) error
}

// StudentRepository persists student profiles
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	UpdateAcademicInfo(ctx context.Context, id int64, institution, course, level string) error
	List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error)
}

// UserFilter narrows the account list
type UserFilter = user.Filter

// StudentFilter narrows the student list
type StudentFilter = user.StudentFilter

// ApplicationFilter narrows the staff application list
type ApplicationFilter struct {
	Status   models.ApplicationStatus
	Search   string
	Page     int
	PageSize int
}

// ApplicationRepository persists applications
type ApplicationRepository interface {
	// LockNumbering serializes application-number assignment until the
	// surrounding transaction ends.
	LockNumbering(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	// LastSequence returns the highest sequence among application numbers
	// starting with numberPrefix, or 0 when there are none.
	LastSequence(ctx context.Context, numberPrefix string) (int64, error)
	// Create inserts the application; a duplicate number yields ErrConflict.
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByNumber(ctx context.Context, number string) (*models.Application, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error)
	// UpdateDecision writes the status and decision fields of app.
	UpdateDecision(ctx context.Context, app *models.Application) error
	// CompareAndSetStatus moves the application from -> to and reports whether
	// a row changed.
	CompareAndSetStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, at time.Time) (bool, error)
	// MarkDisbursed moves an approved application to disbursed and reports
	// whether a row changed.
	MarkDisbursed(ctx context.Context, id int64, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
	// TotalsBySubCounty counts applications and sums approved amounts per
	// student sub-county. Sub-counties whose students have not applied are
	// listed with zero totals.
	TotalsBySubCounty(ctx context.Context) ([]models.GroupTotal, error)
	// TopInstitutions returns the limit institutions with the most applications.
	TopInstitutions(ctx context.Context, limit int) ([]models.GroupTotal, error)
}

// ReviewRepository persists committee reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Review, error)
}

// DisbursementFilter narrows the disbursement history
type DisbursementFilter struct {
	PaymentMethod models.PaymentMethod
	Search        string
	Page          int
	PageSize      int
}

// DisbursementRepository persists disbursements
type DisbursementRepository interface {
	// Create inserts the disbursement; a duplicate reference yields ErrConflict.
	Create(ctx context.Context, d *models.Disbursement) error
	List(ctx context.Context, filter DisbursementFilter) ([]*models.Disbursement, int64, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Disbursement, error)
	// Totals returns the number and sum of processed disbursements.
	Totals(ctx context.Context) (int64, decimal.Decimal, error)
}

// GrantFilter narrows the grant list
type GrantFilter struct {
	Status    models.GrantStatus
	StudentID int64
	Page      int
	PageSize  int
}

// GrantRepository persists grant records
type GrantRepository interface {
	Create(ctx context.Context, g *models.Grant) error
	List(ctx context.Context, filter GrantFilter) ([]*models.Grant, int64, error)
}

// NotificationRepository persists notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// CreateForRoles inserts one unread notification for every active user
	// holding one of roles, as a single statement.
	CreateForRoles(ctx context.Context, roles []models.RoleType, title, message string, kind models.NotificationType, at time.Time) (int64, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// DocumentRepository persists document metadata
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         UserRepository
	Students      StudentRepository
	Applications  ApplicationRepository
	Reviews       ReviewRepository
	Disbursements DisbursementRepository
	Grants        GrantRepository
	Notifications NotificationRepository
	Documents     DocumentRepository
}

// NewRepositories builds Postgres repositories over db
func NewRepositories(db db.DBTX) *Repositories {
	return &Repositories{
		Users:         user.NewRepository(db),
		Students:      user.NewStudentRepository(db),
		Applications:  NewApplicationRepository(db),
		Reviews:       NewReviewRepository(db),
		Disbursements: NewDisbursementRepository(db),
		Grants:        NewGrantRepository(db),
		Notifications: NewNotificationRepository(db),
		Documents:     NewDocumentRepository(db),
	}
}

// TxFn runs with repositories bound to one transaction
type TxFn func(ctx context.Context, repos *Repositories) error

// TxManager runs units of work atomically
type TxManager interface {
	WithinTransaction(ctx context.Context, fn TxFn) error
}

// PostgresTxManager runs units of work in a pgx transaction
type PostgresTxManager struct {
	starter db.TxStarter
}

// NewTxManager creates a PostgresTxManager opening transactions on starter,
// normally the connection pool
func NewTxManager(starter db.TxStarter) *PostgresTxManager {
	return &PostgresTxManager{starter: starter}
}

// WithinTransaction implements TxManager
func (m *PostgresTxManager) WithinTransaction(ctx context.Context, fn TxFn) error {
	return db.RunInTransaction(ctx, m.starter, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}
