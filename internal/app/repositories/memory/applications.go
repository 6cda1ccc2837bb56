package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/shopspring/decimal"
)

type applicationRepo struct{ s *Store }

// LockNumbering has nothing to lock: transactions are already serialized.
func (r *applicationRepo) LockNumbering(ctx context.Context) error {
	return r.s.fault("Applications.LockNumbering")
}

func (r *applicationRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.st.applications)), nil
}

func (r *applicationRepo) LastSequence(ctx context.Context, numberPrefix string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last int64
	for _, app := range r.s.st.applications {
		rest, ok := strings.CutPrefix(app.ApplicationNumber, numberPrefix)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(rest, 10, 64); err == nil && n > last {
			last = n
		}
	}
	return last, nil
}

func (r *applicationRepo) Create(ctx context.Context, app *models.Application) error {
	if err := r.s.fault("Applications.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.students[app.StudentID]; !ok {
		return apperrors.NewNotFoundError("could not create application")
	}
	for _, existing := range r.s.st.applications {
		if existing.ApplicationNumber == app.ApplicationNumber {
			return apperrors.NewConflictError("application number already assigned")
		}
	}
	if app.Siblings == nil {
		app.Siblings = []models.Sibling{}
	}
	now := r.s.now()
	app.ID = r.s.st.nextID()
	app.CreatedAt, app.UpdatedAt = now, now
	stored := *app
	stored.Student = nil
	r.s.st.applications[app.ID] = stored
	return nil
}

// withStudent returns a copy of app carrying its owner's name, like the SQL join
func (st *state) withStudent(app models.Application) *models.Application {
	student := st.students[app.StudentID]
	app.Student = &models.Student{ID: app.StudentID, FullName: student.FullName}
	return &app
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.st.applications[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("application not found")
	}
	return r.s.st.withStudent(app), nil
}

func (r *applicationRepo) GetByNumber(ctx context.Context, number string) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, app := range r.s.st.applications {
		if app.ApplicationNumber == number {
			return r.s.st.withStudent(app), nil
		}
	}
	return nil, apperrors.NewNotFoundError("application not found")
}

func newestApplicationFirst(a, b *models.Application) int {
	if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r *applicationRepo) ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	apps := []*models.Application{}
	for _, app := range r.s.st.applications {
		if app.StudentID == studentID {
			apps = append(apps, r.s.st.withStudent(app))
		}
	}
	slices.SortFunc(apps, newestApplicationFirst)
	return apps, nil
}

func (r *applicationRepo) List(ctx context.Context, filter repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matched := []*models.Application{}
	for _, app := range r.s.st.applications {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		full := r.s.st.withStudent(app)
		if search != "" &&
			!strings.Contains(strings.ToLower(full.ApplicationNumber), search) &&
			!strings.Contains(strings.ToLower(full.Student.FullName), search) &&
			!strings.Contains(strings.ToLower(full.Institution), search) {
			continue
		}
		matched = append(matched, full)
	}
	slices.SortFunc(matched, newestApplicationFirst)

	start, end := helpers.CalculateSliceIndices(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *applicationRepo) UpdateDecision(ctx context.Context, app *models.Application) error {
	if err := r.s.fault("Applications.UpdateDecision"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.st.applications[app.ID]
	if !ok {
		return apperrors.NewNotFoundError("application not found")
	}
	// Mirrors the table's decision-field CHECK constraints.
	hasReason := app.RejectionReason != nil && *app.RejectionReason != ""
	if (app.ApprovedAmount != nil) != app.Status.HoldsApprovedAmount() || hasReason != (app.Status == models.StatusRejected) {
		return apperrors.NewInvalidInputError("could not update application")
	}
	current.Status = app.Status
	current.ApprovedAmount = app.ApprovedAmount
	current.RejectionReason = app.RejectionReason
	current.CommitteeComments = app.CommitteeComments
	current.ReviewedBy = app.ReviewedBy
	current.ReviewedAt = app.ReviewedAt
	current.ApprovedAt = app.ApprovedAt
	current.DisbursedAt = app.DisbursedAt
	current.UpdatedAt = app.UpdatedAt
	r.s.st.applications[app.ID] = current
	return nil
}

func (r *applicationRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, at time.Time) (bool, error) {
	if err := r.s.fault("Applications.CompareAndSetStatus"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.st.applications[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	app.UpdatedAt = at
	r.s.st.applications[id] = app
	return true, nil
}

func (r *applicationRepo) MarkDisbursed(ctx context.Context, id int64, at time.Time) (bool, error) {
	if err := r.s.fault("Applications.MarkDisbursed"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.st.applications[id]
	if !ok || app.Status != models.StatusApproved {
		return false, nil
	}
	app.Status = models.StatusDisbursed
	app.DisbursedAt = &at
	app.UpdatedAt = at
	r.s.st.applications[id] = app
	return true, nil
}

func (r *applicationRepo) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[models.ApplicationStatus]int64, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		counts[s] = 0
	}
	for _, app := range r.s.st.applications {
		counts[app.Status]++
	}
	return counts, nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	if err := r.s.fault("Reviews.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.applications[review.ApplicationID]; !ok {
		return apperrors.NewNotFoundError("could not record review")
	}
	if _, ok := r.s.st.users[review.ReviewerID]; !ok {
		return apperrors.NewNotFoundError("could not record review")
	}
	review.ID = r.s.st.nextID()
	stored := *review
	stored.ReviewerName = ""
	r.s.st.reviews[review.ID] = stored
	return nil
}

func (r *reviewRepo) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reviews := []*models.Review{}
	for _, rv := range r.s.st.reviews {
		if rv.ApplicationID == applicationID {
			rv.ReviewerName = r.s.st.users[rv.ReviewerID].Name
			reviews = append(reviews, &rv)
		}
	}
	slices.SortFunc(reviews, func(a, b *models.Review) int {
		if c := b.ReviewDate.Compare(a.ReviewDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return reviews, nil
}

type documentRepo struct{ s *Store }

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	if err := r.s.fault("Documents.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.applications[doc.ApplicationID]; !ok {
		return apperrors.NewNotFoundError("could not save document")
	}
	doc.ID = r.s.st.nextID()
	r.s.st.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	docs := []*models.Document{}
	for _, d := range r.s.st.documents {
		if d.ApplicationID == applicationID {
			docs = append(docs, &d)
		}
	}
	slices.SortFunc(docs, func(a, b *models.Document) int {
		if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return docs, nil
}

func (r *applicationRepo) TotalsBySubCounty(ctx context.Context) ([]models.GroupTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	groups := map[string]*models.GroupTotal{}
	for _, student := range r.s.st.students {
		name := subCountyOf(student)
		if groups[name] == nil {
			groups[name] = &models.GroupTotal{Name: name, ApprovedTotal: decimal.Zero}
		}
	}
	for _, app := range r.s.st.applications {
		addToGroup(groups[subCountyOf(r.s.st.students[app.StudentID])], app)
	}
	return sortedGroups(groups, 0), nil
}

func (r *applicationRepo) TopInstitutions(ctx context.Context, limit int) ([]models.GroupTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	groups := map[string]*models.GroupTotal{}
	for _, app := range r.s.st.applications {
		if groups[app.Institution] == nil {
			groups[app.Institution] = &models.GroupTotal{Name: app.Institution, ApprovedTotal: decimal.Zero}
		}
		addToGroup(groups[app.Institution], app)
	}
	return sortedGroups(groups, limit), nil
}

func subCountyOf(s models.Student) string {
	if s.SubCounty == nil {
		return ""
	}
	return *s.SubCounty
}

func addToGroup(g *models.GroupTotal, app models.Application) {
	g.Applications++
	if app.ApprovedAmount != nil {
		g.ApprovedTotal = g.ApprovedTotal.Add(*app.ApprovedAmount)
	}
}

// sortedGroups orders by application count, then name, keeping at most
// limit rows when limit is positive
func sortedGroups(groups map[string]*models.GroupTotal, limit int) []models.GroupTotal {
	totals := make([]models.GroupTotal, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, *g)
	}
	slices.SortFunc(totals, func(a, b models.GroupTotal) int {
		if c := cmp.Compare(b.Applications, a.Applications); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}
