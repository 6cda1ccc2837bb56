package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/shopspring/decimal"
)

type disbursementRepo struct{ s *Store }

func (r *disbursementRepo) Create(ctx context.Context, d *models.Disbursement) error {
	if err := r.s.fault("Disbursements.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.applications[d.ApplicationID]; !ok {
		return apperrors.NewNotFoundError("could not record disbursement")
	}
	for _, existing := range r.s.st.disbursements {
		if existing.ReferenceNumber == d.ReferenceNumber {
			return apperrors.NewConflictError("disbursement reference already used")
		}
	}
	d.ID = r.s.st.nextID()
	d.CreatedAt = r.s.now()
	stored := *d
	stored.ApplicationNumber = ""
	r.s.st.disbursements[d.ID] = stored
	return nil
}

func (st *state) withApplicationNumber(d models.Disbursement) *models.Disbursement {
	d.ApplicationNumber = st.applications[d.ApplicationID].ApplicationNumber
	return &d
}

func newestDisbursementFirst(a, b *models.Disbursement) int {
	if c := b.DisbursementDate.Compare(a.DisbursementDate); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r *disbursementRepo) List(ctx context.Context, filter repositories.DisbursementFilter) ([]*models.Disbursement, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(filter.Search)
	matched := []*models.Disbursement{}
	for _, d := range r.s.st.disbursements {
		if filter.PaymentMethod != "" && d.PaymentMethod != filter.PaymentMethod {
			continue
		}
		full := r.s.st.withApplicationNumber(d)
		if search != "" &&
			!strings.Contains(strings.ToLower(full.ReferenceNumber), search) &&
			!strings.Contains(strings.ToLower(full.ApplicationNumber), search) {
			continue
		}
		matched = append(matched, full)
	}
	slices.SortFunc(matched, newestDisbursementFirst)
	start, end := helpers.CalculateSliceIndices(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *disbursementRepo) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Disbursement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []*models.Disbursement{}
	for _, d := range r.s.st.disbursements {
		if d.ApplicationID == applicationID {
			items = append(items, r.s.st.withApplicationNumber(d))
		}
	}
	slices.SortFunc(items, newestDisbursementFirst)
	return items, nil
}

func (r *disbursementRepo) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	sum := decimal.Zero
	for _, d := range r.s.st.disbursements {
		if d.Status == models.DisbursementProcessed {
			count++
			sum = sum.Add(d.Amount)
		}
	}
	return count, sum, nil
}

type grantRepo struct{ s *Store }

func (r *grantRepo) Create(ctx context.Context, g *models.Grant) error {
	if err := r.s.fault("Grants.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.disbursements[g.DisbursementID]; !ok {
		return apperrors.NewNotFoundError("could not record grant")
	}
	g.ID = r.s.st.nextID()
	g.CreatedAt = r.s.now()
	r.s.st.grants[g.ID] = *g
	return nil
}

func (r *grantRepo) List(ctx context.Context, filter repositories.GrantFilter) ([]*models.Grant, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []*models.Grant{}
	for _, g := range r.s.st.grants {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.StudentID > 0 && g.StudentID != filter.StudentID {
			continue
		}
		matched = append(matched, &g)
	}
	slices.SortFunc(matched, func(a, b *models.Grant) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	start, end := helpers.CalculateSliceIndices(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := r.s.fault("Notifications.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[n.UserID]; !ok {
		return apperrors.NewNotFoundError("could not create notification")
	}
	n.ID = r.s.st.nextID()
	r.s.st.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) CreateForRoles(ctx context.Context, roles []models.RoleType, title, message string, kind models.NotificationType, at time.Time) (int64, error) {
	if err := r.s.fault("Notifications.CreateForRoles"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	recipients := []int64{}
	for _, u := range r.s.st.users {
		if u.IsActive() && slices.Contains(roles, u.Role) {
			recipients = append(recipients, u.ID)
		}
	}
	slices.Sort(recipients)
	for _, userID := range recipients {
		id := r.s.st.nextID()
		r.s.st.notifications[id] = models.Notification{
			ID:        id,
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      kind,
			CreatedAt: at,
		}
	}
	return int64(len(recipients)), nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []*models.Notification{}
	for _, n := range r.s.st.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		items = append(items, &n)
	}
	slices.SortFunc(items, func(a, b *models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, item := range r.s.st.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for id, item := range r.s.st.notifications {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			r.s.st.notifications[id] = item
			updated++
		}
	}
	return updated, nil
}
