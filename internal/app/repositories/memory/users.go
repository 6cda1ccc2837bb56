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
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.s.fault("Users.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range r.s.st.users {
		if existing.Email == user.Email {
			return apperrors.NewConflictError("email already registered")
		}
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	now := r.s.now()
	user.ID = r.s.st.nextID()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.st.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r *userRepo) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	u.Status = status
	u.UpdatedAt = r.s.now()
	r.s.st.users[id] = u
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, at time.Time) error {
	if err := r.s.fault("Users.UpdatePassword"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	u.Password = passwordHash
	u.UpdatedAt = at
	r.s.st.users[id] = u
	return nil
}

func (r *userRepo) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []*models.User{}
	for _, u := range r.s.st.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		matched = append(matched, &u)
	}
	slices.SortFunc(matched, func(a, b *models.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	start, end := helpers.CalculateSliceIndices(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	u.LastLoginAt = &at
	r.s.st.users[id] = u
	return nil
}

// Delete mirrors the ON DELETE rules of the schema: owned rows cascade, while
// reviews and disbursements recorded by the user block the delete.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	if err := r.s.fault("Users.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.st

	if _, ok := st.users[id]; !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	for _, rv := range st.reviews {
		if rv.ReviewerID == id {
			return apperrors.NewConflictError("user has recorded reviews or disbursements")
		}
	}
	for _, d := range st.disbursements {
		if d.FinanceOfficerID == id {
			return apperrors.NewConflictError("user has recorded reviews or disbursements")
		}
	}

	for sid, student := range st.students {
		if student.UserID == id {
			st.deleteStudent(sid)
		}
	}
	for nid, n := range st.notifications {
		if n.UserID == id {
			delete(st.notifications, nid)
		}
	}
	delete(st.users, id)
	return nil
}

func (st *state) deleteStudent(studentID int64) {
	for appID, app := range st.applications {
		if app.StudentID == studentID {
			st.deleteApplication(appID)
		}
	}
	for docID, d := range st.documents {
		if d.StudentID == studentID {
			delete(st.documents, docID)
		}
	}
	delete(st.students, studentID)
}

func (st *state) deleteApplication(appID int64) {
	for id, rv := range st.reviews {
		if rv.ApplicationID == appID {
			delete(st.reviews, id)
		}
	}
	for id, d := range st.disbursements {
		if d.ApplicationID == appID {
			delete(st.disbursements, id)
		}
	}
	for id, g := range st.grants {
		if g.ApplicationID == appID {
			delete(st.grants, id)
		}
	}
	for id, d := range st.documents {
		if d.ApplicationID == appID {
			delete(st.documents, id)
		}
	}
	delete(st.applications, appID)
}

type studentRepo struct{ s *Store }

func (r *studentRepo) Create(ctx context.Context, student *models.Student) error {
	if err := r.s.fault("Students.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[student.UserID]; !ok {
		return apperrors.NewNotFoundError("could not create student profile")
	}
	for _, existing := range r.s.st.students {
		if existing.UserID == student.UserID {
			return apperrors.NewConflictError("student profile already exists")
		}
	}
	now := r.s.now()
	student.ID = r.s.st.nextID()
	student.CreatedAt, student.UpdatedAt = now, now
	r.s.st.students[student.ID] = *student
	return nil
}

func (r *studentRepo) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.st.students[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("student profile not found")
	}
	return &s, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.st.students {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, apperrors.NewNotFoundError("student profile not found")
}

func (r *studentRepo) List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(filter.Search)
	matched := []*models.Student{}
	for _, s := range r.s.st.students {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.FullName), search) &&
			!strings.Contains(strings.ToLower(s.Institution), search) &&
			(s.AdmissionNumber == nil || !strings.Contains(strings.ToLower(*s.AdmissionNumber), search)) {
			continue
		}
		matched = append(matched, &s)
	}
	slices.SortFunc(matched, func(a, b *models.Student) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	start, end := helpers.CalculateSliceIndices(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *studentRepo) UpdateAcademicInfo(ctx context.Context, id int64, institution, course, level string) error {
	if err := r.s.fault("Students.UpdateAcademicInfo"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.st.students[id]
	if !ok {
		return apperrors.NewNotFoundError("student profile not found")
	}
	s.Institution, s.Course, s.LevelOfStudy = institution, course, level
	s.UpdatedAt = r.s.now()
	r.s.st.students[id] = s
	return nil
}
