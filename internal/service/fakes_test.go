package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// fakeProjectRepo serves projects from memory and records completions per
// user.
type fakeProjectRepo struct {
	projects  map[uint]models.Project
	completed map[uint][]uint
}

func (f *fakeProjectRepo) List(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, error) {
	projects := make([]models.Project, 0, len(f.projects))
	for _, project := range f.projects {
		projects = append(projects, project)
	}
	return projects, nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id uint) (models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if f.projects == nil {
		f.projects = map[uint]models.Project{}
	}
	project.ID = uint(len(f.projects) + 1)
	f.projects[project.ID] = *project
	return nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, project *models.Project) error {
	f.projects[project.ID] = *project
	return nil
}

func (f *fakeProjectRepo) SetUnlocked(ctx context.Context, id uint, unlocked bool) error {
	project := f.projects[id]
	project.IsUnlocked = unlocked
	f.projects[id] = project
	return nil
}

func (f *fakeProjectRepo) ListAutoUnlockCandidates(ctx context.Context, now time.Time) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeProjectRepo) CompletedProjectIDs(ctx context.Context, userID uint) ([]uint, error) {
	return f.completed[userID], nil
}

// fakeSubmissionRepo keeps submissions in memory and enforces the one
// submission per (project, user) rule the way the unique index would.
type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	findings    []models.SimilarityFinding
	nextID      uint
	updateCalls int
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submissions := make([]models.Submission, 0, len(f.submissions))
	for _, submission := range f.submissions {
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByProject(ctx context.Context, projectID uint) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if submission.ProjectID == projectID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) CreateWithFindings(ctx context.Context, submission *models.Submission, findings []models.SimilarityFinding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.submissions {
		if existing.ProjectID == submission.ProjectID && existing.UserID == submission.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if f.submissions == nil {
		f.submissions = map[uint]models.Submission{}
	}
	f.nextID++
	submission.ID = f.nextID
	f.submissions[submission.ID] = *submission
	f.findings = append(f.findings, findings...)
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.submissions, id)
	return nil
}

func (f *fakeSubmissionRepo) ListForStandings(ctx context.Context, filter repository.StandingsFilter) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if !submission.CountsForLeaderboard() {
			continue
		}
		if filter.Since != nil && submission.SubmittedAt.Before(*filter.Since) {
			continue
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// fakeSimilarityRepo records findings that carry no submission row.
type fakeSimilarityRepo struct {
	mu       sync.Mutex
	findings []models.SimilarityFinding
}

func (f *fakeSimilarityRepo) Record(ctx context.Context, findings []models.SimilarityFinding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findings = append(f.findings, findings...)
	return nil
}

func (f *fakeSimilarityRepo) ListBySubmission(ctx context.Context, submissionID uint) ([]models.SimilarityFinding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.SimilarityFinding
	for _, finding := range f.findings {
		if finding.PeerSubmissionID == submissionID ||
			(finding.SubmissionID != nil && *finding.SubmissionID == submissionID) {
			matched = append(matched, finding)
		}
	}
	return matched, nil
}

// fakePaymentRepo implements the payment store with the same CAS semantics
// as the real SettleIfPending.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]models.LateFeePayment
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *models.LateFeePayment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payments == nil {
		f.payments = map[string]models.LateFeePayment{}
	}
	payment.ID = uint(len(f.payments) + 1)
	f.payments[payment.Reference] = *payment
	return nil
}

func (f *fakePaymentRepo) GetByReference(ctx context.Context, reference string) (models.LateFeePayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[reference]
	if !ok {
		return models.LateFeePayment{}, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (f *fakePaymentRepo) SettleIfPending(ctx context.Context, reference, status string, payload datatypes.JSONMap, paidAt *time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[reference]
	if !ok || payment.Status != models.PaymentStatusPending {
		return false, nil
	}
	payment.Status = status
	payment.GatewayPayload = payload
	payment.PaidAt = paidAt
	f.payments[reference] = payment
	return true, nil
}

func (f *fakePaymentRepo) HasSuccessfulPayment(ctx context.Context, userID, projectID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.UserID == userID && payment.ProjectID == projectID && payment.Status == models.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentRepo) ListByUser(ctx context.Context, userID uint) ([]models.LateFeePayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []models.LateFeePayment
	for _, payment := range f.payments {
		if payment.UserID == userID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

// fakeUserRepo serves users from a fixed map.
type fakeUserRepo struct {
	users map[uint]models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// fakeNotifier records notifications instead of publishing them.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) Notify(ctx context.Context, recipient, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recipient+": "+subject)
}
