package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/admission"
	"github.com/ttifoundation/admission-backend/internal/directory"
	"github.com/ttifoundation/admission-backend/internal/docstore"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/mailer"
	"github.com/ttifoundation/admission-backend/internal/models"
)

// DocumentField names one of the six upload slots on the admission form.
var DocumentFields = []string{
	"passport_photo", "adhar", "UDID", "disability", "Degree_memo", "doctor",
}

// DocumentFile is one uploaded document ready to stream to the store.
type DocumentFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// SubmitInput is the normalized admission form.
type SubmitInput struct {
	Name                   string
	Email                  string
	Mobile                 string
	DOB                    string
	Gender                 string
	State                  string
	District               string
	Course                 string
	DisabilityStatus       string
	Education              string
	EnrolledCourse         string
	BasicComputerKnowledge string
	BasicEnglishSkills     string
	ScreenReaderKnowledge  string
	Declaration            bool

	// Documents is keyed by DocumentFields names; absent slots stay empty.
	Documents map[string]DocumentFile
}

// AdmissionService executes the workflow transitions. Every transition is an
// authorized find-and-update followed by best-effort side effects (feed
// entries, email); side effects run only after the state change committed
// and their failures never propagate.
type AdmissionService struct {
	db        *gorm.DB
	docs      docstore.DocumentStore
	notifier  mailer.Notifier
	directory directory.CourseDirectory
	feed      *NotificationService
	headEmail string
}

func NewAdmissionService(
	db *gorm.DB,
	docs docstore.DocumentStore,
	notifier mailer.Notifier,
	dir directory.CourseDirectory,
	feed *NotificationService,
	headEmail string,
) *AdmissionService {
	return &AdmissionService{
		db:        db,
		docs:      docs,
		notifier:  notifier,
		directory: dir,
		feed:      feed,
		headEmail: headEmail,
	}
}

// Submit creates a new application in SUBMITTED state. Documents upload
// concurrently and any upload failure fails the whole submission; the
// unique email/mobile constraint is enforced atomically by the store.
func (s *AdmissionService) Submit(ctx context.Context, in *SubmitInput) (*models.Admission, error) {
	rec := models.Admission{
		ID:                     uuid.New(),
		Name:                   strings.TrimSpace(in.Name),
		Email:                  strings.ToLower(strings.TrimSpace(in.Email)),
		Mobile:                 strings.TrimSpace(in.Mobile),
		DOB:                    strings.TrimSpace(in.DOB),
		Gender:                 strings.TrimSpace(in.Gender),
		State:                  strings.TrimSpace(in.State),
		District:               strings.TrimSpace(in.District),
		Course:                 strings.TrimSpace(in.Course),
		DisabilityStatus:       strings.TrimSpace(in.DisabilityStatus),
		Education:              strings.TrimSpace(in.Education),
		EnrolledCourse:         strings.TrimSpace(in.EnrolledCourse),
		BasicComputerKnowledge: strings.TrimSpace(in.BasicComputerKnowledge),
		BasicEnglishSkills:     strings.TrimSpace(in.BasicEnglishSkills),
		ScreenReaderKnowledge:  strings.TrimSpace(in.ScreenReaderKnowledge),
		Declaration:            in.Declaration,
		Status:                 string(admission.StatusSubmitted),
		DecisionDone:           false,
	}

	if missing := missingRequired(&rec); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !rec.Declaration {
		return nil, fmt.Errorf("%w: please accept declaration", ErrValidation)
	}
	if !validMobile(rec.Mobile) {
		return nil, fmt.Errorf("%w: mobile must be exactly 10 digits", ErrValidation)
	}

	urls, err := s.uploadDocuments(ctx, rec.Email, in.Documents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	rec.PassportPhoto = urls["passport_photo"]
	rec.Aadhaar = urls["adhar"]
	rec.UDID = urls["UDID"]
	rec.DisabilityCert = urls["disability"]
	rec.DegreeMemo = urls["Degree_memo"]
	rec.DoctorCert = urls["doctor"]

	if err := s.db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you have already submitted with this email or mobile", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to save admission: %w", err)
	}

	s.runEffects("submit",
		func() {
			s.feed.Append(models.Notification{
				Title:            "New admission submitted",
				Message:          fmt.Sprintf("%s applied for %s", rec.Name, rec.Course),
				Type:             "SUBMITTED",
				RelatedAdmission: &rec.ID,
				TargetRole:       models.TargetHead,
			})
		},
		func() {
			mails := []mailer.Mail{mailer.SubmissionToApplicant(&rec, s.headEmail)}
			if s.headEmail != "" {
				head := mailer.SubmissionToHead(&rec)
				head.To = s.headEmail
				mails = append(mails, head)
			}
			mailer.SendBulk(s.notifier, mails)
		},
	)

	return &rec, nil
}

func (s *AdmissionService) uploadDocuments(ctx context.Context, email string, docs map[string]DocumentFile) (map[string]string, error) {
	urls := make([]string, len(DocumentFields))
	g, ctx := errgroup.WithContext(ctx)

	for i, field := range DocumentFields {
		doc, ok := docs[field]
		if !ok {
			continue
		}
		i, field := i, field
		g.Go(func() error {
			r, err := doc.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", field, err)
			}
			defer r.Close()
			url, err := s.docs.Upload(ctx, email, doc.Filename, doc.ContentType, r, doc.Size)
			if err != nil {
				return fmt.Errorf("upload %s: %w", field, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(DocumentFields))
	for i, field := range DocumentFields {
		out[field] = urls[i]
	}
	return out, nil
}

// ListByStatuses returns the actor's visible admissions in any of the given
// statuses, most recently updated first.
func (s *AdmissionService) ListByStatuses(a actor.Actor, statuses ...admission.Status) ([]models.Admission, error) {
	raw := make([]string, len(statuses))
	for i, st := range statuses {
		raw[i] = string(st)
	}

	var records []models.Admission
	err := s.db.Scopes(a.Scope()).
		Where("status IN ?", raw).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	return records, nil
}

// Dashboard returns every visible student plus per-status counts.
func (s *AdmissionService) Dashboard(a actor.Actor) (*dto.DashboardResponse, error) {
	var students []models.Admission
	if err := s.db.Scopes(a.Scope()).
		Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := s.db.Model(&models.Admission{}).Scopes(a.Scope()).
		Select("status, count(*) as count").Group("status").Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count admissions: %w", err)
	}

	statusCounts := make(map[string]int64, len(counts))
	for _, c := range counts {
		statusCounts[c.Status] = c.Count
	}
	return &dto.DashboardResponse{Students: students, StatusCounts: statusCounts}, nil
}

// requireHead rejects non-HEAD actors. The head-only routes are gated by
// middleware as well; the service does not rely on that.
func requireHead(a actor.Actor) error {
	if a.Role != actor.RoleHead {
		return fmt.Errorf("%w: head role required", ErrForbidden)
	}
	return nil
}

// HeadApprove moves a record to HEAD_ACCEPTED and invites the course
// teachers to schedule the interview.
func (s *AdmissionService) HeadApprove(a actor.Actor, id uuid.UUID) (*models.Admission, error) {
	if err := requireHead(a); err != nil {
		return nil, err
	}
	rec, err := s.applyTransition(a, id, admission.StatusHeadAccepted, func(rec *models.Admission) {
		rec.Status = string(admission.StatusHeadAccepted)
		rec.DecisionDone = false
		rec.HeadActionBy = &a.ID
	})
	if err != nil {
		return nil, err
	}

	s.runEffects("head-approve",
		func() {
			s.feed.Append(s.eventFrom(a, rec, "HEAD_ACCEPTED",
				"Candidate approved by head",
				fmt.Sprintf("%s is ready for interview scheduling (%s)", rec.Name, rec.Course),
				models.TargetTeacher, rec.Course))
		},
		func() {
			teachers := s.directory.TeachersFor(rec.Course)
			mails := make([]mailer.Mail, 0, len(teachers))
			for _, t := range teachers {
				m := mailer.HeadAcceptedToTeacher(rec, t.Name)
				m.To = t.Email
				mails = append(mails, m)
			}
			mailer.SendBulk(s.notifier, mails)
		},
	)
	return rec, nil
}

// HeadReject is a terminal first-stage rejection.
func (s *AdmissionService) HeadReject(a actor.Actor, id uuid.UUID) (*models.Admission, error) {
	if err := requireHead(a); err != nil {
		return nil, err
	}
	rec, err := s.applyTransition(a, id, admission.StatusHeadRejected, func(rec *models.Admission) {
		rec.Status = string(admission.StatusHeadRejected)
		rec.DecisionDone = true
		rec.HeadActionBy = &a.ID
	})
	if err != nil {
		return nil, err
	}

	s.runEffects("head-reject",
		func() {
			s.feed.Append(s.eventFrom(a, rec, "HEAD_REJECTED",
				"Application rejected by head",
				fmt.Sprintf("%s (%s) was rejected at the first stage", rec.Name, rec.Course),
				models.TargetHead, ""))
		},
		func() {
			mailer.SendBulk(s.notifier, []mailer.Mail{mailer.HeadRejectedToApplicant(rec)})
		},
	)
	return rec, nil
}

// HeadDelete removes the record permanently. Only the feed event remains as
// a trace.
func (s *AdmissionService) HeadDelete(a actor.Actor, id uuid.UUID, reason string) (*models.Admission, error) {
	if err := requireHead(a); err != nil {
		return nil, err
	}

	var rec models.Admission
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("%w: admission", ErrNotFound)
	}

	if err := s.db.Delete(&models.Admission{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete admission: %w", err)
	}
	rec.DeletedReason = strings.TrimSpace(reason)

	msg := fmt.Sprintf("%s (%s) was removed", rec.Name, rec.Course)
	if rec.DeletedReason != "" {
		msg += ": " + rec.DeletedReason
	}
	s.runEffects("head-delete", func() {
		s.feed.Append(s.eventFrom(a, &rec, "DELETED", "Admission deleted", msg, models.TargetHead, ""))
	})
	return &rec, nil
}

// ScheduleInterview records the interview details and moves the record to
// INTERVIEW_SCHEDULED. Teachers can only reach records of their own course.
func (s *AdmissionService) ScheduleInterview(a actor.Actor, id uuid.UUID, req *dto.ScheduleInterviewRequest) (*models.Admission, error) {
	iv := models.Interview{
		Date:     strings.TrimSpace(req.Date),
		Time:     strings.TrimSpace(req.Time),
		Platform: strings.TrimSpace(req.Platform),
		Link:     strings.TrimSpace(req.Link),
	}
	if iv.Date == "" || iv.Time == "" || iv.Platform == "" || iv.Link == "" {
		return nil, fmt.Errorf("%w: date, time, platform and link are required", ErrValidation)
	}

	rec, err := s.applyTransition(a, id, admission.StatusInterviewScheduled, func(rec *models.Admission) {
		rec.Interview = iv
		rec.Status = string(admission.StatusInterviewScheduled)
		rec.TeacherActionBy = &a.ID
	})
	if err != nil {
		return nil, err
	}

	s.runEffects("schedule-interview",
		func() {
			s.feed.Append(s.eventFrom(a, rec, "INTERVIEW_SCHEDULED",
				"Interview scheduled",
				fmt.Sprintf("%s: %s %s on %s", rec.Name, iv.Date, iv.Time, iv.Platform),
				models.TargetAll, rec.Course))
		},
		func() {
			mailer.SendBulk(s.notifier, []mailer.Mail{mailer.InterviewScheduledToApplicant(rec)})
		},
	)
	return rec, nil
}

// FinalApprove selects the candidate after the interview.
func (s *AdmissionService) FinalApprove(a actor.Actor, id uuid.UUID) (*models.Admission, error) {
	rec, err := s.applyTransition(a, id, admission.StatusSelected, func(rec *models.Admission) {
		rec.Status = string(admission.StatusSelected)
		rec.DecisionDone = true
		rec.TeacherActionBy = &a.ID
	})
	if err != nil {
		return nil, err
	}

	s.runEffects("final-approve",
		func() {
			s.feed.Append(s.eventFrom(a, rec, "SELECTED",
				"Candidate selected",
				fmt.Sprintf("%s was selected for %s", rec.Name, rec.Course),
				models.TargetAll, rec.Course))
		},
		func() {
			mailer.SendBulk(s.notifier, []mailer.Mail{mailer.FinalSelectedToApplicant(rec)})
		},
	)
	return rec, nil
}

// FinalReject rejects the candidate after the interview.
func (s *AdmissionService) FinalReject(a actor.Actor, id uuid.UUID) (*models.Admission, error) {
	rec, err := s.applyTransition(a, id, admission.StatusRejected, func(rec *models.Admission) {
		rec.Status = string(admission.StatusRejected)
		rec.DecisionDone = true
		rec.TeacherActionBy = &a.ID
	})
	if err != nil {
		return nil, err
	}

	s.runEffects("final-reject",
		func() {
			s.feed.Append(s.eventFrom(a, rec, "REJECTED",
				"Candidate rejected",
				fmt.Sprintf("%s was rejected for %s after interview", rec.Name, rec.Course),
				models.TargetAll, rec.Course))
		},
		func() {
			mailer.SendBulk(s.notifier, []mailer.Mail{mailer.FinalRejectedToApplicant(rec)})
		},
	)
	return rec, nil
}

// applyTransition looks the record up through the actor's course scope (so
// out-of-scope ids read as not found), mutates it and saves. The record's
// current status deliberately does not gate the update; off-graph moves are
// only logged.
func (s *AdmissionService) applyTransition(a actor.Actor, id uuid.UUID, to admission.Status, mutate func(*models.Admission)) (*models.Admission, error) {
	var rec models.Admission
	if err := s.db.Scopes(a.Scope()).First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("%w: admission", ErrNotFound)
	}

	if from, err := admission.ParseStatus(rec.Status); err == nil && !admission.CanFollow(from, to) {
		slog.Warn("off-graph admission transition",
			"admission_id", rec.ID.String(), "from", rec.Status, "to", string(to), "actor_id", a.ID.String())
	}

	mutate(&rec)
	if err := s.db.Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to update admission: %w", err)
	}
	return &rec, nil
}

func (s *AdmissionService) eventFrom(a actor.Actor, rec *models.Admission, typ, title, msg, targetRole, targetCourse string) models.Notification {
	related := rec.ID
	return models.Notification{
		Title:            title,
		Message:          msg,
		Type:             typ,
		RelatedAdmission: &related,
		TargetRole:       targetRole,
		TargetCourse:     targetCourse,
		CreatedByID:      &a.ID,
		CreatedByName:    a.Name,
		CreatedByRole:    string(a.Role),
	}
}

// runEffects executes the after-commit side effects of a transition with
// all-failures-isolated semantics: a panicking effect is recovered and
// logged, and never reaches the caller.
func (s *AdmissionService) runEffects(action string, effects ...func()) {
	for _, effect := range effects {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("transition side effect panicked", "action", action, "panic", fmt.Sprint(r))
				}
			}()
			effect()
		}()
	}
}

func missingRequired(rec *models.Admission) []string {
	required := map[string]string{
		"name":     rec.Name,
		"email":    rec.Email,
		"mobile":   rec.Mobile,
		"dob":      rec.DOB,
		"gender":   rec.Gender,
		"state":    rec.State,
		"district": rec.District,
		"course":   rec.Course,
	}
	var missing []string
	for _, field := range []string{"name", "email", "mobile", "dob", "gender", "state", "district", "course"} {
		if required[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func validMobile(m string) bool {
	if len(m) != 10 {
		return false
	}
	for _, r := range m {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
