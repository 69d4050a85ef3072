package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	"github.com/noah-isme/class-enrollment-api/internal/scheduling"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
	"github.com/noah-isme/class-enrollment-api/pkg/export"
)

// Timetable export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type shiftBookProvider interface {
	Book(ctx context.Context, metrics *MetricsService) (*scheduling.ShiftBook, error)
}

type confirmedEnrollments interface {
	ListConfirmed(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error)
	Submit(ctx context.Context, studentID string, classIDs []string) ([]models.Enrollment, error)
}

// PlannerConfig tunes the planner.
type PlannerConfig struct {
	PlanTTL             time.Duration
	RejectEmptySchedule bool
	MaxStagedClasses    int
	TimetableTitle      string
}

// ClassRequest identifies the class a plan operation targets.
type ClassRequest struct {
	ClassID string `json:"class_id" validate:"required,max=64"`
}

// TimetableExport is a rendered timetable file.
type TimetableExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// PlannerService runs the enrollment staging workflow: it merges confirmed
// enrollments with the student's staging plan, checks candidates against the
// scheduling rules and submits staged classes in one batch.
type PlannerService struct {
	students    studentReader
	shifts      shiftBookProvider
	classes     classLookup
	enrollments confirmedEnrollments
	plans       PlanStore
	metrics     *MetricsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         PlannerConfig
	locks       *studentLocks
	now         func() time.Time
	newID       func() string
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	students studentReader,
	shifts shiftBookProvider,
	classes classLookup,
	enrollments confirmedEnrollments,
	plans PlanStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if plans == nil {
		plans = NewMemoryPlanStore()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PlanTTL <= 0 {
		cfg.PlanTTL = 30 * time.Minute
	}
	if cfg.MaxStagedClasses <= 0 {
		cfg.MaxStagedClasses = 20
	}
	if cfg.TimetableTitle == "" {
		cfg.TimetableTitle = "Weekly timetable"
	}
	return &PlannerService{
		students:    students,
		shifts:      shifts,
		classes:     classes,
		enrollments: enrollments,
		plans:       plans,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		locks:       newStudentLocks(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// planState is everything loaded for one evaluation.
type planState struct {
	student *models.Student
	book    *scheduling.ShiftBook
	ledger  *scheduling.Ledger
	plan    *models.StagingPlan
}

// Enrollments returns the student's confirmed enrollments.
func (s *PlannerService) Enrollments(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error) {
	if _, err := s.student(ctx, studentID); err != nil {
		return nil, err
	}
	return s.enrollments.ListConfirmed(ctx, studentID)
}

// GetPlan returns the merged confirmed and staged view.
func (s *PlannerService) GetPlan(ctx context.Context, studentID string) (*models.PlanView, error) {
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	view := s.view(state)
	return &view, nil
}

// Check reports whether classID could be staged without changing the plan.
func (s *PlannerService) Check(ctx context.Context, studentID string, req ClassRequest) (*models.CheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	candidate, parent, err := s.candidate(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	result := &models.CheckResult{
		ClassID:     candidate.ID,
		CourseState: state.ledger.CourseState(candidate.CourseID),
	}
	additions, _, err := state.ledger.Plan(*candidate, parent)
	if err != nil {
		rejection, ok := scheduling.AsRejection(err)
		if !ok {
			return nil, appErrors.FromError(err)
		}
		result.Reason = rejection.Reason
		result.Verdict = rejection.Verdict
		s.metrics.RecordDecision("check", OutcomeRejected, string(rejection.Kind))
		return result, nil
	}

	result.CanStage = true
	for _, class := range additions {
		result.WouldAdd = append(result.WouldAdd, class.ID)
	}
	if limitErr := s.checkLimit(state, len(additions)); limitErr != nil {
		result.CanStage = false
		result.Reason = limitErr.Message
		s.metrics.RecordDecision("check", OutcomeRejected, limitErr.Code)
		return result, nil
	}
	s.metrics.RecordDecision("check", OutcomeAccepted, "")
	return result, nil
}

// Stage adds classID to the plan. A practice class brings its theory class
// along unless the theory is already staged.
func (s *PlannerService) Stage(ctx context.Context, studentID string, req ClassRequest) (*models.StageResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	candidate, parent, err := s.candidate(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	additions, _, err := state.ledger.Plan(*candidate, parent)
	if err != nil {
		return nil, s.reject("stage", studentID, err)
	}
	if limitErr := s.checkLimit(state, len(additions)); limitErr != nil {
		s.metrics.RecordDecision("stage", OutcomeRejected, limitErr.Code)
		return nil, limitErr
	}

	added, err := state.ledger.Stage(*candidate, parent, s.newID, s.now())
	if err != nil {
		return nil, s.reject("stage", studentID, err)
	}
	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	s.metrics.RecordDecision("stage", OutcomeAccepted, "")
	s.logger.Info("classes staged",
		zap.String("student_id", studentID),
		zap.Strings("class_ids", recordClassIDs(added)))
	return &models.StageResult{Added: added, Plan: s.view(state)}, nil
}

// Unstage removes classID from the plan. Removing a theory class also
// removes its staged practice classes.
func (s *PlannerService) Unstage(ctx context.Context, studentID, classID string) (*models.UnstageResult, error) {
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	removed, err := state.ledger.Unstage(classID)
	if err != nil {
		return nil, s.reject("unstage", studentID, err)
	}
	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	s.metrics.RecordDecision("unstage", OutcomeAccepted, "")
	return &models.UnstageResult{Removed: removed, Plan: s.view(state)}, nil
}

// Clear discards the whole plan.
func (s *PlannerService) Clear(ctx context.Context, studentID string) error {
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.student(ctx, studentID); err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear staging plan")
	}
	return nil
}

// Submit enrolls the student in every staged class in one batch. The plan is
// cleared on success and kept untouched on failure.
func (s *PlannerService) Submit(ctx context.Context, studentID string) (*models.SubmitResult, error) {
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	staged := state.ledger.Staged()
	if len(staged) == 0 {
		return nil, appErrors.ErrEmptyPlan
	}

	start := time.Now()
	created, err := s.enrollments.Submit(ctx, studentID, recordClassIDs(staged))
	if err != nil {
		s.metrics.RecordSubmission(OutcomeFailed, time.Since(start))
		return nil, err
	}
	s.metrics.RecordSubmission(OutcomeAccepted, time.Since(start))

	if err := s.plans.Delete(ctx, studentID); err != nil {
		s.logger.Warn("failed to clear submitted plan", zap.String("student_id", studentID), zap.Error(err))
	}
	s.logger.Info("enrollment submitted",
		zap.String("student_id", studentID),
		zap.Int("classes", len(created)))
	return &models.SubmitResult{Enrollments: created}, nil
}

// Timetable projects confirmed and staged classes onto the weekly grid.
func (s *PlannerService) Timetable(ctx context.Context, studentID string, week int) (*models.Timetable, error) {
	table, _, err := s.timetable(ctx, studentID, week)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ExportTimetable renders the timetable as CSV or PDF.
func (s *PlannerService) ExportTimetable(ctx context.Context, studentID string, week int, format string) (*TimetableExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf")
	}

	table, student, err := s.timetable(ctx, studentID, week)
	if err != nil {
		return nil, err
	}
	dataset := timetableDataset(*table, s.timetableTitle(student, week))

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	default:
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	filename := fmt.Sprintf("timetable-%s.%s", studentID, format)
	if week > 0 {
		filename = fmt.Sprintf("timetable-%s-week%d.%s", studentID, week, format)
	}
	return &TimetableExport{Filename: filename, ContentType: contentType, Body: body}, nil
}

func (s *PlannerService) timetable(ctx context.Context, studentID string, week int) (*models.Timetable, *models.Student, error) {
	if week < 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "week must not be negative")
	}
	release, err := s.lock(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	state, err := s.load(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	table := scheduling.BuildTimetable(studentID, state.ledger.Records(), state.book, week)
	return &table, state.student, nil
}

func (s *PlannerService) timetableTitle(student *models.Student, week int) string {
	title := s.cfg.TimetableTitle
	if student != nil && student.FullName != "" {
		title += " - " + student.FullName
	}
	if week > 0 {
		title += fmt.Sprintf(" (week %d)", week)
	}
	return title
}

func (s *PlannerService) lock(ctx context.Context, studentID string) (func(), error) {
	release, err := s.locks.acquire(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "plan is busy, retry shortly")
	}
	return release, nil
}

func (s *PlannerService) student(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not active")
	}
	return student, nil
}

// load builds the merged ledger. Staged entries that no longer fit, because
// the class disappeared, got confirmed, or now collides with a confirmed
// class, are dropped from the stored plan.
func (s *PlannerService) load(ctx context.Context, studentID string) (*planState, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	book, err := s.shifts.Book(ctx, s.metrics)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.enrollments.ListConfirmed(ctx, studentID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Load(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staging plan")
	}
	if plan == nil {
		plan = &models.StagingPlan{StudentID: studentID}
	}

	held := make(map[string]bool, len(confirmed))
	for _, record := range confirmed {
		held[record.Class.ID] = true
	}
	classes, err := s.classes.Lookup(ctx, plan.ClassIDs())
	if err != nil {
		return nil, err
	}

	staged := make([]models.EnrollmentRecord, 0, len(plan.Entries))
	stale := false
	for _, entry := range plan.Entries {
		class, ok := classes[entry.ClassID]
		if !ok || held[entry.ClassID] {
			s.logger.Warn("dropping stale staged class",
				zap.String("student_id", studentID),
				zap.String("class_id", entry.ClassID),
				zap.Bool("confirmed", held[entry.ClassID]))
			stale = true
			continue
		}
		staged = append(staged, models.StagedRecord(entry.TempID, class, entry.StagedAt))
	}

	ledger, dropped := scheduling.Rebuild(confirmed, staged, book, scheduling.Options{RejectEmptySchedule: s.cfg.RejectEmptySchedule})
	for _, rejection := range dropped {
		s.logger.Warn("dropping staged class that no longer fits",
			zap.String("student_id", studentID),
			zap.String("class_id", rejection.ClassID),
			zap.String("reason", rejection.Reason))
		s.metrics.RecordDecision("rebuild", OutcomeRejected, string(rejection.Kind))
		stale = true
	}

	state := &planState{student: student, book: book, ledger: ledger, plan: plan}
	if stale {
		if err := s.persist(ctx, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (s *PlannerService) candidate(ctx context.Context, classID string) (*models.AcademicClass, *models.AcademicClass, error) {
	found, err := s.classes.Lookup(ctx, []string{classID})
	if err != nil {
		return nil, nil, err
	}
	class, ok := found[classID]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if !class.IsPractice() {
		return &class, nil, nil
	}

	parents, err := s.classes.Lookup(ctx, []string{class.ParentID()})
	if err != nil {
		return nil, nil, err
	}
	parent, ok := parents[class.ParentID()]
	if !ok {
		return &class, nil, nil
	}
	return &class, &parent, nil
}

func (s *PlannerService) checkLimit(state *planState, adding int) *appErrors.Error {
	if len(state.ledger.Staged())+adding > s.cfg.MaxStagedClasses {
		return appErrors.Clone(appErrors.ErrPlanLimit, fmt.Sprintf("a plan holds at most %d staged classes", s.cfg.MaxStagedClasses))
	}
	return nil
}

// persist writes the ledger's staged records back to the plan store.
func (s *PlannerService) persist(ctx context.Context, state *planState) error {
	staged := state.ledger.Staged()
	if len(staged) == 0 {
		if err := s.plans.Delete(ctx, state.plan.StudentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save staging plan")
		}
		state.plan.Entries = nil
		return nil
	}

	entries := make([]models.StagedEntry, 0, len(staged))
	for _, record := range staged {
		entry := models.StagedEntry{TempID: record.RecordID, ClassID: record.Class.ID}
		if record.StagedAt != nil {
			entry.StagedAt = *record.StagedAt
		}
		entries = append(entries, entry)
	}
	state.plan.Entries = entries
	state.plan.UpdatedAt = s.now()
	if err := s.plans.Save(ctx, state.plan, s.cfg.PlanTTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save staging plan")
	}
	return nil
}

func (s *PlannerService) view(state *planState) models.PlanView {
	view := models.PlanView{
		StudentID: state.plan.StudentID,
		Records:   state.ledger.Records(),
		Courses:   state.ledger.Courses(),
	}
	if len(state.plan.Entries) > 0 && !state.plan.UpdatedAt.IsZero() {
		expires := state.plan.UpdatedAt.Add(s.cfg.PlanTTL)
		view.ExpiresAt = &expires
	}
	if view.Courses == nil {
		view.Courses = []models.CourseEnrollmentState{}
	}
	return view
}

// reject converts a scheduling rejection into an API error.
func (s *PlannerService) reject(operation, studentID string, err error) error {
	rejection, ok := scheduling.AsRejection(err)
	if !ok {
		return appErrors.FromError(err)
	}
	s.metrics.RecordDecision(operation, OutcomeRejected, string(rejection.Kind))
	s.logger.Debug("plan change rejected",
		zap.String("student_id", studentID),
		zap.String("operation", operation),
		zap.String("kind", string(rejection.Kind)),
		zap.String("reason", rejection.Reason))

	details := map[string]interface{}{"class_id": rejection.ClassID}
	switch rejection.Kind {
	case scheduling.RejectScheduleConflict:
		if rejection.Verdict.Conflict != nil {
			details["conflict"] = rejection.Verdict.Conflict
		}
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrScheduleConflict, rejection.Reason), details)
	case scheduling.RejectDuplicateCourse:
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrDuplicateCourse, rejection.Reason), details)
	case scheduling.RejectConfirmed:
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrEnrollmentConfirmed, rejection.Reason), details)
	case scheduling.RejectNotStaged:
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, rejection.Reason), details)
	case scheduling.RejectMalformedSchedule:
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrMalformedSchedule, rejection.Reason), details)
	default:
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrPreconditionFailed, rejection.Reason), details)
	}
}

func recordClassIDs(records []models.EnrollmentRecord) []string {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.Class.ID)
	}
	return ids
}

func timetableDataset(table models.Timetable, title string) export.Dataset {
	headers := make([]string, 0, len(table.Days)+1)
	headers = append(headers, "Slot")
	for _, day := range table.Days {
		headers = append(headers, string(day))
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, string(row.Slot))
		for _, cell := range row.Cells {
			lines := make([]string, 0, len(cell.Entries))
			for _, entry := range cell.Entries {
				line := fmt.Sprintf("%s %s (%s)", entry.CourseCode, entry.ClassName, entry.ShiftName)
				if entry.Kind == models.RecordStaged {
					line += " [staged]"
				}
				lines = append(lines, strings.TrimSpace(line))
			}
			cells = append(cells, strings.Join(lines, "\n"))
		}
		rows = append(rows, cells)
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}
