package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

const classColumns = `c.id, c.name, c.course_id, co.code AS course_code, co.name AS course_name, c.term_id,
	c.parent_theory_class_id, c.capacity, c.enrolled_count, c.list_of_weeks`

const classFrom = "FROM academic_classes c JOIN courses co ON co.id = c.course_id"

// ClassRepository reads offerable classes together with their weekly schedule.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching filter criteria.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, int, error) {
	base := classFrom + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("c.term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("c.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.name) LIKE $%d OR LOWER(co.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":        "c.name",
		"course_code": "co.code",
		"capacity":    "c.capacity",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "co.code"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, c.name ASC LIMIT %d OFFSET %d", classColumns, base, sortBy, order, size, offset)
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	if err := r.attachSchedules(ctx, classes); err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

// FindByIDs returns the requested classes with schedules. Missing ids are
// skipped; callers compare lengths when they need every id.
func (r *ClassRepository) FindByIDs(ctx context.Context, ids []string) ([]models.AcademicClass, error) {
	if len(ids) == 0 {
		return []models.AcademicClass{}, nil
	}
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = ANY($1)", classColumns, classFrom)
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find classes by ids: %w", err)
	}
	if err := r.attachSchedules(ctx, classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *ClassRepository) attachSchedules(ctx context.Context, classes []models.AcademicClass) error {
	if len(classes) == 0 {
		return nil
	}
	ids := make([]string, len(classes))
	index := make(map[string]int, len(classes))
	for i, class := range classes {
		ids[i] = class.ID
		index[class.ID] = i
		classes[i].ScheduleInDays = []models.ScheduleSlot{}
	}

	const scheduleQuery = `SELECT class_id, day_of_week, shift_id FROM class_schedules WHERE class_id = ANY($1) ORDER BY class_id, day_of_week, shift_id`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, scheduleQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("list class schedules: %w", err)
	}
	for _, slot := range slots {
		if i, ok := index[slot.ClassID]; ok {
			classes[i].ScheduleInDays = append(classes[i].ScheduleInDays, slot)
		}
	}

	const childQuery = `SELECT id, parent_theory_class_id FROM academic_classes WHERE parent_theory_class_id = ANY($1) ORDER BY name`
	var children []struct {
		ID       string `db:"id"`
		ParentID string `db:"parent_theory_class_id"`
	}
	if err := r.db.SelectContext(ctx, &children, childQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("list practice classes: %w", err)
	}
	for _, child := range children {
		if i, ok := index[child.ParentID]; ok {
			classes[i].ChildPracticeClassIDs = append(classes[i].ChildPracticeClassIDs, child.ID)
		}
	}
	return nil
}
