package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ClassOfferingRepository reads the course roster of a section.
type ClassOfferingRepository struct {
	db *sqlx.DB
}

// NewClassOfferingRepository constructs repository.
func NewClassOfferingRepository(db *sqlx.DB) *ClassOfferingRepository {
	return &ClassOfferingRepository{db: db}
}

// ListByTermSection returns the roster in its stored order, which is the order the generator
// places classes in.
func (r *ClassOfferingRepository) ListByTermSection(ctx context.Context, termID, section string) ([]models.ClassOffering, error) {
	const query = `SELECT id, term_id, section, course_name, course_code, teacher_id, faculty_name, theory_count, lab_count, position
FROM class_offerings WHERE term_id = $1 AND section = $2 ORDER BY position ASC, id ASC`
	var offerings []models.ClassOffering
	if err := r.db.SelectContext(ctx, &offerings, query, termID, section); err != nil {
		return nil, fmt.Errorf("list class offerings: %w", err)
	}
	return offerings, nil
}
