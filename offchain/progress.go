package offchain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CourseProgress tracks how far a user is through a course. There is at most
// one row per (UserID, CourseID).
type CourseProgress struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CourseID  int64     `json:"courseId"`
	Progress  int       `json:"progress"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const progressColumns = `id, user_id, course_id, progress, completed, created_at, updated_at`

func scanProgress(row scanner) (*CourseProgress, error) {
	var p CourseProgress
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Progress, &p.Completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = parseStamp("created_at", createdAt)
	p.UpdatedAt = parseStamp("updated_at", updatedAt)
	return &p, nil
}

// CreateCourseProgress starts tracking a user at 0%.
func (s *Store) CreateCourseProgress(ctx context.Context, user, course int64) (*CourseProgress, error) {
	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO course_progress (user_id, course_id, progress, completed, created_at, updated_at)
		 VALUES (?, ?, 0, 0, ?, ?)`,
		user, course, now, now)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: user %d course %d", ErrProgressExists, user, course)
	}
	if err != nil {
		return nil, fmt.Errorf("insert progress: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	logger.Debugf("Progress %d created for user %d course %d", id, user, course)
	return s.getProgressByID(ctx, s.db, id)
}

// UpdateProgress sets the percentage; reaching 100 marks the course completed.
func (s *Store) UpdateProgress(ctx context.Context, id int64, pct int) (*CourseProgress, error) {
	if pct < 0 || pct > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidProgress, pct)
	}
	var out *CourseProgress
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE course_progress SET progress = ?, completed = ?, updated_at = ? WHERE id = ?`,
			pct, pct == 100, s.stamp(), id)
		if err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		if err := affected(res, fmt.Errorf("%w: %d", ErrProgressNotFound, id)); err != nil {
			return err
		}
		out, err = s.getProgressByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Completed {
		logger.Infof("User %d completed course %d", out.UserID, out.CourseID)
	}
	return out, nil
}

// GetCourseProgress looks up progress by user and course.
func (s *Store) GetCourseProgress(ctx context.Context, user, course int64) (*CourseProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM course_progress WHERE user_id = ? AND course_id = ?`, user, course)
	p, err := scanProgress(row)
	if err != nil {
		return nil, noRows(err, fmt.Errorf("%w: user %d course %d", ErrProgressNotFound, user, course))
	}
	return p, nil
}

func (s *Store) ListProgressForUser(ctx context.Context, user int64) ([]CourseProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM course_progress WHERE user_id = ? ORDER BY id`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CourseProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCourseProgress(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM course_progress WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return affected(res, fmt.Errorf("%w: %d", ErrProgressNotFound, id))
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getProgressByID(ctx context.Context, q queryRower, id int64) (*CourseProgress, error) {
	row := q.QueryRowContext(ctx, `SELECT `+progressColumns+` FROM course_progress WHERE id = ?`, id)
	p, err := scanProgress(row)
	if err != nil {
		return nil, noRows(err, fmt.Errorf("%w: %d", ErrProgressNotFound, id))
	}
	return p, nil
}
