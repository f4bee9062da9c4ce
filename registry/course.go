package registry

import (
	"fmt"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var courseLogger = flogging.MustGetLogger("educhain.registry.course")

const (
	courseObjectType     = "Course"
	enrollmentObjectType = "Enrollment"
)

// Courses owns courses, enrollments, the global course index and the
// student->courses and course->students indices.
type Courses struct {
	institutions InstitutionLookup
	certificates CertificateIssuer
}

// NewCourses returns the course registry wired to the institution verification
// gate and the certificate issuer used on completion.
func NewCourses(institutions InstitutionLookup, certificates CertificateIssuer) *Courses {
	return &Courses{institutions: institutions, certificates: certificates}
}

func (r *Courses) store(tx *ledger.Tx) *ledger.Store { return tx.Store(courseNS) }

func courseKey(id uint64) ledger.Key { return ledger.K("course", ledger.FormatID(id)) }

// enrollmentKey is (fixed-width course id, student); distinct pairs never collide.
func enrollmentKey(courseID uint64, student string) ledger.Key {
	return ledger.K("enrollment", ledger.FormatID(courseID), student)
}

func studentCourses(s *ledger.Store, student string) *ledger.Index {
	return s.Index("student-courses", student)
}

func courseStudents(s *ledger.Store, courseID uint64) *ledger.Index {
	return s.Index("course-students", ledger.FormatID(courseID))
}

// Create publishes a course. The institution must be the caller and verified.
func (r *Courses) Create(tx *ledger.Tx, title, institution string, price uint64, metadata string, certificateTemplateID uint64) (uint64, error) {
	if err := tx.RequireAuth(institution); err != nil {
		return 0, err
	}
	if err := validateRequiredString(title, "title", maxNameLen); err != nil {
		return 0, err
	}
	if err := validateOptionalString(metadata, "metadata", maxMetadataLen); err != nil {
		return 0, err
	}
	verified, err := r.institutions.IsVerified(tx, institution)
	if err != nil {
		return 0, fmt.Errorf("failed to check verification of '%s': %w", institution, err)
	}
	if !verified {
		return 0, fmt.Errorf("%w: '%s'", ErrInstitutionNotVerified, institution)
	}

	s := r.store(tx)
	id, err := s.Next("course")
	if err != nil {
		return 0, err
	}
	now, err := tx.Now()
	if err != nil {
		return 0, err
	}
	course := model.Course{
		ObjectType:    courseObjectType,
		ID:            id,
		Title:         title,
		Institution:   institution,
		Price:         price,
		Metadata:      metadata,
		CertificateID: certificateTemplateID,
		CreatedAt:     now,
	}
	if err := s.Put(courseKey(id), course); err != nil {
		return 0, err
	}
	if _, err := s.Index("all").AddID(id); err != nil {
		return 0, err
	}
	courseLogger.Infof("Course %d '%s' created by '%s'", id, title, institution)
	return id, nil
}

// Enroll registers student in the course. A student enrolls at most once.
func (r *Courses) Enroll(tx *ledger.Tx, courseID uint64, student string) error {
	if err := tx.RequireAuth(student); err != nil {
		return err
	}
	if _, err := r.Get(tx, courseID); err != nil {
		return err
	}
	s := r.store(tx)
	exists, err := s.Has(enrollmentKey(courseID, student))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: '%s' in course %d", ErrStudentAlreadyEnrolled, student, courseID)
	}
	now, err := tx.Now()
	if err != nil {
		return err
	}
	enrollment := model.Enrollment{
		ObjectType: enrollmentObjectType,
		CourseID:   courseID,
		Student:    student,
		EnrolledAt: now,
	}
	if err := s.Put(enrollmentKey(courseID, student), enrollment); err != nil {
		return err
	}
	if _, err := studentCourses(s, student).AddID(courseID); err != nil {
		return err
	}
	if _, err := courseStudents(s, courseID).Add(student); err != nil {
		return err
	}
	courseLogger.Infof("'%s' enrolled in course %d", student, courseID)
	return nil
}

// Complete marks the enrollment completed and issues a certificate through the
// certificate registry. The issued id is not linked back; completing again
// issues another certificate.
func (r *Courses) Complete(tx *ledger.Tx, courseID uint64, student string) error {
	course, err := r.Get(tx, courseID)
	if err != nil {
		return err
	}
	if err := tx.RequireAuth(course.Institution); err != nil {
		return err
	}
	s := r.store(tx)
	var enrollment model.Enrollment
	found, err := s.Get(enrollmentKey(courseID, student), &enrollment)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: '%s' in course %d", ErrNotEnrolled, student, courseID)
	}
	now, err := tx.Now()
	if err != nil {
		return err
	}
	if !enrollment.Completed {
		enrollment.Completed = true
		enrollment.CompletedAt = now
		if err := s.Put(enrollmentKey(courseID, student), enrollment); err != nil {
			return err
		}
	}
	certID, err := r.certificates.Issue(tx, student, courseID, course.Institution, course.Metadata)
	if err != nil {
		return fmt.Errorf("failed to issue certificate for course %d: %w", courseID, err)
	}
	courseLogger.Infof("Course %d completed by '%s'; certificate %d issued", courseID, student, certID)
	return nil
}

// Get returns one course.
func (r *Courses) Get(tx *ledger.Tx, id uint64) (*model.Course, error) {
	var course model.Course
	found, err := r.store(tx).Get(courseKey(id), &course)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, id)
	}
	return &course, nil
}

// List returns all live courses in creation order.
func (r *Courses) List(tx *ledger.Tx) ([]model.Course, error) {
	ids, err := r.store(tx).Index("all").IDs()
	if err != nil {
		return nil, err
	}
	return r.resolve(tx, ids)
}

// Remove deletes a course owned by institution that has no enrolled students.
func (r *Courses) Remove(tx *ledger.Tx, id uint64, institution string) error {
	if err := tx.RequireAuth(institution); err != nil {
		return err
	}
	course, err := r.Get(tx, id)
	if err != nil {
		return err
	}
	if course.Institution != institution {
		return fmt.Errorf("%w: course %d", ErrNotCourseOwner, id)
	}
	s := r.store(tx)
	empty, err := courseStudents(s, id).Empty()
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%w: course %d", ErrStudentsEnrolled, id)
	}
	if err := s.Delete(courseKey(id)); err != nil {
		return err
	}
	if _, err := s.Index("all").RemoveID(id); err != nil {
		return err
	}
	courseLogger.Infof("Course %d removed by '%s'", id, institution)
	return nil
}

// GetEnrollment returns the (course, student) enrollment.
func (r *Courses) GetEnrollment(tx *ledger.Tx, courseID uint64, student string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	found, err := r.store(tx).Get(enrollmentKey(courseID, student), &enrollment)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: '%s' in course %d", ErrEnrollmentNotFound, student, courseID)
	}
	return &enrollment, nil
}

// ListStudentCourses returns the courses student enrolled in, in enrollment order.
func (r *Courses) ListStudentCourses(tx *ledger.Tx, student string) ([]model.Course, error) {
	ids, err := studentCourses(r.store(tx), student).IDs()
	if err != nil {
		return nil, err
	}
	return r.resolve(tx, ids)
}

// ListCourseStudents returns the students enrolled in a course, in enrollment order.
func (r *Courses) ListCourseStudents(tx *ledger.Tx, courseID uint64) ([]string, error) {
	if _, err := r.Get(tx, courseID); err != nil {
		return nil, err
	}
	return courseStudents(r.store(tx), courseID).Members()
}

func (r *Courses) resolve(tx *ledger.Tx, ids []uint64) ([]model.Course, error) {
	s := r.store(tx)
	out := []model.Course{}
	for _, id := range ids {
		var course model.Course
		found, err := s.Get(courseKey(id), &course)
		if err != nil {
			return nil, err
		}
		if !found {
			courseLogger.Debugf("Course %d no longer exists. Skipping.", id)
			continue
		}
		out = append(out, course)
	}
	return out, nil
}
