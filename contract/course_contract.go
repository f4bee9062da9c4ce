package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// CourseContract exposes the course registry.
// @contract:course
type CourseContract struct {
	contractapi.Contract
	reg *Registries
}

// NewCourseContract returns the course contract backed by r.
func NewCourseContract(r *Registries) *CourseContract {
	return &CourseContract{Contract: contractapi.Contract{Name: "course"}, reg: r}
}

// GetEvaluateTransactions lists the read-only functions.
func (c *CourseContract) GetEvaluateTransactions() []string {
	return []string{"GetCourse", "ListCourses", "GetEnrollment", "ListStudentCourses", "ListCourseStudents"}
}

// CreateCourse creates a course for a verified institution and returns its id.
func (c *CourseContract) CreateCourse(ctx contractapi.TransactionContextInterface, title, institution string, price uint64, metadata string, certificateID uint64) (uint64, error) {
	logger.Infof("Chaincode Call: CreateCourse '%s' by '%s'", title, institution)
	id, err := ledger.Do(ctx, func(tx *ledger.Tx) (uint64, error) {
		return c.reg.Courses.Create(tx, title, institution, price, metadata, certificateID)
	})
	return id, fail("CreateCourse", err)
}

// EnrollInCourse enrolls student in the course.
func (c *CourseContract) EnrollInCourse(ctx contractapi.TransactionContextInterface, courseID uint64, student string) error {
	logger.Infof("Chaincode Call: EnrollInCourse %d for '%s'", courseID, student)
	return fail("EnrollInCourse", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Courses.Enroll(tx, courseID, student)
	}))
}

// CompleteCourse marks the enrollment completed and issues a certificate in the same transaction.
func (c *CourseContract) CompleteCourse(ctx contractapi.TransactionContextInterface, courseID uint64, student string) error {
	logger.Infof("Chaincode Call: CompleteCourse %d for '%s'", courseID, student)
	return fail("CompleteCourse", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Courses.Complete(tx, courseID, student)
	}))
}

// GetCourse returns the course with the given id.
func (c *CourseContract) GetCourse(ctx contractapi.TransactionContextInterface, id uint64) (*model.Course, error) {
	logger.Debugf("Chaincode Call: GetCourse %d", id)
	course, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.Course, error) {
		return c.reg.Courses.Get(tx, id)
	})
	return course, fail("GetCourse", err)
}

// ListCourses returns every course in creation order.
func (c *CourseContract) ListCourses(ctx contractapi.TransactionContextInterface) ([]model.Course, error) {
	logger.Debug("Chaincode Call: ListCourses")
	list, err := ledger.Do(ctx, c.reg.Courses.List)
	return list, fail("ListCourses", err)
}

// RemoveCourse deletes a course that has no enrolled students.
func (c *CourseContract) RemoveCourse(ctx contractapi.TransactionContextInterface, id uint64, institution string) error {
	logger.Infof("Chaincode Call: RemoveCourse %d by '%s'", id, institution)
	return fail("RemoveCourse", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Courses.Remove(tx, id, institution)
	}))
}

// GetEnrollment returns student's enrollment in the course.
func (c *CourseContract) GetEnrollment(ctx contractapi.TransactionContextInterface, courseID uint64, student string) (*model.Enrollment, error) {
	e, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.Enrollment, error) {
		return c.reg.Courses.GetEnrollment(tx, courseID, student)
	})
	return e, fail("GetEnrollment", err)
}

// ListStudentCourses returns the courses student is enrolled in.
func (c *CourseContract) ListStudentCourses(ctx contractapi.TransactionContextInterface, student string) ([]model.Course, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]model.Course, error) {
		return c.reg.Courses.ListStudentCourses(tx, student)
	})
	return list, fail("ListStudentCourses", err)
}

// ListCourseStudents returns the students enrolled in the course.
func (c *CourseContract) ListCourseStudents(ctx contractapi.TransactionContextInterface, courseID uint64) ([]string, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]string, error) {
		return c.reg.Courses.ListCourseStudents(tx, courseID)
	})
	return list, fail("ListCourseStudents", err)
}
