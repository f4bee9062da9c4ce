package registry

import "educhain/sentinel"

// Admin configuration.
var (
	ErrAdminAlreadySet = sentinel.Wrap(sentinel.ErrAlreadyExists, "admin already set")
	ErrAdminNotSet     = sentinel.Wrap(sentinel.ErrUnauthorized, "admin not set")
	ErrNotAdmin        = sentinel.Wrap(sentinel.ErrUnauthorized, "caller is not the admin")
)

// Institution registry.
var (
	ErrInstitutionNotFound = sentinel.Wrap(sentinel.ErrNotFound, "institution not found")
	ErrHasCertificates     = sentinel.Wrap(sentinel.ErrPreconditionFailed, "institution has issued certificates")
)

// Course registry.
var (
	ErrCourseNotFound         = sentinel.Wrap(sentinel.ErrNotFound, "course not found")
	ErrInstitutionNotVerified = sentinel.Wrap(sentinel.ErrUnauthorized, "institution not verified")
	ErrStudentAlreadyEnrolled = sentinel.Wrap(sentinel.ErrAlreadyExists, "student already enrolled")
	ErrNotEnrolled            = sentinel.Wrap(sentinel.ErrUnauthorized, "student not enrolled")
	ErrNotCourseOwner         = sentinel.Wrap(sentinel.ErrUnauthorized, "institution does not own course")
	ErrStudentsEnrolled       = sentinel.Wrap(sentinel.ErrPreconditionFailed, "students enrolled")
	ErrEnrollmentNotFound     = sentinel.Wrap(sentinel.ErrNotFound, "enrollment not found")
)

// Certificate registry.
var (
	ErrCertificateNotFound = sentinel.Wrap(sentinel.ErrNotFound, "certificate not found")
)

// Verification registry.
var (
	ErrSnapshotNotFound = sentinel.Wrap(sentinel.ErrNotFound, "certificate does not exist")
	ErrRequestNotFound  = sentinel.Wrap(sentinel.ErrNotFound, "verification request not found")
)

// Support tickets and staff roster.
var (
	ErrTicketNotFound    = sentinel.Wrap(sentinel.ErrNotFound, "ticket not found")
	ErrInvalidTransition = sentinel.Wrap(sentinel.ErrInvalidTransition, "invalid status transition")
	ErrNotResolved       = sentinel.Wrap(sentinel.ErrInvalidTransition, "only resolved tickets can be closed")
	ErrNotStaff          = sentinel.Wrap(sentinel.ErrUnauthorized, "identity is not support staff")
	ErrNotManager        = sentinel.Wrap(sentinel.ErrUnauthorized, "identity is not a staff manager")
	ErrRootStaff         = sentinel.Wrap(sentinel.ErrPreconditionFailed, "root staff member cannot be revoked or demoted")
)
