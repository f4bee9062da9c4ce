package registry_test

import (
	"educhain/ledger"
	"educhain/ledger/ledgertest"
	"educhain/registry"
)

const (
	admin    = "x509::CN=registrar::CN=ca.educhain"
	uni      = "x509::CN=uni-wallet::CN=ca.educhain"
	college  = "x509::CN=college-wallet::CN=ca.educhain"
	student  = "x509::CN=student::CN=ca.educhain"
	student2 = "x509::CN=student-two::CN=ca.educhain"
	employer = "x509::CN=employer::CN=ca.educhain"
	stranger = "x509::CN=stranger::CN=ca.educhain"
)

// world wires every registry the way the chaincode does.
type world struct {
	h             *ledgertest.Harness
	staff         *registry.StaffRoster
	certificates  *registry.Certificates
	institutions  *registry.Institutions
	courses       *registry.Courses
	revocations   *registry.Revocations
	verifications *registry.Verifications
	tickets       *registry.Tickets
}

func newWorld() *world {
	staff := registry.NewStaffRoster()
	certs := registry.NewCertificates()
	insts := registry.NewInstitutions(certs)
	return &world{
		h:             ledgertest.New(),
		staff:         staff,
		certificates:  certs,
		institutions:  insts,
		courses:       registry.NewCourses(insts, certs),
		revocations:   registry.NewRevocations(),
		verifications: registry.NewVerifications(),
		tickets:       registry.NewTickets(staff),
	}
}

func (w *world) as(id string) *world {
	w.h.As(id)
	return w
}

func (w *world) run(fn func(tx *ledger.Tx) error) error {
	return w.h.Run(fn)
}

func call[T any](w *world, fn func(tx *ledger.Tx) (T, error)) (T, error) {
	return ledgertest.Do(w.h, fn)
}

// verifiedInstitution registers wallet as an institution and verifies it,
// setting the registry admin first if needed.
func (w *world) verifiedInstitution(wallet string) uint64 {
	var current string
	_ = w.as(admin).run(func(tx *ledger.Tx) error {
		var err error
		current, err = w.institutions.Admin(tx)
		return err
	})
	if current == "" {
		must(w.as(admin).run(func(tx *ledger.Tx) error { return w.institutions.SetAdmin(tx, admin) }))
	}
	id, err := call(w.as(wallet), func(tx *ledger.Tx) (uint64, error) {
		return w.institutions.Register(tx, "Institution "+wallet, wallet, "{}")
	})
	must(err)
	must(w.as(admin).run(func(tx *ledger.Tx) error { return w.institutions.Verify(tx, id, admin) }))
	return id
}

// course creates a course owned by wallet, which must already be verified.
func (w *world) course(wallet, title string) uint64 {
	id, err := call(w.as(wallet), func(tx *ledger.Tx) (uint64, error) {
		return w.courses.Create(tx, title, wallet, 1000, `{"level":"intro"}`, 7)
	})
	must(err)
	return id
}

func (w *world) enroll(courseID uint64, who string) {
	must(w.as(who).run(func(tx *ledger.Tx) error { return w.courses.Enroll(tx, courseID, who) }))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
