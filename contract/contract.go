package contract

import (
	"fmt"
	"strings"
	"time"

	"educhain/registry"
	"educhain/sentinel"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("educhain.contract")

// Registries is the wiring shared by every contract in the chaincode.
type Registries struct {
	Staff         *registry.StaffRoster
	Certificates  *registry.Certificates
	Institutions  *registry.Institutions
	Courses       *registry.Courses
	Revocations   *registry.Revocations
	Verifications *registry.Verifications
	Tickets       *registry.Tickets
}

// NewRegistries wires the registries: courses consult institutions and issue
// through certificates, institutions ask certificates before removal, and
// support tickets defer to the staff roster.
func NewRegistries() *Registries {
	staff := registry.NewStaffRoster()
	certs := registry.NewCertificates()
	insts := registry.NewInstitutions(certs)
	return &Registries{
		Staff:         staff,
		Certificates:  certs,
		Institutions:  insts,
		Courses:       registry.NewCourses(insts, certs),
		Revocations:   registry.NewRevocations(),
		Verifications: registry.NewVerifications(),
		Tickets:       registry.NewTickets(staff),
	}
}

// New returns every contract of the chaincode. The institution contract is
// first and therefore the default.
func New() []contractapi.ContractInterface {
	r := NewRegistries()
	return []contractapi.ContractInterface{
		NewInstitutionContract(r),
		NewCourseContract(r),
		NewCertificateContract(r),
		NewRevocationContract(r),
		NewVerificationContract(r),
		NewSupportContract(r),
		NewStaffContract(r),
	}
}

// fail prefixes err with the operation and its taxonomy kind.
func fail(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := sentinel.KindOf(err)
	if kind == "Internal" {
		logger.Warningf("%s: %v", op, err)
	} else {
		logger.Debugf("%s rejected: %v", op, err)
	}
	return fmt.Errorf("%s [%s]: %w", op, kind, err)
}

func parseDateString(str, field string, required bool) (time.Time, error) {
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		if required {
			return time.Time{}, fmt.Errorf("%w: %s is a required date field and cannot be empty", sentinel.ErrInvalidInput, field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid format for %s (expected RFC3339 'YYYY-MM-DDTHH:MM:SSZ'): %v", sentinel.ErrInvalidInput, field, err)
	}
	return t, nil
}
