package contract_test

import (
	"errors"
	"testing"

	"educhain/contract"
	"educhain/ledger/ledgertest"
	"educhain/model"
	"educhain/registry"
	"educhain/sentinel"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	registrar = "x509::CN=registrar::CN=ca.educhain"
	campus    = "x509::CN=campus-wallet::CN=ca.educhain"
	learner   = "x509::CN=learner::CN=ca.educhain"
	recruiter = "x509::CN=recruiter::CN=ca.educhain"
	helpdesk  = "x509::CN=helpdesk::CN=ca.educhain"
)

type contracts struct {
	h            *ledgertest.Harness
	institution  *contract.InstitutionContract
	course       *contract.CourseContract
	certificate  *contract.CertificateContract
	revocation   *contract.RevocationContract
	verification *contract.VerificationContract
	support      *contract.SupportContract
	staff        *contract.StaffContract
}

func newContracts() *contracts {
	r := contract.NewRegistries()
	return &contracts{
		h:            ledgertest.New(),
		institution:  contract.NewInstitutionContract(r),
		course:       contract.NewCourseContract(r),
		certificate:  contract.NewCertificateContract(r),
		revocation:   contract.NewRevocationContract(r),
		verification: contract.NewVerificationContract(r),
		support:      contract.NewSupportContract(r),
		staff:        contract.NewStaffContract(r),
	}
}

func (c *contracts) as(id string, fn func(ctx contractapi.TransactionContextInterface) error) error {
	return c.h.As(id).Invoke(fn)
}

func TestChaincodeBuilds(t *testing.T) {
	cc, err := contractapi.NewChaincode(contract.New()...)
	require.NoError(t, err)
	require.NotNil(t, cc)
	assert.Equal(t, "institution", cc.DefaultContract)
}

func TestEvaluateTransactionsAreReadOnly(t *testing.T) {
	c := newContracts()
	assert.ElementsMatch(t, []string{"GetInstitution", "ListInstitutions", "IsInstitutionVerified", "GetAdmin"}, c.institution.GetEvaluateTransactions())
	assert.Contains(t, c.course.GetEvaluateTransactions(), "ListCourseStudents")
	assert.NotContains(t, c.certificate.GetEvaluateTransactions(), "RevokeCertificate")
	assert.NotContains(t, c.support.GetEvaluateTransactions(), "AssignTicket")
	assert.Equal(t, []string{"IsStaff", "ListStaff"}, c.staff.GetEvaluateTransactions())
}

func TestCredentialFlowThroughContracts(t *testing.T) {
	c := newContracts()
	var instID, courseID uint64

	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.institution.SetAdmin(ctx, registrar)
	}))
	require.NoError(t, c.as(campus, func(ctx contractapi.TransactionContextInterface) (err error) {
		instID, err = c.institution.RegisterInstitution(ctx, "Campus", campus, `{"country":"NZ"}`)
		return err
	}))
	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.institution.VerifyInstitution(ctx, instID, registrar)
	}))
	require.NoError(t, c.as(campus, func(ctx contractapi.TransactionContextInterface) (err error) {
		courseID, err = c.course.CreateCourse(ctx, "Distributed Systems", campus, 4900, `{"credits":15}`, 1)
		return err
	}))
	require.NoError(t, c.as(learner, func(ctx contractapi.TransactionContextInterface) error {
		return c.course.EnrollInCourse(ctx, courseID, learner)
	}))
	require.NoError(t, c.as(campus, func(ctx contractapi.TransactionContextInterface) error {
		return c.course.CompleteCourse(ctx, courseID, learner)
	}))

	var certs []model.Certificate
	require.NoError(t, c.as(recruiter, func(ctx contractapi.TransactionContextInterface) (err error) {
		certs, err = c.certificate.ListCertificates(ctx, learner)
		return err
	}))
	require.Len(t, certs, 1)
	assert.True(t, certs[0].Status)
	assert.Equal(t, campus, certs[0].Institution)
	assert.Equal(t, `{"credits":15}`, certs[0].Metadata)

	var enrollment *model.Enrollment
	require.NoError(t, c.as(recruiter, func(ctx contractapi.TransactionContextInterface) (err error) {
		enrollment, err = c.course.GetEnrollment(ctx, courseID, learner)
		return err
	}))
	assert.True(t, enrollment.Completed)

	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.revocation.SetAdmin(ctx, registrar)
	}))
	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.revocation.RevokeCertificate(ctx, registrar, certs[0].ID, "plagiarism")
	}))
	events := c.h.Events()
	require.Len(t, events, 1)
	assert.Equal(t, registry.EventCertificateRevoked, events[0].EventName)

	var revoked bool
	require.NoError(t, c.as(recruiter, func(ctx contractapi.TransactionContextInterface) (err error) {
		revoked, err = c.revocation.IsRevoked(ctx, certs[0].ID)
		return err
	}))
	assert.True(t, revoked)
}

func TestErrorsCarryKind(t *testing.T) {
	c := newContracts()

	err := c.as(recruiter, func(ctx contractapi.TransactionContextInterface) error {
		_, err := c.institution.GetInstitution(ctx, 42)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GetInstitution [NotFound]")
	assert.True(t, errors.Is(err, registry.ErrInstitutionNotFound))

	err = c.as(recruiter, func(ctx contractapi.TransactionContextInterface) error {
		return c.institution.SetAdmin(ctx, registrar)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[Unauthorized]")
	assert.Zero(t, c.h.StateSize())
}

func TestRegisterCertificateParsesIssuanceDate(t *testing.T) {
	c := newContracts()
	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.verification.SetAdmin(ctx, registrar)
	}))

	err := c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.verification.RegisterCertificate(ctx, registrar, 9, "Ana", "Databases", "Campus", "15/01/2024")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrInvalidInput))

	require.NoError(t, c.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		return c.verification.RegisterCertificate(ctx, registrar, 9, "Ana", "Databases", "Campus", "2024-01-15T00:00:00Z")
	}))

	var details *model.CertificateDetails
	require.NoError(t, c.as(recruiter, func(ctx contractapi.TransactionContextInterface) (err error) {
		details, err = c.verification.VerifyCertificate(ctx, 9)
		return err
	}))
	assert.True(t, details.Valid)
	assert.Equal(t, "Databases", details.Course)
	assert.Equal(t, 2024, details.IssuanceDate.Year())
}

func TestSupportContractParsesEnums(t *testing.T) {
	c := newContracts()

	err := c.as(learner, func(ctx contractapi.TransactionContextInterface) error {
		_, err := c.support.SubmitTicket(ctx, learner, "BILLING", "charged twice", "")
		return err
	})
	assert.True(t, errors.Is(err, sentinel.ErrInvalidInput))

	var ticket *model.SupportTicket
	require.NoError(t, c.as(learner, func(ctx contractapi.TransactionContextInterface) (err error) {
		ticket, err = c.support.SubmitTicket(ctx, learner, "PAYMENT", "charged twice", "card ending 42")
		return err
	}))

	require.NoError(t, c.as(helpdesk, func(ctx contractapi.TransactionContextInterface) error {
		return c.staff.BootstrapStaff(ctx, helpdesk)
	}))
	require.NoError(t, c.as(helpdesk, func(ctx contractapi.TransactionContextInterface) (err error) {
		ticket, err = c.support.UpdateTicketStatus(ctx, helpdesk, ticket.ID, "RESOLVED")
		return err
	}))
	assert.Equal(t, model.TicketResolved, ticket.Status)

	err = c.as(recruiter, func(ctx contractapi.TransactionContextInterface) error {
		_, err := c.support.CloseTicket(ctx, recruiter, ticket.ID)
		return err
	})
	assert.True(t, errors.Is(err, registry.ErrNotStaff))

	require.NoError(t, c.as(helpdesk, func(ctx contractapi.TransactionContextInterface) (err error) {
		ticket, err = c.support.CloseTicket(ctx, helpdesk, ticket.ID)
		return err
	}))
	assert.Equal(t, model.TicketClosed, ticket.Status)
	assert.False(t, ticket.ClosedAt.IsZero())
}
