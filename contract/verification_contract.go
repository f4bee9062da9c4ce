package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// VerificationContract exposes certificate snapshots and verification requests.
// @contract:verification
type VerificationContract struct {
	contractapi.Contract
	reg *Registries
}

// NewVerificationContract returns the verification contract backed by r.
func NewVerificationContract(r *Registries) *VerificationContract {
	return &VerificationContract{Contract: contractapi.Contract{Name: "verification"}, reg: r}
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *VerificationContract) GetEvaluateTransactions() []string {
	return []string{"VerifyCertificate", "ListVerificationRequests"}
}

// SetAdmin configures the verification registry admin once.
func (c *VerificationContract) SetAdmin(ctx contractapi.TransactionContextInterface, admin string) error {
	logger.Infof("Chaincode Call: verification.SetAdmin '%s'", admin)
	return fail("SetAdmin", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Verifications.SetAdmin(tx, admin)
	}))
}

// RegisterCertificate seeds a display snapshot. issuanceDate is RFC3339.
func (c *VerificationContract) RegisterCertificate(ctx contractapi.TransactionContextInterface, admin string, certificateID uint64, student, course, institution, issuanceDate string) error {
	logger.Infof("Chaincode Call: RegisterCertificate %d by '%s'", certificateID, admin)
	issued, err := parseDateString(issuanceDate, "issuanceDate", true)
	if err != nil {
		return fail("RegisterCertificate", err)
	}
	return fail("RegisterCertificate", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Verifications.RegisterCertificate(tx, admin, certificateID, student, course, institution, issued)
	}))
}

// VerifyCertificate never fails for an unknown id; it returns an invalid, empty snapshot.
func (c *VerificationContract) VerifyCertificate(ctx contractapi.TransactionContextInterface, certificateID uint64) (*model.CertificateDetails, error) {
	d, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.CertificateDetails, error) {
		return c.reg.Verifications.Verify(tx, certificateID)
	})
	return d, fail("VerifyCertificate", err)
}

// SubmitVerificationRequest records a request to verify the certificate and returns its id.
func (c *VerificationContract) SubmitVerificationRequest(ctx contractapi.TransactionContextInterface, certificateID uint64, requester string) (uint64, error) {
	logger.Infof("Chaincode Call: SubmitVerificationRequest for %d by '%s'", certificateID, requester)
	id, err := ledger.Do(ctx, func(tx *ledger.Tx) (uint64, error) {
		return c.reg.Verifications.SubmitRequest(tx, certificateID, requester)
	})
	return id, fail("SubmitVerificationRequest", err)
}

// ListVerificationRequests returns the requests made for the certificate.
func (c *VerificationContract) ListVerificationRequests(ctx contractapi.TransactionContextInterface, certificateID uint64) ([]model.VerificationRequest, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]model.VerificationRequest, error) {
		return c.reg.Verifications.ListRequests(tx, certificateID)
	})
	return list, fail("ListVerificationRequests", err)
}

// RevokeVerificationRequest withdraws a verification request; admin only.
func (c *VerificationContract) RevokeVerificationRequest(ctx contractapi.TransactionContextInterface, admin string, requestID uint64) error {
	logger.Infof("Chaincode Call: RevokeVerificationRequest %d by '%s'", requestID, admin)
	return fail("RevokeVerificationRequest", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Verifications.RevokeRequest(tx, admin, requestID)
	}))
}
