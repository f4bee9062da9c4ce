package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// CertificateContract exposes the certificate registry.
// @contract:certificate
type CertificateContract struct {
	contractapi.Contract
	reg *Registries
}

// NewCertificateContract returns the certificate contract backed by r.
func NewCertificateContract(r *Registries) *CertificateContract {
	return &CertificateContract{Contract: contractapi.Contract{Name: "certificate"}, reg: r}
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *CertificateContract) GetEvaluateTransactions() []string {
	return []string{"VerifyCertificate", "ListCertificates"}
}

// IssueCertificate issues a certificate for student on behalf of institution and returns its id.
func (c *CertificateContract) IssueCertificate(ctx contractapi.TransactionContextInterface, student string, courseID uint64, institution, metadata string) (uint64, error) {
	logger.Infof("Chaincode Call: IssueCertificate for '%s' course %d by '%s'", student, courseID, institution)
	id, err := ledger.Do(ctx, func(tx *ledger.Tx) (uint64, error) {
		return c.reg.Certificates.Issue(tx, student, courseID, institution, metadata)
	})
	return id, fail("IssueCertificate", err)
}

// VerifyCertificate returns the certificate with the given id.
func (c *CertificateContract) VerifyCertificate(ctx contractapi.TransactionContextInterface, id uint64) (*model.Certificate, error) {
	logger.Debugf("Chaincode Call: VerifyCertificate %d", id)
	cert, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.Certificate, error) {
		return c.reg.Certificates.Verify(tx, id)
	})
	return cert, fail("VerifyCertificate", err)
}

// RevokeCertificate clears the certificate's status; only the issuing institution may call it.
func (c *CertificateContract) RevokeCertificate(ctx contractapi.TransactionContextInterface, id uint64) error {
	logger.Infof("Chaincode Call: certificate.RevokeCertificate %d", id)
	return fail("RevokeCertificate", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Certificates.Revoke(tx, id)
	}))
}

// ListCertificates returns student's certificates in issuance order.
func (c *CertificateContract) ListCertificates(ctx contractapi.TransactionContextInterface, student string) ([]model.Certificate, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]model.Certificate, error) {
		return c.reg.Certificates.ListForStudent(tx, student)
	})
	return list, fail("ListCertificates", err)
}
