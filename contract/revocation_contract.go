package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// RevocationContract exposes the admin-curated revocation ledger.
// @contract:revocation
type RevocationContract struct {
	contractapi.Contract
	reg *Registries
}

// NewRevocationContract returns the revocation contract backed by r.
func NewRevocationContract(r *Registries) *RevocationContract {
	return &RevocationContract{Contract: contractapi.Contract{Name: "revocation"}, reg: r}
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *RevocationContract) GetEvaluateTransactions() []string {
	return []string{"IsRevoked", "ListRevokedCertificates", "GetRevocationDetails"}
}

// SetAdmin configures the only identity allowed to revoke.
func (c *RevocationContract) SetAdmin(ctx contractapi.TransactionContextInterface, admin string) error {
	logger.Infof("Chaincode Call: revocation.SetAdmin '%s'", admin)
	return fail("SetAdmin", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Revocations.SetAdmin(tx, admin)
	}))
}

// RevokeCertificate records a revocation and emits a CertificateRevoked event.
func (c *RevocationContract) RevokeCertificate(ctx contractapi.TransactionContextInterface, caller string, certificateID uint64, reason string) error {
	logger.Infof("Chaincode Call: revocation.RevokeCertificate %d by '%s'", certificateID, caller)
	return fail("RevokeCertificate", ledger.Run(ctx, func(tx *ledger.Tx) error {
		_, err := c.reg.Revocations.Revoke(tx, caller, certificateID, reason)
		return err
	}))
}

// IsRevoked reports whether the certificate has a revocation entry.
func (c *RevocationContract) IsRevoked(ctx contractapi.TransactionContextInterface, certificateID uint64) (bool, error) {
	ok, err := ledger.Do(ctx, func(tx *ledger.Tx) (bool, error) {
		return c.reg.Revocations.IsRevoked(tx, certificateID)
	})
	return ok, fail("IsRevoked", err)
}

// ListRevokedCertificates returns the revocation log in order.
func (c *RevocationContract) ListRevokedCertificates(ctx contractapi.TransactionContextInterface) ([]model.RevokedCertificate, error) {
	list, err := ledger.Do(ctx, c.reg.Revocations.ListAll)
	return list, fail("ListRevokedCertificates", err)
}

// GetRevocationDetails returns the first revocation entry for the certificate.
func (c *RevocationContract) GetRevocationDetails(ctx contractapi.TransactionContextInterface, certificateID uint64) (*model.RevocationDetails, error) {
	d, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.RevocationDetails, error) {
		return c.reg.Revocations.GetDetails(tx, certificateID)
	})
	return d, fail("GetRevocationDetails", err)
}
