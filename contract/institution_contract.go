package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// InstitutionContract exposes the institution registry.
// @contract:institution
type InstitutionContract struct {
	contractapi.Contract
	reg *Registries
}

// NewInstitutionContract returns the institution contract backed by r.
func NewInstitutionContract(r *Registries) *InstitutionContract {
	return &InstitutionContract{Contract: contractapi.Contract{Name: "institution"}, reg: r}
}

// Instantiate is called during chaincode instantiation or upgrade.
func (c *InstitutionContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("educhain instantiated/upgraded")
}

// GetEvaluateTransactions lists the read-only functions.
func (c *InstitutionContract) GetEvaluateTransactions() []string {
	return []string{"GetInstitution", "ListInstitutions", "IsInstitutionVerified", "GetAdmin"}
}

// SetAdmin configures the institution registry admin once.
func (c *InstitutionContract) SetAdmin(ctx contractapi.TransactionContextInterface, admin string) error {
	logger.Infof("Chaincode Call: institution.SetAdmin '%s'", admin)
	return fail("SetAdmin", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Institutions.SetAdmin(tx, admin)
	}))
}

// GetAdmin returns the institution registry admin, or "" if unset.
func (c *InstitutionContract) GetAdmin(ctx contractapi.TransactionContextInterface) (string, error) {
	admin, err := ledger.Do(ctx, func(tx *ledger.Tx) (string, error) {
		return c.reg.Institutions.Admin(tx)
	})
	return admin, fail("GetAdmin", err)
}

// RegisterInstitution records an unverified institution and returns its id.
func (c *InstitutionContract) RegisterInstitution(ctx contractapi.TransactionContextInterface, name, wallet, metadata string) (uint64, error) {
	logger.Infof("Chaincode Call: RegisterInstitution '%s' for wallet '%s'", name, wallet)
	id, err := ledger.Do(ctx, func(tx *ledger.Tx) (uint64, error) {
		return c.reg.Institutions.Register(tx, name, wallet, metadata)
	})
	return id, fail("RegisterInstitution", err)
}

// VerifyInstitution marks the institution verified; admin only.
func (c *InstitutionContract) VerifyInstitution(ctx contractapi.TransactionContextInterface, id uint64, admin string) error {
	logger.Infof("Chaincode Call: VerifyInstitution %d by '%s'", id, admin)
	return fail("VerifyInstitution", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Institutions.Verify(tx, id, admin)
	}))
}

// GetInstitution returns the institution with the given id.
func (c *InstitutionContract) GetInstitution(ctx contractapi.TransactionContextInterface, id uint64) (*model.Institution, error) {
	logger.Debugf("Chaincode Call: GetInstitution %d", id)
	inst, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.Institution, error) {
		return c.reg.Institutions.Get(tx, id)
	})
	return inst, fail("GetInstitution", err)
}

// RemoveInstitution deletes an institution that has issued no certificates; admin only.
func (c *InstitutionContract) RemoveInstitution(ctx contractapi.TransactionContextInterface, id uint64, admin string) error {
	logger.Infof("Chaincode Call: RemoveInstitution %d by '%s'", id, admin)
	return fail("RemoveInstitution", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Institutions.Remove(tx, id, admin)
	}))
}

// ListInstitutions returns every institution in registration order.
func (c *InstitutionContract) ListInstitutions(ctx contractapi.TransactionContextInterface) ([]model.Institution, error) {
	logger.Debug("Chaincode Call: ListInstitutions")
	list, err := ledger.Do(ctx, c.reg.Institutions.List)
	return list, fail("ListInstitutions", err)
}

// IsInstitutionVerified reports whether the institution owning wallet is verified.
func (c *InstitutionContract) IsInstitutionVerified(ctx contractapi.TransactionContextInterface, wallet string) (bool, error) {
	ok, err := ledger.Do(ctx, func(tx *ledger.Tx) (bool, error) {
		return c.reg.Institutions.IsVerified(tx, wallet)
	})
	return ok, fail("IsInstitutionVerified", err)
}
