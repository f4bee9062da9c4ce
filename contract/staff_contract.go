package contract

import (
	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// StaffContract manages the support staff roster.
// @contract:staff
type StaffContract struct {
	contractapi.Contract
	reg *Registries
}

// NewStaffContract returns the staff roster contract backed by r.
func NewStaffContract(r *Registries) *StaffContract {
	return &StaffContract{Contract: contractapi.Contract{Name: "staff"}, reg: r}
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *StaffContract) GetEvaluateTransactions() []string {
	return []string{"IsStaff", "ListStaff"}
}

// BootstrapStaff creates the roster with root as its first manager. Once it
// runs, support admin actions require roster membership.
func (c *StaffContract) BootstrapStaff(ctx contractapi.TransactionContextInterface, root string) error {
	logger.Infof("Chaincode Call: BootstrapStaff '%s'", root)
	return fail("BootstrapStaff", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Staff.Bootstrap(tx, root)
	}))
}

// GrantStaff adds member to the roster or changes its manager flag.
func (c *StaffContract) GrantStaff(ctx contractapi.TransactionContextInterface, manager, member string, asManager bool) error {
	logger.Infof("Chaincode Call: GrantStaff '%s' (manager=%t) by '%s'", member, asManager, manager)
	return fail("GrantStaff", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Staff.Grant(tx, manager, member, asManager)
	}))
}

// RevokeStaff removes member from the roster.
func (c *StaffContract) RevokeStaff(ctx contractapi.TransactionContextInterface, manager, member string) error {
	logger.Infof("Chaincode Call: RevokeStaff '%s' by '%s'", member, manager)
	return fail("RevokeStaff", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Staff.Revoke(tx, manager, member)
	}))
}

// IsStaff reports whether id is on the roster.
func (c *StaffContract) IsStaff(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	ok, err := ledger.Do(ctx, func(tx *ledger.Tx) (bool, error) {
		return c.reg.Staff.IsStaff(tx, id)
	})
	return ok, fail("IsStaff", err)
}

// ListStaff returns the roster in grant order.
func (c *StaffContract) ListStaff(ctx contractapi.TransactionContextInterface) ([]model.StaffMember, error) {
	list, err := ledger.Do(ctx, c.reg.Staff.List)
	return list, fail("ListStaff", err)
}
