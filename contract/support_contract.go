package contract

import (
	"fmt"

	"educhain/ledger"
	"educhain/model"
	"educhain/sentinel"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// SupportContract exposes the support ticket registry.
// @contract:support
type SupportContract struct {
	contractapi.Contract
	reg *Registries
}

// NewSupportContract returns the support ticket contract backed by r.
func NewSupportContract(r *Registries) *SupportContract {
	return &SupportContract{Contract: contractapi.Contract{Name: "support"}, reg: r}
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *SupportContract) GetEvaluateTransactions() []string {
	return []string{"GetTicket", "ListUserTickets", "ListOpenTickets"}
}

// SubmitTicket opens a ticket for user.
func (c *SupportContract) SubmitTicket(ctx contractapi.TransactionContextInterface, user, category, subject, description string) (*model.SupportTicket, error) {
	logger.Infof("Chaincode Call: SubmitTicket (%s) by '%s'", category, user)
	cat, err := model.ParseTicketCategory(category)
	if err != nil {
		return nil, fail("SubmitTicket", fmt.Errorf("%w: %v", sentinel.ErrInvalidInput, err))
	}
	t, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return c.reg.Tickets.Submit(tx, user, cat, subject, description)
	})
	return t, fail("SubmitTicket", err)
}

// GetTicket returns the ticket with the given id.
func (c *SupportContract) GetTicket(ctx contractapi.TransactionContextInterface, id uint64) (*model.SupportTicket, error) {
	logger.Debugf("Chaincode Call: GetTicket %d", id)
	t, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return c.reg.Tickets.Get(tx, id)
	})
	return t, fail("GetTicket", err)
}

// ListUserTickets returns user's tickets in submission order.
func (c *SupportContract) ListUserTickets(ctx contractapi.TransactionContextInterface, user string) ([]model.SupportTicket, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]model.SupportTicket, error) {
		return c.reg.Tickets.ListForUser(tx, user)
	})
	return list, fail("ListUserTickets", err)
}

// ListOpenTickets returns every ticket not yet closed.
func (c *SupportContract) ListOpenTickets(ctx contractapi.TransactionContextInterface, admin string) ([]model.SupportTicket, error) {
	list, err := ledger.Do(ctx, func(tx *ledger.Tx) ([]model.SupportTicket, error) {
		return c.reg.Tickets.ListOpen(tx, admin)
	})
	return list, fail("ListOpenTickets", err)
}

// AssignTicket makes admin the ticket's handler; an open ticket moves to in progress.
func (c *SupportContract) AssignTicket(ctx contractapi.TransactionContextInterface, admin string, id uint64) (*model.SupportTicket, error) {
	logger.Infof("Chaincode Call: AssignTicket %d to '%s'", id, admin)
	t, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return c.reg.Tickets.Assign(tx, admin, id)
	})
	return t, fail("AssignTicket", err)
}

// UpdateTicketStatus moves the ticket to status.
func (c *SupportContract) UpdateTicketStatus(ctx contractapi.TransactionContextInterface, admin string, id uint64, status string) (*model.SupportTicket, error) {
	logger.Infof("Chaincode Call: UpdateTicketStatus %d -> %s by '%s'", id, status, admin)
	st, err := model.ParseTicketStatus(status)
	if err != nil {
		return nil, fail("UpdateTicketStatus", fmt.Errorf("%w: %v", sentinel.ErrInvalidInput, err))
	}
	t, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return c.reg.Tickets.UpdateStatus(tx, admin, id, st)
	})
	return t, fail("UpdateTicketStatus", err)
}

// CloseTicket closes a resolved ticket.
func (c *SupportContract) CloseTicket(ctx contractapi.TransactionContextInterface, admin string, id uint64) (*model.SupportTicket, error) {
	logger.Infof("Chaincode Call: CloseTicket %d by '%s'", id, admin)
	t, err := ledger.Do(ctx, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return c.reg.Tickets.Close(tx, admin, id)
	})
	return t, fail("CloseTicket", err)
}

// DeleteTicket removes the ticket whatever its status.
func (c *SupportContract) DeleteTicket(ctx contractapi.TransactionContextInterface, admin string, id uint64) error {
	logger.Infof("Chaincode Call: DeleteTicket %d by '%s'", id, admin)
	return fail("DeleteTicket", ledger.Run(ctx, func(tx *ledger.Tx) error {
		return c.reg.Tickets.Delete(tx, admin, id)
	}))
}
