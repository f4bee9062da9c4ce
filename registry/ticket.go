package registry

import (
	"fmt"

	"educhain/ledger"
	"educhain/model"
	"educhain/sentinel"

	"github.com/hyperledger/fabric/common/flogging"
)

var ticketLogger = flogging.MustGetLogger("educhain.registry.support")

const ticketObjectType = "SupportTicket"

// Tickets owns support tickets, the per-user ticket index and the open-ticket
// index. A ticket stays in the open index until it enters Closed.
type Tickets struct {
	staff StaffDirectory
}

// NewTickets returns the ticket registry. A nil staff directory leaves admin
// checks at authentication only.
func NewTickets(staff StaffDirectory) *Tickets {
	return &Tickets{staff: staff}
}

func (r *Tickets) store(tx *ledger.Tx) *ledger.Store { return tx.Store(ticketNS) }

func ticketKey(id uint64) ledger.Key { return ledger.K("ticket", ledger.FormatID(id)) }

func userTickets(s *ledger.Store, user string) *ledger.Index { return s.Index("user", user) }

func openTickets(s *ledger.Store) *ledger.Index { return s.Index("open") }

// requireAdmin authenticates admin and, once a staff roster exists, requires
// roster membership.
func (r *Tickets) requireAdmin(tx *ledger.Tx, admin string) error {
	if err := tx.RequireAuth(admin); err != nil {
		return err
	}
	if r.staff == nil {
		return nil
	}
	enforced, err := r.staff.Enforced(tx)
	if err != nil {
		return err
	}
	if !enforced {
		return nil
	}
	ok, err := r.staff.IsStaff(tx, admin)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrNotStaff, admin)
	}
	return nil
}

// Submit files a new Open ticket for user.
func (r *Tickets) Submit(tx *ledger.Tx, user string, category model.TicketCategory, subject, description string) (*model.SupportTicket, error) {
	if err := tx.RequireAuth(user); err != nil {
		return nil, err
	}
	if _, err := model.ParseTicketCategory(string(category)); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrInvalidInput, err)
	}
	if err := validateRequiredString(subject, "subject", maxSubjectLen); err != nil {
		return nil, err
	}
	if err := validateOptionalString(description, "description", maxDescriptionLen); err != nil {
		return nil, err
	}

	s := r.store(tx)
	id, err := s.Next("ticket")
	if err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}
	t := model.SupportTicket{
		ObjectType:  ticketObjectType,
		ID:          id,
		User:        user,
		Subject:     subject,
		Description: description,
		Category:    category,
		Status:      model.TicketOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Put(ticketKey(id), t); err != nil {
		return nil, err
	}
	if _, err := userTickets(s, user).AddID(id); err != nil {
		return nil, err
	}
	if _, err := openTickets(s).AddID(id); err != nil {
		return nil, err
	}
	ticketLogger.Infof("Ticket %d (%s) submitted by '%s'", id, category, user)
	return &t, nil
}

// Get returns one ticket.
func (r *Tickets) Get(tx *ledger.Tx, id uint64) (*model.SupportTicket, error) {
	var t model.SupportTicket
	found, err := r.store(tx).Get(ticketKey(id), &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrTicketNotFound, id)
	}
	return &t, nil
}

// ListForUser returns the user's tickets in submission order.
func (r *Tickets) ListForUser(tx *ledger.Tx, user string) ([]model.SupportTicket, error) {
	ids, err := userTickets(r.store(tx), user).IDs()
	if err != nil {
		return nil, err
	}
	return r.resolve(tx, ids)
}

// ListOpen returns every ticket not yet closed, in submission order.
func (r *Tickets) ListOpen(tx *ledger.Tx, admin string) ([]model.SupportTicket, error) {
	if err := r.requireAdmin(tx, admin); err != nil {
		return nil, err
	}
	ids, err := openTickets(r.store(tx)).IDs()
	if err != nil {
		return nil, err
	}
	return r.resolve(tx, ids)
}

// Assign makes admin the ticket's handler and moves an Open ticket to InProgress.
func (r *Tickets) Assign(tx *ledger.Tx, admin string, id uint64) (*model.SupportTicket, error) {
	if err := r.requireAdmin(tx, admin); err != nil {
		return nil, err
	}
	t, err := r.Get(tx, id)
	if err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}
	t.Admin = admin
	if t.Status == model.TicketOpen {
		t.Status = model.TicketInProgress
	}
	t.UpdatedAt = now
	if err := r.store(tx).Put(ticketKey(id), t); err != nil {
		return nil, err
	}
	ticketLogger.Infof("Ticket %d assigned to '%s' (status %s)", id, admin, t.Status)
	return t, nil
}

// UpdateStatus moves the ticket along the transition matrix.
func (r *Tickets) UpdateStatus(tx *ledger.Tx, admin string, id uint64, status model.TicketStatus) (*model.SupportTicket, error) {
	if err := r.requireAdmin(tx, admin); err != nil {
		return nil, err
	}
	t, err := r.Get(tx, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s on ticket %d", ErrInvalidTransition, t.Status, status, id)
	}
	if err := r.transition(tx, t, status); err != nil {
		return nil, err
	}
	ticketLogger.Infof("Ticket %d moved to %s by '%s'", id, status, admin)
	return t, nil
}

// Close closes a Resolved ticket.
func (r *Tickets) Close(tx *ledger.Tx, admin string, id uint64) (*model.SupportTicket, error) {
	if err := r.requireAdmin(tx, admin); err != nil {
		return nil, err
	}
	t, err := r.Get(tx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TicketResolved {
		return nil, fmt.Errorf("%w: ticket %d is %s", ErrNotResolved, id, t.Status)
	}
	if err := r.transition(tx, t, model.TicketClosed); err != nil {
		return nil, err
	}
	ticketLogger.Infof("Ticket %d closed by '%s'", id, admin)
	return t, nil
}

// Delete removes a ticket and its index memberships, whatever its status.
func (r *Tickets) Delete(tx *ledger.Tx, admin string, id uint64) error {
	if err := r.requireAdmin(tx, admin); err != nil {
		return err
	}
	t, err := r.Get(tx, id)
	if err != nil {
		return err
	}
	s := r.store(tx)
	if _, err := userTickets(s, t.User).RemoveID(id); err != nil {
		return err
	}
	if t.Status != model.TicketClosed {
		if _, err := openTickets(s).RemoveID(id); err != nil {
			return err
		}
	}
	if err := s.Delete(ticketKey(id)); err != nil {
		return err
	}
	ticketLogger.Infof("Ticket %d deleted by '%s'", id, admin)
	return nil
}

// transition applies an already validated status change to t and persists it.
func (r *Tickets) transition(tx *ledger.Tx, t *model.SupportTicket, status model.TicketStatus) error {
	now, err := tx.Now()
	if err != nil {
		return err
	}
	s := r.store(tx)
	t.Status = status
	t.UpdatedAt = now
	if status == model.TicketClosed && t.ClosedAt.IsZero() {
		t.ClosedAt = now
	}
	if status == model.TicketClosed {
		if _, err := openTickets(s).RemoveID(t.ID); err != nil {
			return err
		}
	}
	return s.Put(ticketKey(t.ID), t)
}

func (r *Tickets) resolve(tx *ledger.Tx, ids []uint64) ([]model.SupportTicket, error) {
	s := r.store(tx)
	out := []model.SupportTicket{}
	for _, id := range ids {
		var t model.SupportTicket
		found, err := s.Get(ticketKey(id), &t)
		if err != nil {
			return nil, err
		}
		if !found {
			ticketLogger.Warningf("Ticket %d is indexed but missing. Skipping.", id)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
