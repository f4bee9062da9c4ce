package registry_test

import (
	"testing"
	"time"

	"educhain/ledger"
	"educhain/model"
	"educhain/registry"
	"educhain/sentinel"

	"github.com/stretchr/testify/suite"
)

const support = "x509::CN=support-agent::CN=ca.educhain"

type TicketSuite struct {
	suite.Suite
	w *world
}

func TestTicketSuite(t *testing.T) {
	suite.Run(t, new(TicketSuite))
}

func (s *TicketSuite) SetupTest() {
	s.w = newWorld()
}

func (s *TicketSuite) submit(user, subject string) *model.SupportTicket {
	t, err := call(s.w.as(user), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Submit(tx, user, model.CategoryCertificate, subject, "details")
	})
	s.Require().NoError(err)
	return t
}

func (s *TicketSuite) get(id uint64) *model.SupportTicket {
	t, err := call(s.w, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Get(tx, id)
	})
	s.Require().NoError(err)
	return t
}

func (s *TicketSuite) update(id uint64, status model.TicketStatus) (*model.SupportTicket, error) {
	return call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.UpdateStatus(tx, support, id, status)
	})
}

func (s *TicketSuite) open() []model.SupportTicket {
	list, err := call(s.w.as(support), func(tx *ledger.Tx) ([]model.SupportTicket, error) {
		return s.w.tickets.ListOpen(tx, support)
	})
	s.Require().NoError(err)
	return list
}

// driveTo moves a fresh ticket into status through allowed transitions.
func (s *TicketSuite) driveTo(status model.TicketStatus) uint64 {
	t := s.submit(student, "drive to "+string(status))
	path := map[model.TicketStatus][]model.TicketStatus{
		model.TicketOpen:       nil,
		model.TicketInProgress: {model.TicketInProgress},
		model.TicketResolved:   {model.TicketResolved},
		model.TicketClosed:     {model.TicketResolved, model.TicketClosed},
	}[status]
	for _, st := range path {
		_, err := s.update(t.ID, st)
		s.Require().NoError(err)
	}
	s.Require().Equal(status, s.get(t.ID).Status)
	return t.ID
}

func (s *TicketSuite) TestSequentialIDsPerUser() {
	for i, subject := range []string{"a", "b", "c"} {
		t := s.submit(student, subject)
		s.Equal(uint64(i+1), t.ID)
		s.Equal(model.TicketOpen, t.Status)
		s.Empty(t.Admin)
		s.True(t.ClosedAt.IsZero())
	}
	list, err := call(s.w, func(tx *ledger.Tx) ([]model.SupportTicket, error) {
		return s.w.tickets.ListForUser(tx, student)
	})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"a", "b", "c"}, []string{list[0].Subject, list[1].Subject, list[2].Subject})
}

func (s *TicketSuite) TestSubmitValidation() {
	_, err := call(s.w.as(stranger), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Submit(tx, student, model.CategoryOther, "x", "")
	})
	s.ErrorIs(err, sentinel.ErrUnauthorized)

	_, err = call(s.w.as(student), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Submit(tx, student, model.TicketCategory("REFUND"), "x", "")
	})
	s.ErrorIs(err, sentinel.ErrInvalidInput)
}

func (s *TicketSuite) TestGetMissing() {
	_, err := call(s.w, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Get(tx, 4)
	})
	s.ErrorIs(err, registry.ErrTicketNotFound)
}

func (s *TicketSuite) TestTransitionMatrix() {
	for _, from := range model.AllTicketStatuses() {
		for _, to := range model.AllTicketStatuses() {
			s.Run(string(from)+"->"+string(to), func() {
				id := s.driveTo(from)
				_, err := s.update(id, to)
				if from.CanTransition(to) {
					s.Require().NoError(err)
					s.Equal(to, s.get(id).Status)
					return
				}
				s.ErrorIs(err, registry.ErrInvalidTransition)
				s.ErrorIs(err, sentinel.ErrInvalidTransition)
				s.Equal(from, s.get(id).Status)
			})
		}
	}
}

func (s *TicketSuite) TestAssign() {
	open := s.submit(student, "open")
	resolved := s.driveTo(model.TicketResolved)

	t, err := call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Assign(tx, support, open.ID)
	})
	s.Require().NoError(err)
	s.Equal(support, t.Admin)
	s.Equal(model.TicketInProgress, t.Status)

	t, err = call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Assign(tx, support, resolved)
	})
	s.Require().NoError(err)
	s.Equal(model.TicketResolved, t.Status)

	ids := []uint64{}
	for _, t := range s.open() {
		ids = append(ids, t.ID)
	}
	s.Equal([]uint64{open.ID, resolved}, ids)
}

func (s *TicketSuite) TestClose() {
	s.Run("requires resolved", func() {
		for _, st := range []model.TicketStatus{model.TicketOpen, model.TicketInProgress, model.TicketClosed} {
			id := s.driveTo(st)
			before := s.get(id)
			_, err := call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
				return s.w.tickets.Close(tx, support, id)
			})
			s.ErrorIs(err, registry.ErrNotResolved, st)
			s.Equal(before, s.get(id))
		}
	})

	s.Run("closes once", func() {
		id := s.driveTo(model.TicketResolved)
		s.w.h.Advance(time.Hour)
		t, err := call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
			return s.w.tickets.Close(tx, support, id)
		})
		s.Require().NoError(err)
		s.Equal(model.TicketClosed, t.Status)
		s.Require().False(t.ClosedAt.IsZero())
		s.True(t.ClosedAt.Equal(s.w.h.Now()))

		for _, o := range s.open() {
			s.NotEqual(id, o.ID)
		}

		s.w.h.Advance(time.Hour)
		_, err = call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
			return s.w.tickets.Close(tx, support, id)
		})
		s.ErrorIs(err, registry.ErrNotResolved)
		s.True(s.get(id).ClosedAt.Equal(t.ClosedAt))
	})
}

func (s *TicketSuite) TestUpdateStatusIntoClosedLeavesOpenIndex() {
	keep := s.submit(student, "keep")
	id := s.driveTo(model.TicketClosed)
	s.False(s.get(id).ClosedAt.IsZero())

	open := s.open()
	s.Require().Len(open, 1)
	s.Equal(keep.ID, open[0].ID)
}

func (s *TicketSuite) TestDelete() {
	open := s.submit(student, "open")
	closed := s.driveTo(model.TicketClosed)

	for _, id := range []uint64{open.ID, closed} {
		s.Require().NoError(s.w.as(support).run(func(tx *ledger.Tx) error {
			return s.w.tickets.Delete(tx, support, id)
		}))
	}

	_, err := call(s.w, func(tx *ledger.Tx) (*model.SupportTicket, error) {
		return s.w.tickets.Get(tx, open.ID)
	})
	s.ErrorIs(err, registry.ErrTicketNotFound)
	s.Empty(s.open())

	list, err := call(s.w, func(tx *ledger.Tx) ([]model.SupportTicket, error) {
		return s.w.tickets.ListForUser(tx, student)
	})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *TicketSuite) TestAdminChecks() {
	t := s.submit(student, "help")

	s.Run("authentication is required", func() {
		_, err := call(s.w.as(stranger), func(tx *ledger.Tx) ([]model.SupportTicket, error) {
			return s.w.tickets.ListOpen(tx, support)
		})
		s.ErrorIs(err, sentinel.ErrUnauthorized)
	})

	s.Run("any authenticated identity before the roster exists", func() {
		_, err := call(s.w.as(stranger), func(tx *ledger.Tx) ([]model.SupportTicket, error) {
			return s.w.tickets.ListOpen(tx, stranger)
		})
		s.NoError(err)
	})

	s.Run("roster members only afterwards", func() {
		s.Require().NoError(s.w.as(support).run(func(tx *ledger.Tx) error {
			return s.w.staff.Bootstrap(tx, support)
		}))
		_, err := call(s.w.as(stranger), func(tx *ledger.Tx) (*model.SupportTicket, error) {
			return s.w.tickets.Assign(tx, stranger, t.ID)
		})
		s.ErrorIs(err, registry.ErrNotStaff)
		s.Equal(model.TicketOpen, s.get(t.ID).Status)

		_, err = call(s.w.as(support), func(tx *ledger.Tx) (*model.SupportTicket, error) {
			return s.w.tickets.Assign(tx, support, t.ID)
		})
		s.NoError(err)
	})
}
