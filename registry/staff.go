package registry

import (
	"fmt"
	"strings"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var staffLogger = flogging.MustGetLogger("educhain.registry.staff")

const staffObjectType = "StaffMember"

var rootKey = ledger.K("config", "root")

// StaffRoster is the support staff directory. Before Bootstrap any
// authenticated identity may act as a support admin; afterwards only members
// may, and only managers change the roster.
type StaffRoster struct{}

// NewStaffRoster returns the roster registry.
func NewStaffRoster() *StaffRoster { return &StaffRoster{} }

func (r *StaffRoster) store(tx *ledger.Tx) *ledger.Store { return tx.Store(staffNS) }

func memberKey(id string) ledger.Key { return ledger.K("member", id) }

func isValidX509ID(id string) bool {
	return strings.HasPrefix(id, "x509::") || strings.HasPrefix(id, "eDUwOTo6") // base64 of "x509::"
}

// Bootstrap makes root the first member and manager. It succeeds exactly once.
func (r *StaffRoster) Bootstrap(tx *ledger.Tx, root string) error {
	if err := tx.RequireAuth(root); err != nil {
		return err
	}
	s := r.store(tx)
	exists, err := s.Has(rootKey)
	if err != nil {
		return err
	}
	if exists {
		return ErrAdminAlreadySet
	}
	now, err := tx.Now()
	if err != nil {
		return err
	}
	if err := s.Put(rootKey, adminRecord{ObjectType: "StaffRoot", Admin: root, SetAt: now}); err != nil {
		return err
	}
	if err := r.put(s, model.StaffMember{ObjectType: staffObjectType, ID: root, Manager: true, GrantedBy: root, GrantedAt: now}); err != nil {
		return err
	}
	staffLogger.Infof("Staff roster bootstrapped with root '%s'", root)
	return nil
}

// Grant adds member to the roster, or updates its manager flag if present.
// The root member stays a manager.
func (r *StaffRoster) Grant(tx *ledger.Tx, manager, member string, asManager bool) error {
	if err := r.requireManager(tx, manager); err != nil {
		return err
	}
	if err := validateIdentity(member, "member"); err != nil {
		return err
	}
	if !isValidX509ID(member) {
		staffLogger.Warningf("Granting staff membership to '%s', which does not look like an X.509 client ID", member)
	}
	s := r.store(tx)
	if !asManager {
		isRoot, err := r.isRoot(s, member)
		if err != nil {
			return err
		}
		if isRoot {
			return ErrRootStaff
		}
	}
	now, err := tx.Now()
	if err != nil {
		return err
	}
	var existing model.StaffMember
	found, err := s.Get(memberKey(member), &existing)
	if err != nil {
		return err
	}
	if found && existing.Manager == asManager {
		staffLogger.Infof("'%s' already on the roster with manager=%t. No action needed.", member, asManager)
		return nil
	}
	if err := r.put(s, model.StaffMember{ObjectType: staffObjectType, ID: member, Manager: asManager, GrantedBy: manager, GrantedAt: now}); err != nil {
		return err
	}
	staffLogger.Infof("Staff member '%s' (manager=%t) granted by '%s'", member, asManager, manager)
	return nil
}

// Revoke removes member from the roster. The root member cannot be revoked.
func (r *StaffRoster) Revoke(tx *ledger.Tx, manager, member string) error {
	if err := r.requireManager(tx, manager); err != nil {
		return err
	}
	s := r.store(tx)
	isRoot, err := r.isRoot(s, member)
	if err != nil {
		return err
	}
	if isRoot {
		return ErrRootStaff
	}
	removed, err := s.Index("roster").Remove(member)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: '%s'", ErrNotStaff, member)
	}
	if err := s.Delete(memberKey(member)); err != nil {
		return err
	}
	staffLogger.Infof("Staff member '%s' revoked by '%s'", member, manager)
	return nil
}

func (r *StaffRoster) isRoot(s *ledger.Store, member string) (bool, error) {
	var root adminRecord
	if _, err := s.Get(rootKey, &root); err != nil {
		return false, err
	}
	return member == root.Admin, nil
}

// Enforced reports whether the roster has been bootstrapped.
func (r *StaffRoster) Enforced(tx *ledger.Tx) (bool, error) {
	return r.store(tx).Has(rootKey)
}

// IsStaff reports whether id is on the roster.
func (r *StaffRoster) IsStaff(tx *ledger.Tx, id string) (bool, error) {
	return r.store(tx).Index("roster").Contains(id)
}

// List returns the roster in grant order.
func (r *StaffRoster) List(tx *ledger.Tx) ([]model.StaffMember, error) {
	s := r.store(tx)
	ids, err := s.Index("roster").Members()
	if err != nil {
		return nil, err
	}
	members := []model.StaffMember{}
	for _, id := range ids {
		var m model.StaffMember
		found, err := s.Get(memberKey(id), &m)
		if err != nil {
			return nil, err
		}
		if !found {
			staffLogger.Warningf("Roster lists '%s' but no member record exists. Skipping.", id)
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *StaffRoster) put(s *ledger.Store, m model.StaffMember) error {
	if err := s.Put(memberKey(m.ID), m); err != nil {
		return err
	}
	_, err := s.Index("roster").Add(m.ID)
	return err
}

func (r *StaffRoster) requireManager(tx *ledger.Tx, manager string) error {
	if err := tx.RequireAuth(manager); err != nil {
		return err
	}
	var m model.StaffMember
	found, err := r.store(tx).Get(memberKey(manager), &m)
	if err != nil {
		return err
	}
	if !found || !m.Manager {
		return fmt.Errorf("%w: '%s'", ErrNotManager, manager)
	}
	return nil
}
