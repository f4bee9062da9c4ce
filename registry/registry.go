// Package registry holds the credentialing state machines. Each registry owns
// one ledger namespace and its secondary indices; registries reach one another
// only through the small interfaces declared here, sharing the caller's Tx so a
// downstream failure aborts the whole call chain.
package registry

import (
	"time"

	"educhain/ledger"
)

// Ledger namespaces, one per registry.
const (
	institutionNS  = "institution"
	courseNS       = "course"
	certificateNS  = "certificate"
	revocationNS   = "revocation"
	verificationNS = "verification"
	ticketNS       = "support"
	staffNS        = "staff"
)

// InstitutionLookup answers whether an identity acts for a verified institution.
type InstitutionLookup interface {
	IsVerified(tx *ledger.Tx, wallet string) (bool, error)
}

// CertificateIssuer mints certificates on course completion.
type CertificateIssuer interface {
	Issue(tx *ledger.Tx, student string, courseID uint64, institution, metadata string) (uint64, error)
}

// IssuanceLedger reports whether an institution identity has issued any certificate.
type IssuanceLedger interface {
	HasIssued(tx *ledger.Tx, institution string) (bool, error)
}

// StaffDirectory decides who may act as a support admin.
type StaffDirectory interface {
	Enforced(tx *ledger.Tx) (bool, error)
	IsStaff(tx *ledger.Tx, id string) (bool, error)
}

// adminRecord is the set-once admin configuration of a registry.
type adminRecord struct {
	ObjectType string    `json:"objectType"`
	Admin      string    `json:"admin"`
	SetAt      time.Time `json:"setAt"`
}

var adminKey = ledger.K("config", "admin")

// setAdmin stores admin as the namespace's admin. It succeeds exactly once.
func setAdmin(tx *ledger.Tx, namespace, admin string) error {
	if err := tx.RequireAuth(admin); err != nil {
		return err
	}
	s := tx.Store(namespace)
	exists, err := s.Has(adminKey)
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
	return s.Put(adminKey, adminRecord{ObjectType: "AdminConfig", Admin: admin, SetAt: now})
}

// requireAdmin authenticates admin and checks it is the namespace's admin.
func requireAdmin(tx *ledger.Tx, namespace, admin string) error {
	if err := tx.RequireAuth(admin); err != nil {
		return err
	}
	var rec adminRecord
	found, err := tx.Store(namespace).Get(adminKey, &rec)
	if err != nil {
		return err
	}
	if !found {
		return ErrAdminNotSet
	}
	if rec.Admin != admin {
		return ErrNotAdmin
	}
	return nil
}

// getAdmin returns the namespace's admin, or "" before SetAdmin.
func getAdmin(tx *ledger.Tx, namespace string) (string, error) {
	var rec adminRecord
	if _, err := tx.Store(namespace).Get(adminKey, &rec); err != nil {
		return "", err
	}
	return rec.Admin, nil
}
