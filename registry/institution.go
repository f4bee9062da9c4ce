package registry

import (
	"fmt"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var instLogger = flogging.MustGetLogger("educhain.registry.institution")

const institutionObjectType = "Institution"

// Institutions owns institution records, the global institution index and a
// per-wallet index used to answer verification lookups by identity.
type Institutions struct {
	issuance IssuanceLedger
}

// NewInstitutions returns the institution registry. issuance is consulted
// before an institution may be removed.
func NewInstitutions(issuance IssuanceLedger) *Institutions {
	return &Institutions{issuance: issuance}
}

func (r *Institutions) store(tx *ledger.Tx) *ledger.Store { return tx.Store(institutionNS) }

func institutionKey(id uint64) ledger.Key { return ledger.K("inst", ledger.FormatID(id)) }

// SetAdmin configures the identity allowed to verify and remove institutions.
func (r *Institutions) SetAdmin(tx *ledger.Tx, admin string) error {
	if err := setAdmin(tx, institutionNS, admin); err != nil {
		return err
	}
	instLogger.Infof("Institution registry admin set to '%s'", admin)
	return nil
}

// Admin returns the configured admin, or "" if none.
func (r *Institutions) Admin(tx *ledger.Tx) (string, error) {
	return getAdmin(tx, institutionNS)
}

// Register records a new unverified institution.
func (r *Institutions) Register(tx *ledger.Tx, name, wallet, metadata string) (uint64, error) {
	if err := validateRequiredString(name, "name", maxNameLen); err != nil {
		return 0, err
	}
	if err := validateIdentity(wallet, "wallet"); err != nil {
		return 0, err
	}
	if err := validateOptionalString(metadata, "metadata", maxMetadataLen); err != nil {
		return 0, err
	}

	s := r.store(tx)
	id, err := s.Next("inst")
	if err != nil {
		return 0, err
	}
	now, err := tx.Now()
	if err != nil {
		return 0, err
	}
	inst := model.Institution{
		ObjectType: institutionObjectType,
		ID:         id,
		Name:       name,
		Wallet:     wallet,
		Verified:   false,
		Metadata:   metadata,
		CreatedAt:  now,
	}
	if err := s.Put(institutionKey(id), inst); err != nil {
		return 0, err
	}
	if _, err := s.Index("all").AddID(id); err != nil {
		return 0, err
	}
	if _, err := s.Index("by-wallet", wallet).AddID(id); err != nil {
		return 0, err
	}
	instLogger.Infof("Institution %d '%s' registered for wallet '%s'", id, name, wallet)
	return id, nil
}

// Verify flips the institution's verified flag. Admin only.
func (r *Institutions) Verify(tx *ledger.Tx, id uint64, admin string) error {
	if err := requireAdmin(tx, institutionNS, admin); err != nil {
		return err
	}
	inst, err := r.Get(tx, id)
	if err != nil {
		return err
	}
	if inst.Verified {
		instLogger.Infof("Institution %d is already verified. No action needed.", id)
		return nil
	}
	inst.Verified = true
	if err := r.store(tx).Put(institutionKey(id), inst); err != nil {
		return err
	}
	instLogger.Infof("Institution %d verified by '%s'", id, admin)
	return nil
}

// Get returns one institution.
func (r *Institutions) Get(tx *ledger.Tx, id uint64) (*model.Institution, error) {
	var inst model.Institution
	found, err := r.store(tx).Get(institutionKey(id), &inst)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrInstitutionNotFound, id)
	}
	return &inst, nil
}

// Remove deletes an institution that has never issued a certificate. Admin only.
func (r *Institutions) Remove(tx *ledger.Tx, id uint64, admin string) error {
	if err := requireAdmin(tx, institutionNS, admin); err != nil {
		return err
	}
	inst, err := r.Get(tx, id)
	if err != nil {
		return err
	}
	issued, err := r.issuance.HasIssued(tx, inst.Wallet)
	if err != nil {
		return fmt.Errorf("failed to check issued certificates for institution %d: %w", id, err)
	}
	if issued {
		return fmt.Errorf("%w: institution %d", ErrHasCertificates, id)
	}

	s := r.store(tx)
	if err := s.Delete(institutionKey(id)); err != nil {
		return err
	}
	if _, err := s.Index("all").RemoveID(id); err != nil {
		return err
	}
	if _, err := s.Index("by-wallet", inst.Wallet).RemoveID(id); err != nil {
		return err
	}
	instLogger.Infof("Institution %d removed by '%s'", id, admin)
	return nil
}

// List returns all live institutions in registration order.
func (r *Institutions) List(tx *ledger.Tx) ([]model.Institution, error) {
	s := r.store(tx)
	ids, err := s.Index("all").IDs()
	if err != nil {
		return nil, err
	}
	out := []model.Institution{}
	for _, id := range ids {
		var inst model.Institution
		found, err := s.Get(institutionKey(id), &inst)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, inst)
		}
	}
	return out, nil
}

// IsVerified reports whether any institution registered under wallet is verified.
func (r *Institutions) IsVerified(tx *ledger.Tx, wallet string) (bool, error) {
	s := r.store(tx)
	ids, err := s.Index("by-wallet", wallet).IDs()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		var inst model.Institution
		found, err := s.Get(institutionKey(id), &inst)
		if err != nil {
			return false, err
		}
		if found && inst.Verified {
			return true, nil
		}
	}
	return false, nil
}
