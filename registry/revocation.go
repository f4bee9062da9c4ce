package registry

import (
	"encoding/json"
	"fmt"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var revLogger = flogging.MustGetLogger("educhain.registry.revocation")

const (
	revokedObjectType = "RevokedCertificate"

	// EventCertificateRevoked is emitted for every revocation entry.
	EventCertificateRevoked = "CertificateRevoked"
)

// Revocations is the admin-curated revocation ledger. It is keyed only by
// certificate id and never consults the certificate registry.
type Revocations struct{}

// NewRevocations returns the revocation registry.
func NewRevocations() *Revocations { return &Revocations{} }

func (r *Revocations) store(tx *ledger.Tx) *ledger.Store { return tx.Store(revocationNS) }

// revokedKey holds the first entry recorded for a certificate id.
func revokedKey(certificateID uint64) ledger.Key {
	return ledger.K("revoked", ledger.FormatID(certificateID))
}

func logKey(seq uint64) ledger.Key {
	return ledger.K("entry", ledger.FormatID(seq))
}

// SetAdmin configures the only identity allowed to revoke.
func (r *Revocations) SetAdmin(tx *ledger.Tx, admin string) error {
	if err := setAdmin(tx, revocationNS, admin); err != nil {
		return err
	}
	revLogger.Infof("Revocation registry admin set to '%s'", admin)
	return nil
}

// Revoke appends a revocation entry for certificateID and emits
// EventCertificateRevoked. Revoking an id again appends another entry while
// GetDetails keeps reporting the first one.
func (r *Revocations) Revoke(tx *ledger.Tx, caller string, certificateID uint64, reason string) (*model.RevokedCertificate, error) {
	if err := requireAdmin(tx, revocationNS, caller); err != nil {
		return nil, err
	}
	if err := validateOptionalString(reason, "reason", maxReasonLen); err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}
	entry := model.RevokedCertificate{
		ObjectType:    revokedObjectType,
		CertificateID: certificateID,
		RevokedBy:     caller,
		Reason:        reason,
		RevokedAt:     now,
	}

	s := r.store(tx)
	seq, err := s.Next("log")
	if err != nil {
		return nil, err
	}
	if err := s.Put(logKey(seq), entry); err != nil {
		return nil, err
	}
	repeat, err := s.Has(revokedKey(certificateID))
	if err != nil {
		return nil, err
	}
	if repeat {
		revLogger.Infof("Certificate %d was already revoked; appended entry %d", certificateID, seq)
	} else if err := s.Put(revokedKey(certificateID), entry); err != nil {
		return nil, err
	}
	if err := tx.SetEvent(EventCertificateRevoked, entry); err != nil {
		return nil, err
	}
	revLogger.Infof("Certificate %d added to revocation ledger by '%s'", certificateID, caller)
	return &entry, nil
}

// IsRevoked reports whether certificateID has a revocation entry.
func (r *Revocations) IsRevoked(tx *ledger.Tx, certificateID uint64) (bool, error) {
	return r.store(tx).Has(revokedKey(certificateID))
}

// ListAll returns every entry in revocation order, repeats included.
func (r *Revocations) ListAll(tx *ledger.Tx) ([]model.RevokedCertificate, error) {
	entries, err := r.store(tx).Scan("entry")
	if err != nil {
		return nil, err
	}
	out := make([]model.RevokedCertificate, 0, len(entries))
	for _, e := range entries {
		var entry model.RevokedCertificate
		if err := json.Unmarshal(e.Value, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal revocation entry %v: %w", e.Attrs, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// GetDetails returns the first revocation entry for certificateID; Found is
// false when there is none.
func (r *Revocations) GetDetails(tx *ledger.Tx, certificateID uint64) (*model.RevocationDetails, error) {
	var entry model.RevokedCertificate
	found, err := r.store(tx).Get(revokedKey(certificateID), &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return &model.RevocationDetails{Found: false}, nil
	}
	return &model.RevocationDetails{
		Found:     true,
		RevokedBy: entry.RevokedBy,
		Reason:    entry.Reason,
		RevokedAt: entry.RevokedAt,
	}, nil
}
