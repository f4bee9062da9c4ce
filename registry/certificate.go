package registry

import (
	"fmt"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var certLogger = flogging.MustGetLogger("educhain.registry.certificate")

const certificateObjectType = "Certificate"

// Certificates owns certificate records plus per-student and per-institution
// certificate indices. Records are never deleted; revocation only clears Status.
type Certificates struct{}

// NewCertificates returns the certificate registry.
func NewCertificates() *Certificates { return &Certificates{} }

func (c *Certificates) store(tx *ledger.Tx) *ledger.Store { return tx.Store(certificateNS) }

func certificateKey(id uint64) ledger.Key { return ledger.K("cert", ledger.FormatID(id)) }

// Issue mints an active certificate. The institution must be the caller.
func (c *Certificates) Issue(tx *ledger.Tx, student string, courseID uint64, institution, metadata string) (uint64, error) {
	if err := tx.RequireAuth(institution); err != nil {
		return 0, err
	}
	if err := validateIdentity(student, "student"); err != nil {
		return 0, err
	}
	if err := validateOptionalString(metadata, "metadata", maxMetadataLen); err != nil {
		return 0, err
	}

	s := c.store(tx)
	id, err := s.Next("cert")
	if err != nil {
		return 0, err
	}
	now, err := tx.Now()
	if err != nil {
		return 0, err
	}
	cert := model.Certificate{
		ObjectType:  certificateObjectType,
		ID:          id,
		Student:     student,
		CourseID:    courseID,
		Institution: institution,
		IssuedAt:    now,
		Metadata:    metadata,
		Status:      true,
	}
	if err := s.Put(certificateKey(id), cert); err != nil {
		return 0, err
	}
	if _, err := s.Index("by-student", student).AddID(id); err != nil {
		return 0, err
	}
	if _, err := s.Index("by-institution", institution).AddID(id); err != nil {
		return 0, err
	}
	certLogger.Infof("Certificate %d issued to '%s' for course %d by '%s'", id, student, courseID, institution)
	return id, nil
}

// Verify returns the certificate record, active or not.
func (c *Certificates) Verify(tx *ledger.Tx, id uint64) (*model.Certificate, error) {
	var cert model.Certificate
	found, err := c.store(tx).Get(certificateKey(id), &cert)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrCertificateNotFound, id)
	}
	return &cert, nil
}

// Revoke marks the certificate inactive. Only the issuing institution may do so.
func (c *Certificates) Revoke(tx *ledger.Tx, id uint64) error {
	cert, err := c.Verify(tx, id)
	if err != nil {
		return err
	}
	if err := tx.RequireAuth(cert.Institution); err != nil {
		return err
	}
	if !cert.Status {
		certLogger.Infof("Certificate %d is already inactive. No action needed.", id)
		return nil
	}
	cert.Status = false
	if err := c.store(tx).Put(certificateKey(id), cert); err != nil {
		return err
	}
	certLogger.Infof("Certificate %d revoked by '%s'", id, cert.Institution)
	return nil
}

// ListForStudent returns the student's certificates in issuance order, skipping
// index entries that no longer resolve.
func (c *Certificates) ListForStudent(tx *ledger.Tx, student string) ([]model.Certificate, error) {
	s := c.store(tx)
	ids, err := s.Index("by-student", student).IDs()
	if err != nil {
		return nil, err
	}
	certs := []model.Certificate{}
	for _, id := range ids {
		var cert model.Certificate
		found, err := s.Get(certificateKey(id), &cert)
		if err != nil {
			return nil, err
		}
		if !found {
			certLogger.Warningf("Certificate %d indexed for '%s' does not resolve. Skipping.", id, student)
			continue
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// HasIssued reports whether institution has issued at least one certificate.
func (c *Certificates) HasIssued(tx *ledger.Tx, institution string) (bool, error) {
	empty, err := c.store(tx).Index("by-institution", institution).Empty()
	if err != nil {
		return false, err
	}
	return !empty, nil
}
