package registry

import (
	"fmt"
	"time"

	"educhain/ledger"
	"educhain/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var verifLogger = flogging.MustGetLogger("educhain.registry.verification")

const verificationRequestObjectType = "VerificationRequest"

// Verifications owns certificate display snapshots and the verification
// requests filed against them.
type Verifications struct{}

// NewVerifications returns the verification registry.
func NewVerifications() *Verifications { return &Verifications{} }

func (r *Verifications) store(tx *ledger.Tx) *ledger.Store { return tx.Store(verificationNS) }

func snapshotKey(certificateID uint64) ledger.Key {
	return ledger.K("snapshot", ledger.FormatID(certificateID))
}

func requestKey(requestID uint64) ledger.Key {
	return ledger.K("request", ledger.FormatID(requestID))
}

func certificateRequests(s *ledger.Store, certificateID uint64) *ledger.Index {
	return s.Index("cert-requests", ledger.FormatID(certificateID))
}

// SetAdmin configures the identity that seeds snapshots and revokes requests.
func (r *Verifications) SetAdmin(tx *ledger.Tx, admin string) error {
	if err := setAdmin(tx, verificationNS, admin); err != nil {
		return err
	}
	verifLogger.Infof("Verification registry admin set to '%s'", admin)
	return nil
}

// RegisterCertificate stores (or replaces) the valid snapshot for certificateID.
func (r *Verifications) RegisterCertificate(tx *ledger.Tx, admin string, certificateID uint64, student, course, institution string, issuanceDate time.Time) error {
	if err := requireAdmin(tx, verificationNS, admin); err != nil {
		return err
	}
	for _, f := range []struct{ v, name string }{{student, "student"}, {course, "course"}, {institution, "institution"}} {
		if err := validateOptionalString(f.v, f.name, maxNameLen); err != nil {
			return err
		}
	}
	details := model.CertificateDetails{
		Student:      student,
		Course:       course,
		Institution:  institution,
		IssuanceDate: issuanceDate.UTC(),
		Valid:        true,
	}
	if err := r.store(tx).Put(snapshotKey(certificateID), details); err != nil {
		return err
	}
	verifLogger.Infof("Snapshot registered for certificate %d by '%s'", certificateID, admin)
	return nil
}

// Verify returns the snapshot for certificateID. A missing snapshot is not an
// error: the result is empty with Valid false.
func (r *Verifications) Verify(tx *ledger.Tx, certificateID uint64) (*model.CertificateDetails, error) {
	var details model.CertificateDetails
	found, err := r.store(tx).Get(snapshotKey(certificateID), &details)
	if err != nil {
		return nil, err
	}
	if !found {
		verifLogger.Debugf("No snapshot for certificate %d", certificateID)
		return &model.CertificateDetails{}, nil
	}
	return &details, nil
}

// SubmitRequest files a verification request by requester against an existing snapshot.
func (r *Verifications) SubmitRequest(tx *ledger.Tx, certificateID uint64, requester string) (uint64, error) {
	if err := tx.RequireAuth(requester); err != nil {
		return 0, err
	}
	s := r.store(tx)
	exists, err := s.Has(snapshotKey(certificateID))
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %d", ErrSnapshotNotFound, certificateID)
	}
	id, err := s.Next("request")
	if err != nil {
		return 0, err
	}
	now, err := tx.Now()
	if err != nil {
		return 0, err
	}
	req := model.VerificationRequest{
		ObjectType:    verificationRequestObjectType,
		RequestID:     id,
		CertificateID: certificateID,
		Requester:     requester,
		Timestamp:     now,
	}
	if err := s.Put(requestKey(id), req); err != nil {
		return 0, err
	}
	if _, err := certificateRequests(s, certificateID).AddID(id); err != nil {
		return 0, err
	}
	verifLogger.Infof("Verification request %d for certificate %d submitted by '%s'", id, certificateID, requester)
	return id, nil
}

// ListRequests returns the requests filed against certificateID in submission order.
func (r *Verifications) ListRequests(tx *ledger.Tx, certificateID uint64) ([]model.VerificationRequest, error) {
	s := r.store(tx)
	ids, err := certificateRequests(s, certificateID).IDs()
	if err != nil {
		return nil, err
	}
	out := []model.VerificationRequest{}
	for _, id := range ids {
		var req model.VerificationRequest
		found, err := s.Get(requestKey(id), &req)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, req)
		}
	}
	return out, nil
}

// RevokeRequest deletes a verification request. Admin only.
func (r *Verifications) RevokeRequest(tx *ledger.Tx, admin string, requestID uint64) error {
	if err := requireAdmin(tx, verificationNS, admin); err != nil {
		return err
	}
	s := r.store(tx)
	var req model.VerificationRequest
	found, err := s.Get(requestKey(requestID), &req)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrRequestNotFound, requestID)
	}
	if _, err := certificateRequests(s, req.CertificateID).RemoveID(requestID); err != nil {
		return err
	}
	if err := s.Delete(requestKey(requestID)); err != nil {
		return err
	}
	verifLogger.Infof("Verification request %d revoked by '%s'", requestID, admin)
	return nil
}
