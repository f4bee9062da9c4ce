package model

import "time"

// Certificate is minted when an institution completes a course for a student.
// Status is true while the certificate is active and false once the issuing
// institution revokes it; the record itself is never deleted.
type Certificate struct {
	ObjectType  string    `json:"objectType"`
	ID          uint64    `json:"id"`
	Student     string    `json:"student"`
	CourseID    uint64    `json:"courseId"`
	Institution string    `json:"institution"`
	IssuedAt    time.Time `json:"issuedAt"`
	Metadata    string    `json:"metadata"`
	Status      bool      `json:"status"`
}

// RevokedCertificate is an entry in the admin-curated revocation ledger.
type RevokedCertificate struct {
	ObjectType    string    `json:"objectType"`
	CertificateID uint64    `json:"certificateId"`
	RevokedBy     string    `json:"revokedBy"`
	Reason        string    `json:"reason"`
	RevokedAt     time.Time `json:"revokedAt"`
}

// RevocationDetails answers GetRevocationDetails; Found is false when the id was
// never revoked and the remaining fields are then zero.
type RevocationDetails struct {
	Found     bool      `json:"found"`
	RevokedBy string    `json:"revokedBy"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revokedAt"`
}
