package model

import "time"

// VerificationRequest is a third-party request to verify a certificate.
type VerificationRequest struct {
	ObjectType    string    `json:"objectType"`
	RequestID     uint64    `json:"requestId"`
	CertificateID uint64    `json:"certificateId"`
	Requester     string    `json:"requester"`
	Timestamp     time.Time `json:"timestamp"`
}

// CertificateDetails is the display snapshot served to public verification
// reads. It is a copy, not the authoritative Certificate record.
type CertificateDetails struct {
	Student      string    `json:"student"`
	Course       string    `json:"course"`
	Institution  string    `json:"institution"`
	IssuanceDate time.Time `json:"issuanceDate"`
	Valid        bool      `json:"valid"`
}
