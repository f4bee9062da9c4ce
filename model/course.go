package model

import "time"

// Course is published by a verified institution.
type Course struct {
	ObjectType    string    `json:"objectType"`
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Institution   string    `json:"institution"` // Owning institution identity
	Price         uint64    `json:"price"`       // Opaque amount, never settled on-chain
	Metadata      string    `json:"metadata"`
	CertificateID uint64    `json:"certificateId"` // Certificate template reference
	CreatedAt     time.Time `json:"createdAt"`
}

// Enrollment binds one student to one course. Keyed by (CourseID, Student).
type Enrollment struct {
	ObjectType  string     `json:"objectType"`
	CourseID    uint64     `json:"courseId"`
	Student     string     `json:"student"`
	EnrolledAt  time.Time  `json:"enrolledAt"`
	Completed   bool       `json:"completed"`
	CompletedAt time.Time  `json:"completedAt" metadata:",optional"` // Zero until the first completion
}
