// File: model/staff.go
package model

import "time"

// StaffMember is an entry in the support staff roster. Once a roster exists,
// only its members may act as admins on support tickets.
type StaffMember struct {
	ObjectType string    `json:"objectType"` // Set to the roster object type (StaffMember)
	ID         string    `json:"id"`         // Client identity of the staff member
	Manager    bool      `json:"manager"`    // Whether this member may grant and revoke others
	GrantedBy  string    `json:"grantedBy"`  // Identity that added this member
	GrantedAt  time.Time `json:"grantedAt"`  // Transaction time of the grant
}
