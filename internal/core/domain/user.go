package domain

// VerificationStatus is the state of a user's identity-document review.
// The review itself happens in the document subsystem; the wallet only
// consumes the resulting flag.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// UserRole distinguishes drivers (who owe commission) from riders.
type UserRole string

const (
	RoleRider  UserRole = "RIDER"
	RoleDriver UserRole = "DRIVER"
)

// User represents a platform user within the core domain.
type User struct {
	UserID       string             `json:"userID"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	PasswordHash string             `json:"-"`
	Role         UserRole           `json:"role"`
	Verification VerificationStatus `json:"verificationStatus"`
	Suspended    bool               `json:"suspended"`
	AuthProvider string             `json:"authProvider,omitempty"` // e.g. "google"
	AuditFields
}

// IsVerified reports whether identity verification has been approved.
func (u *User) IsVerified() bool {
	return u.Verification == VerificationApproved
}
