package models

// User is the database representation of a platform user.
type User struct {
	UserID             string  `db:"user_id"`
	Name               string  `db:"name"`
	Email              string  `db:"email"`
	Phone              string  `db:"phone"`
	PasswordHash       string  `db:"password_hash"`
	Role               string  `db:"role"`
	VerificationStatus string  `db:"verification_status"`
	Suspended          bool    `db:"suspended"`
	AuthProvider       *string `db:"auth_provider"`
	AuditFields
}
