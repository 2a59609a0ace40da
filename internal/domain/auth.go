package domain

// Credential is the narrow slice of a user record needed at sign-in time.
type Credential struct {
	UserID       string
	PasswordHash string
}
