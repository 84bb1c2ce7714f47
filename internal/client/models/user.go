package models

// User is a local account. FirebaseUID holds the remote identity id once the
// account is linked to the document store.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	FirebaseUID  *string
	CreatedAt    int64
	UpdatedAt    int64
}

// Session is the active identity resolved before any remote operation.
type Session struct {
	UserID      int64
	IdentityID  string
	AccessToken string
}

// HasIdentity reports whether remote sync is possible.
func (s Session) HasIdentity() bool {
	return s.UserID > 0 && s.IdentityID != ""
}
