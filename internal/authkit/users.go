package authkit

// User is an application user. PasswordHash never leaves the store boundary;
// Profile strips it before anything is serialized.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// Profile is the public projection of a User.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile returns the public projection of the user.
func (user User) Profile() Profile {
	return Profile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
