package account

import "time"

// Account is the persisted identity record. PasswordHash holds the one-way
// credential digest; it must never appear in an outward-facing response.
type Account struct {
	ID                int64
	Username          string
	PasswordHash      string
	Gender            string
	BirthDate         *time.Time
	ProfilePictureURL string
	Active            bool
}

// View is the sanitized projection of an Account returned to clients.
// The credential digest is omitted by construction.
type View struct {
	ID                int64   `json:"id"`
	Username          string  `json:"username"`
	Gender            string  `json:"gender"`
	BirthDate         *string `json:"birthDate"`
	ProfilePictureURL string  `json:"profilePictureUrl"`
}

// birthDateLayout is the ISO calendar date format accepted on registration
// and used when rendering views.
const birthDateLayout = "2006-01-02"

// Sanitize returns the outward-facing view of the account.
func (a Account) Sanitize() View {
	v := View{
		ID:                a.ID,
		Username:          a.Username,
		Gender:            a.Gender,
		ProfilePictureURL: a.ProfilePictureURL,
	}
	if a.BirthDate != nil {
		s := a.BirthDate.Format(birthDateLayout)
		v.BirthDate = &s
	}
	return v
}
