package canaima

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/cafecanaima/canaima/canaima/httperr"
)

// HashCost controls the bcrypt hash cost.
var HashCost = 12

// MinimumPassLength defines the minimum length of a password.
const MinimumPassLength = 8

// Column lengths.
const (
	MaxNameLen      = 30
	MaxFullNameLen  = 40
	MaxTelephoneLen = 15
	MaxAddressLen   = 60
	MaxEmailLen     = 120
)

// UserPart contains non-sensitive parts about the user.
type UserPart struct {
	ID               int64      `json:"id"                db:"id"`
	Name             string     `json:"name"              db:"name"`
	FullName         string     `json:"full_name"         db:"fullname"`
	Telephone        string     `json:"telephone"         db:"telephone"`
	Address          string     `json:"address"           db:"address"`
	Email            string     `json:"email"             db:"email"`
	Permission       Permission `json:"permission"        db:"permission"`
	RegistrationDate int64      `json:"registration_date" db:"registration"` // unixnano
	IsActive         bool       `json:"is_active"         db:"active"`
}

// IsZero returns true if the user is a guest.
func (u UserPart) IsZero() bool {
	return u.ID == 0
}

type User struct {
	UserPart
	Passhash []byte `json:"-" db:"passhash"`
}

// UserProfile holds the fields that a user supplies on sign up.
type UserProfile struct {
	Name      string `json:"name"      schema:"name"`
	FullName  string `json:"full_name" schema:"full_name"`
	Telephone string `json:"telephone" schema:"telephone"`
	Address   string `json:"address"   schema:"address"`
	Email     string `json:"email"     schema:"email"`
}

// Validate checks every field of the profile and normalizes the email.
func (p *UserProfile) Validate() error {
	p.Email = NormalizeEmail(p.Email)
	p.Telephone = strings.TrimSpace(p.Telephone)

	var checks = []struct {
		name  string
		value string
		max   int
	}{
		{"name", p.Name, MaxNameLen},
		{"full_name", p.FullName, MaxFullNameLen},
		{"telephone", p.Telephone, MaxTelephoneLen},
		{"address", p.Address, MaxAddressLen},
		{"email", p.Email, MaxEmailLen},
	}

	for _, check := range checks {
		if err := CheckField(check.name, check.value, check.max); err != nil {
			return err
		}
	}

	if !EmailAllowed(p.Email) {
		return ErrInvalidEmail
	}
	if !TelephoneAllowed(p.Telephone) {
		return ErrInvalidTelephone
	}

	return nil
}

// UserPatch is a partial update of a user. Nil fields are left untouched.
type UserPatch struct {
	Name      *string `json:"name"      schema:"name"`
	FullName  *string `json:"full_name" schema:"full_name"`
	Telephone *string `json:"telephone" schema:"telephone"`
	Address   *string `json:"address"   schema:"address"`
	Email     *string `json:"email"     schema:"email"`
	Password  *string `json:"password"  schema:"password"`
}

// Apply validates the patch against the given user and writes the changes into
// it. The password is not applied.
func (p UserPatch) Apply(u *UserPart) error {
	var profile = UserProfile{
		Name:      pick(p.Name, u.Name),
		FullName:  pick(p.FullName, u.FullName),
		Telephone: pick(p.Telephone, u.Telephone),
		Address:   pick(p.Address, u.Address),
		Email:     pick(p.Email, u.Email),
	}

	if err := profile.Validate(); err != nil {
		return err
	}

	u.Name = profile.Name
	u.FullName = profile.FullName
	u.Telephone = profile.Telephone
	u.Address = profile.Address
	u.Email = profile.Email

	return nil
}

// IsEmpty returns true if the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.FullName == nil && p.Telephone == nil &&
		p.Address == nil && p.Email == nil && p.Password == nil
}

func pick(v *string, or string) string {
	if v != nil {
		return *v
	}
	return or
}

// UserList is a page of users.
type UserList struct {
	Users []UserPart `json:"users"`
}

// SignedIn is returned on sign up and sign in.
type SignedIn struct {
	User  UserPart `json:"user"`
	Token string   `json:"token"`
}

var (
	ErrUserNotFound      = httperr.New(404, "user not found")
	ErrNoUsers           = httperr.New(404, "no users found")
	ErrInvalidPassword   = httperr.New(401, "invalid password")
	ErrPasswordTooShort  = httperr.New(400, "password too short")
	ErrEmailTaken        = httperr.New(409, "email or telephone already registered")
	ErrInvalidEmail      = httperr.New(400, "invalid email address")
	ErrInvalidTelephone  = httperr.New(400, "telephone contains illegal characters")
	ErrUserInactive      = httperr.New(403, "user is not active")
	ErrLastAdminStays    = httperr.New(400, "the last admin account stays")
	ErrEmptyUpdate       = httperr.New(400, "missing data")
	ErrInvalidCredential = httperr.New(401, "invalid email or password")
)

// NormalizeEmail lowercases the email and trims the spaces around it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailAllowed returns true if the string is a bare email address.
func EmailAllowed(email string) bool {
	a, err := mail.ParseAddress(email)
	return err == nil && a.Address == email
}

// TelephoneAllowed returns true if the telephone only has digits, spaces,
// dashes and a leading plus sign.
func TelephoneAllowed(tel string) bool {
	tel = strings.TrimPrefix(tel, "+")
	if tel == "" {
		return false
	}

	return strings.IndexFunc(tel, func(r rune) bool {
		return !(unicode.IsDigit(r) || r == ' ' || r == '-')
	}) == -1
}
