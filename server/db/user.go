package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, name, fullname, telephone, address, email, permission,
	registration, active`

func VerifyPassword(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))

	// If the error is a mismatch, then we return an invalid password.
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return canaima.ErrInvalidPassword
	}

	// Wrap will return nil if the error is nil.
	return errors.Wrap(err, "Failed to compare password")
}

func hashPassword(password string) ([]byte, error) {
	if len(password) < canaima.MinimumPassLength {
		return nil, canaima.ErrPasswordTooShort
	}

	p, err := bcrypt.GenerateFromPassword([]byte(password), canaima.HashCost)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to generate password")
	}

	return p, nil
}

// NewUser validates the profile and hashes the password into a new user.
func NewUser(profile canaima.UserProfile, password string, perm canaima.Permission) (*canaima.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	p, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &canaima.User{
		UserPart: canaima.UserPart{
			ID:               userIDGen.Generate().Int64(),
			Name:             profile.Name,
			FullName:         profile.FullName,
			Telephone:        profile.Telephone,
			Address:          profile.Address,
			Email:            profile.Email,
			Permission:       perm,
			RegistrationDate: time.Now().UnixNano(),
			IsActive:         true,
		},
		Passhash: p,
	}, nil
}

func (d *Transaction) createUser(
	profile canaima.UserProfile, password string, perm canaima.Permission) (*canaima.UserPart, error) {

	u, err := NewUser(profile, password, perm)
	if err != nil {
		return nil, err
	}

	_, err = d.ExecContext(d.ctx,
		"INSERT INTO users VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.FullName, u.Telephone, u.Address, u.Email,
		u.Passhash, u.Permission, u.RegistrationDate, u.IsActive,
	)

	if err != nil {
		// Unique constraint means we're attempting to make a user with a
		// colliding email or telephone.
		if errIsConstraint(err) {
			return nil, canaima.ErrEmailTaken
		}

		return nil, errors.Wrap(err, "Failed to insert user")
	}

	return &u.UserPart, nil
}

// Signup creates a new customer account. The caller is responsible for issuing
// a token.
func (d *Transaction) Signup(profile canaima.UserProfile, password string) (*canaima.UserPart, error) {
	return d.createUser(profile, password, canaima.PermissionCustomer)
}

// Signin verifies the email and password pair and returns the matching user.
func (d *Database) Signin(ctx context.Context, email, password string) (u *canaima.UserPart, err error) {
	err = d.Acquire(ctx, 0, func(tx *Transaction) error {
		u, err = tx.Signin(email, password)
		return err
	})
	return
}

// Signin verifies the email and password pair and returns the matching user.
// Both an unknown email and a wrong password return the same error.
func (d *Transaction) Signin(email, password string) (*canaima.UserPart, error) {
	var u canaima.User

	err := d.GetContext(d.ctx, &u,
		"SELECT "+userColumns+", passhash FROM users WHERE email = ?",
		canaima.NormalizeEmail(email),
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, canaima.ErrInvalidCredential
		}
		return nil, errors.Wrap(err, "Failed to get user")
	}

	if err := VerifyPassword(u.Passhash, password); err != nil {
		if errors.Is(err, canaima.ErrInvalidPassword) {
			return nil, canaima.ErrInvalidCredential
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, canaima.ErrUserInactive
	}

	return &u.UserPart, nil
}

func (d *Transaction) user(id int64) (*canaima.UserPart, error) {
	var u canaima.UserPart

	err := d.GetContext(d.ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err == nil {
		return &u, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, canaima.ErrUserNotFound
	}

	return nil, errors.Wrap(err, "Failed to scan row to user")
}

// UserByID returns the user WITHOUT the passhash.
func (d *Transaction) UserByID(id int64) (*canaima.UserPart, error) {
	return d.user(id)
}

// Me returns the current user.
func (d *Transaction) Me() (*canaima.UserPart, error) {
	if d.User.IsZero() {
		return nil, canaima.ErrUnauthorized
	}
	return d.user(d.User.ID)
}

// Users returns a page of users sorted by registration. It returns
// ErrNoUsers if the page is empty.
func (d *Transaction) Users(count, page uint) (*canaima.UserList, error) {
	limit, offset, err := canaima.Paginate(count, page)
	if err != nil {
		return nil, err
	}

	var list = canaima.UserList{
		Users: make([]canaima.UserPart, 0, limit),
	}

	err = d.SelectContext(d.ctx, &list.Users,
		"SELECT "+userColumns+" FROM users ORDER BY id ASC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query users")
	}

	if len(list.Users) == 0 {
		return nil, canaima.ErrNoUsers
	}

	return &list, nil
}

// UpdateUser applies the patch to the user with the given ID. Only the user
// themselves can update their profile.
func (d *Transaction) UpdateUser(id int64, patch canaima.UserPatch) (*canaima.UserPart, error) {
	if d.User.IsZero() {
		return nil, canaima.ErrUnauthorized
	}
	if d.User.ID != id {
		return nil, canaima.ErrActionNotPermitted
	}

	if patch.IsEmpty() {
		return nil, canaima.ErrEmptyUpdate
	}

	u, err := d.user(id)
	if err != nil {
		return nil, err
	}

	if err := patch.Apply(u); err != nil {
		return nil, err
	}

	_, err = d.ExecContext(d.ctx,
		`UPDATE users SET name = ?, fullname = ?, telephone = ?, address = ?, email = ?
			WHERE id = ?`,
		u.Name, u.FullName, u.Telephone, u.Address, u.Email, u.ID,
	)
	if err != nil {
		if errIsConstraint(err) {
			return nil, canaima.ErrEmailTaken
		}
		return nil, errors.Wrap(err, "Failed to save changes")
	}

	if patch.Password != nil {
		if err := d.changePassword(id, *patch.Password); err != nil {
			return nil, err
		}
	}

	return u, nil
}

func (d *Transaction) changePassword(id int64, password string) error {
	p, err := hashPassword(password)
	if err != nil {
		return err
	}

	_, err = d.ExecContext(d.ctx, "UPDATE users SET passhash = ? WHERE id = ?", p, id)
	if err != nil {
		return errors.Wrap(err, "Failed to save password")
	}

	return nil
}

// PromoteUser changes someone else's permission. Only admins can do this.
func (d *Transaction) PromoteUser(id int64, p canaima.Permission) error {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return err
	}

	if !p.IsValid() {
		return canaima.ErrInvalidPermission
	}

	u, err := d.user(id)
	if err != nil {
		return err
	}

	if u.Permission == canaima.PermissionAdmin && p != canaima.PermissionAdmin {
		if err := d.ensureOtherAdmin(id); err != nil {
			return err
		}
	}

	_, err = d.ExecContext(d.ctx, "UPDATE users SET permission = ? WHERE id = ?", p, id)
	if err != nil {
		return errors.Wrap(err, "Failed to save changes")
	}

	return nil
}

// DeleteUser deletes the user. The user performing this action must either be
// the user being deleted or an admin.
func (d *Transaction) DeleteUser(id int64) error {
	if err := d.IsUserOrHasPermission(id, canaima.PermissionAdmin); err != nil {
		return err
	}

	u, err := d.user(id)
	if err != nil {
		return err
	}

	// Prevent deletion of the last admin account. We do this check last to
	// prioritize permission errors.
	if u.Permission == canaima.PermissionAdmin {
		if err := d.ensureOtherAdmin(id); err != nil {
			return err
		}
	}

	if _, err := d.ExecContext(d.ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "Failed to delete user")
	}

	return nil
}

func (d *Transaction) ensureOtherAdmin(id int64) error {
	var admins int

	err := d.GetContext(d.ctx, &admins,
		"SELECT COUNT(*) FROM users WHERE permission = ? AND id != ?",
		canaima.PermissionAdmin, id,
	)
	if err != nil {
		return errors.Wrap(err, "Failed to count admins")
	}

	if admins == 0 {
		return canaima.ErrLastAdminStays
	}

	return nil
}
