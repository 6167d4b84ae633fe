package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jacentio/catalog/store"
)

const usernameAttr = "username"

// Users manages user accounts. Usernames are unique.
type Users struct {
	table store.Table[User]
	now   func() time.Time
}

// NewUsers creates the user service.
func NewUsers(table store.Table[User]) *Users {
	return &Users{table: table, now: time.Now}
}

// List returns all users in insertion order.
func (u *Users) List(ctx context.Context) ([]User, error) {
	return u.table.List(ctx)
}

// Get returns the user with id.
func (u *Users) Get(ctx context.Context, id ID) (User, error) {
	user, err := u.table.Get(ctx, string(id))
	return user, storeError(err, "user", id)
}

// Create stores a new user. All fields are required.
func (u *Users) Create(ctx context.Context, in UserInput) (User, error) {
	if err := checkUserRequired(in); err != nil {
		return User{}, err
	}
	username := strings.TrimSpace(*in.Username)
	if err := u.checkUsername(ctx, username, ""); err != nil {
		return User{}, err
	}

	now := u.now().UTC()
	user, err := u.table.Create(ctx, User{
		Name:      strings.TrimSpace(*in.Name),
		Username:  username,
		Password:  *in.Password,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return user, storeError(err, "user", "")
}

// Replace overwrites every field of the user.
func (u *Users) Replace(ctx context.Context, id ID, in UserInput) (User, error) {
	current, err := u.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := checkUserRequired(in); err != nil {
		return User{}, err
	}
	username := strings.TrimSpace(*in.Username)
	if err := u.checkUsername(ctx, username, id); err != nil {
		return User{}, err
	}

	user, err := u.table.Put(ctx, User{
		ID:        current.ID,
		Name:      strings.TrimSpace(*in.Name),
		Username:  username,
		Password:  *in.Password,
		CreatedAt: current.CreatedAt,
		UpdatedAt: u.now().UTC(),
	})
	return user, storeError(err, "user", id)
}

// Update merges the supplied fields into the user. A new username must
// still be unique.
func (u *Users) Update(ctx context.Context, id ID, in UserInput) (User, error) {
	user, err := u.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != nil {
		if isBlank(in.Name) {
			return User{}, invalid("name", "must not be empty")
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Username != nil {
		if isBlank(in.Username) {
			return User{}, invalid("username", "must not be empty")
		}
		username := strings.TrimSpace(*in.Username)
		if err := u.checkUsername(ctx, username, id); err != nil {
			return User{}, err
		}
		user.Username = username
	}
	if in.Password != nil {
		if *in.Password == "" {
			return User{}, invalid("password", "must not be empty")
		}
		user.Password = *in.Password
	}
	user.UpdatedAt = u.now().UTC()

	user, err = u.table.Put(ctx, user)
	return user, storeError(err, "user", id)
}

// Delete removes the user.
func (u *Users) Delete(ctx context.Context, id ID) (User, error) {
	user, err := u.table.Delete(ctx, string(id))
	return user, storeError(err, "user", id)
}

// checkUsername fails with ErrConflict if another user holds username.
// Tables enforce the same constraint on write.
func (u *Users) checkUsername(ctx context.Context, username string, self ID) error {
	holders, err := u.table.Find(ctx, usernameAttr, username)
	if err != nil {
		return err
	}
	for _, h := range holders {
		if h.ID != self {
			return fmt.Errorf("%w: username %q already exists", ErrConflict, username)
		}
	}
	return nil
}

func checkUserRequired(in UserInput) error {
	var missing []string
	if isBlank(in.Name) {
		missing = append(missing, "name")
	}
	if isBlank(in.Username) {
		missing = append(missing, "username")
	}
	if in.Password == nil || *in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return required(missing...)
	}
	return nil
}
