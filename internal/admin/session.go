package admin

import (
	"errors"

	"library-admin/internal/models"
)

// ErrNoUser is returned when a login response carries no user
var ErrNoUser = errors.New("login response carried no user")

// UserFromLogin reads the user marker out of a login response ({user: {...}})
func UserFromLogin(rec models.Record) (*models.User, error) {
	obj, ok := rec.Object("user")
	if !ok {
		return nil, ErrNoUser
	}
	user := &models.User{
		ID:       obj.ID(),
		Username: obj.String("username"),
		Account:  obj.String("account"),
	}
	if user.Username == "" {
		user.Username = user.Account
	}
	return user, nil
}
