package app

import (
	"errors"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// Hint returns a follow-up suggestion for err, or "" when there is none.
func Hint(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrSessionExpired):
		return "Sign in with 'jobtracker login' (or create an account with 'jobtracker signup')."
	case errors.Is(err, auth.ErrEmailTaken):
		return "Sign in with 'jobtracker login' instead."
	case errors.Is(err, models.ErrNotFound):
		return "List your applications with 'jobtracker app list'."
	case errors.Is(err, ErrEphemeralStore):
		return "Switch to the SQL store with 'jobtracker config set --key store_backend --value sql'."
	case errors.Is(err, models.ErrStore):
		return "Check database_driver and database_dsn with 'jobtracker config show'."
	}
	return ""
}
