package repo

import (
	"fmt"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

// CheckUser rejects records that lost a required field on the way out of the store.
func CheckUser(u *model.User) error {
	switch {
	case u.ID <= 0:
		return fmt.Errorf("user %q: missing id: %w", u.Email, appErr.ErrCorrupt)
	case u.Email == "":
		return fmt.Errorf("user %d: missing email: %w", u.ID, appErr.ErrCorrupt)
	case u.PasswordHash == "":
		return fmt.Errorf("user %d: missing password hash: %w", u.ID, appErr.ErrCorrupt)
	}
	return nil
}

func CheckHistory(h *model.History) error {
	if h.ID <= 0 || h.UserID <= 0 || h.Disease == "" {
		return fmt.Errorf("history %d: missing required field: %w", h.ID, appErr.ErrCorrupt)
	}
	return nil
}
