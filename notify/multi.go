package notify

import (
	"context"
	"errors"

	"github.com/CreativeUnicorns/usersettings"
)

// Multi delivers every registration to each notifier in order. All are attempted;
// their errors are joined.
type Multi []usersettings.Notifier

func (m Multi) NotifyNewUser(ctx context.Context, reg usersettings.Registration) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyNewUser(ctx, reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
