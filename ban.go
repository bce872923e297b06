package usersettings

import (
	"context"
	"fmt"
)

// IsBanned reports the stored ban flag of id; false when absent or on failure.
func (s *Store) IsBanned(ctx context.Context, id int64) (bool, error) {
	rec, err := s.lookup(ctx, "is_banned", id)
	if err != nil || rec == nil || rec.BanStatus == nil {
		return false, err
	}
	return rec.BanStatus.IsBanned, nil
}

// Ban marks id as banned for durationDays (0 for no limit), stamping the current time.
// It overwrites any previous ban.
func (s *Store) Ban(ctx context.Context, id int64, durationDays int, reason string) error {
	if durationDays < 0 {
		return fmt.Errorf("%w: negative ban duration %d", ErrInvalidValue, durationDays)
	}
	status := BanStatus{
		IsBanned:    true,
		BanDuration: durationDays,
		BannedOn:    s.now().Format(BannedOnLayout),
		BanReason:   reason,
	}
	if err := s.update(ctx, "ban_user", id, map[string]interface{}{FieldBanStatus: status}); err != nil {
		return err
	}
	s.logger.Info("Banned user", "user_id", id, "duration_days", durationDays, "reason", reason)
	return nil
}

// Unban restores the unbanned status of id.
func (s *Store) Unban(ctx context.Context, id int64) error {
	if err := s.update(ctx, "unban_user", id, map[string]interface{}{FieldBanStatus: UnbannedStatus()}); err != nil {
		return err
	}
	s.logger.Info("Unbanned user", "user_id", id)
	return nil
}

// BanStatus returns the ban sub-record of id, the zero BanStatus when absent.
func (s *Store) BanStatus(ctx context.Context, id int64) (BanStatus, error) {
	rec, err := s.lookup(ctx, "get_ban_status", id)
	if err != nil || rec == nil || rec.BanStatus == nil {
		return BanStatus{}, err
	}
	return *rec.BanStatus, nil
}
