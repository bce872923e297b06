package usersettings

import "context"

// UserSettings returns the settings projection of id with every field defaulted on its own.
// It returns the zero Settings when the user does not exist.
func (s *Store) UserSettings(ctx context.Context, id int64) (Settings, error) {
	rec, err := s.lookup(ctx, "get_user_settings", id)
	if err != nil || rec == nil {
		return Settings{}, err
	}
	return Settings{
		UploadAsDocument:  rec.UploadAsDocument,
		UploadDestination: rec.UploadDestination,
		FormatTemplate:    deref(rec.FormatTemplate, ""),
		Caption:           deref(rec.Caption, ""),
		FileID:            deref(rec.FileID, ""),
		Metadata:          metadataOf(rec),
		MediaType:         MediaType(deref(rec.MediaType, "")),
	}, nil
}

// UpdateUserSettings applies fields as one merge update: listed fields are replaced, all
// others are left untouched. Field names and the values of known fields are validated first.
func (s *Store) UpdateUserSettings(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	normalized, err := validateFields(fields)
	if err != nil {
		return err
	}
	return s.update(ctx, "update_user_settings", id, normalized)
}
