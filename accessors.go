package usersettings

import (
	"context"
	"fmt"
)

// Getters return the stored value, or the field default when the field or the whole record is
// absent. On a store failure they return the default together with the error. Setters update an
// existing record only; they are a no-op for unknown ids.

// Thumbnail returns the file id of the user's thumbnail, "" when unset.
func (s *Store) Thumbnail(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_thumbnail", id, func(u *UserRecord) *string { return u.FileID }, "")
}

// SetThumbnail stores a thumbnail file id. An empty id clears it.
func (s *Store) SetThumbnail(ctx context.Context, id int64, fileID string) error {
	return s.update(ctx, "set_thumbnail", id, map[string]interface{}{FieldFileID: nullable(fileID)})
}

// RemoveThumbnail clears the thumbnail.
func (s *Store) RemoveThumbnail(ctx context.Context, id int64) error {
	return s.update(ctx, "remove_thumbnail", id, map[string]interface{}{FieldFileID: nil})
}

// Caption returns the caption template, "" when unset.
func (s *Store) Caption(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_caption", id, func(u *UserRecord) *string { return u.Caption }, "")
}

// SetCaption stores the caption template. An empty caption clears it.
func (s *Store) SetCaption(ctx context.Context, id int64, caption string) error {
	return s.update(ctx, "set_caption", id, map[string]interface{}{FieldCaption: nullable(caption)})
}

// RemoveCaption clears the caption template.
func (s *Store) RemoveCaption(ctx context.Context, id int64) error {
	return s.update(ctx, "remove_caption", id, map[string]interface{}{FieldCaption: nil})
}

// FormatTemplate returns the file name template, "" when unset.
func (s *Store) FormatTemplate(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_format_template", id, func(u *UserRecord) *string { return u.FormatTemplate }, "")
}

// SetFormatTemplate stores the file name template. An empty template clears it.
func (s *Store) SetFormatTemplate(ctx context.Context, id int64, template string) error {
	return s.update(ctx, "set_format_template", id, map[string]interface{}{FieldFormatTemplate: nullable(template)})
}

// MediaPreference returns the preferred media kind, MediaNone when unset.
func (s *Store) MediaPreference(ctx context.Context, id int64) (MediaType, error) {
	v, err := s.stringField(ctx, "get_media_preference", id, func(u *UserRecord) *string { return u.MediaType }, "")
	return MediaType(v), err
}

// SetMediaPreference stores the preferred media kind. MediaNone clears it; unknown kinds
// return ErrInvalidValue.
func (s *Store) SetMediaPreference(ctx context.Context, id int64, t MediaType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown media type %q", ErrInvalidValue, t)
	}
	return s.update(ctx, "set_media_preference", id, map[string]interface{}{FieldMediaType: nullable(string(t))})
}

// Metadata returns the metadata toggle, MetadataOff when absent.
func (s *Store) Metadata(ctx context.Context, id int64) (Metadata, error) {
	rec, err := s.lookup(ctx, "get_metadata", id)
	if err != nil || rec == nil {
		return MetadataOff, err
	}
	return metadataOf(rec), nil
}

// SetMetadata stores the metadata toggle or its text. A zero Metadata returns ErrInvalidValue.
func (s *Store) SetMetadata(ctx context.Context, id int64, m Metadata) error {
	if m.IsZero() {
		return fmt.Errorf("%w: metadata must be a boolean or text value", ErrInvalidValue)
	}
	return s.update(ctx, "set_metadata", id, map[string]interface{}{FieldMetadata: m})
}

// Title returns the title tag, or the default title when unset.
func (s *Store) Title(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_title", id, func(u *UserRecord) *string { return u.Title }, s.defaults.Title)
}

// SetTitle stores the title tag.
func (s *Store) SetTitle(ctx context.Context, id int64, title string) error {
	return s.update(ctx, "set_title", id, map[string]interface{}{FieldTitle: title})
}

// Author returns the author tag, or the default tag when unset.
func (s *Store) Author(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_author", id, func(u *UserRecord) *string { return u.Author }, s.defaults.Author)
}

// SetAuthor stores the author tag.
func (s *Store) SetAuthor(ctx context.Context, id int64, author string) error {
	return s.update(ctx, "set_author", id, map[string]interface{}{FieldAuthor: author})
}

// Artist returns the artist tag, or the default tag when unset.
func (s *Store) Artist(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_artist", id, func(u *UserRecord) *string { return u.Artist }, s.defaults.Artist)
}

// SetArtist stores the artist tag.
func (s *Store) SetArtist(ctx context.Context, id int64, artist string) error {
	return s.update(ctx, "set_artist", id, map[string]interface{}{FieldArtist: artist})
}

// Audio returns the audio track tag, or the default tag when unset.
func (s *Store) Audio(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_audio", id, func(u *UserRecord) *string { return u.Audio }, s.defaults.Audio)
}

// SetAudio stores the audio track tag.
func (s *Store) SetAudio(ctx context.Context, id int64, audio string) error {
	return s.update(ctx, "set_audio", id, map[string]interface{}{FieldAudio: audio})
}

// Subtitle returns the subtitle track tag, or the default tag when unset.
func (s *Store) Subtitle(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_subtitle", id, func(u *UserRecord) *string { return u.Subtitle }, s.defaults.Subtitle)
}

// SetSubtitle stores the subtitle track tag.
func (s *Store) SetSubtitle(ctx context.Context, id int64, subtitle string) error {
	return s.update(ctx, "set_subtitle", id, map[string]interface{}{FieldSubtitle: subtitle})
}

// Video returns the video track tag, or the default tag when unset.
func (s *Store) Video(ctx context.Context, id int64) (string, error) {
	return s.stringField(ctx, "get_video", id, func(u *UserRecord) *string { return u.Video }, s.defaults.Video)
}

// SetVideo stores the video track tag.
func (s *Store) SetVideo(ctx context.Context, id int64, video string) error {
	return s.update(ctx, "set_video", id, map[string]interface{}{FieldVideo: video})
}

// UploadMode reports whether files are uploaded as documents (true) or as media (false).
func (s *Store) UploadMode(ctx context.Context, id int64) (bool, error) {
	rec, err := s.lookup(ctx, "get_upload_mode", id)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.UploadAsDocument, nil
}

// SetUploadMode chooses between document (true) and media (false) uploads.
func (s *Store) SetUploadMode(ctx context.Context, id int64, asDocument bool) error {
	return s.update(ctx, "set_upload_mode", id, map[string]interface{}{FieldUploadAsDocument: asDocument})
}

// UploadDestination returns the upload target, nil when uploads go to the private chat.
func (s *Store) UploadDestination(ctx context.Context, id int64) (Destination, error) {
	rec, err := s.lookup(ctx, "get_upload_destination", id)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.UploadDestination, nil
}

// SetUploadDestination stores the upload target. A nil destination removes it.
func (s *Store) SetUploadDestination(ctx context.Context, id int64, d Destination) error {
	var v interface{}
	if d != nil {
		v = d
	}
	return s.update(ctx, "set_upload_destination", id, map[string]interface{}{FieldUploadDestination: v})
}

// RemoveUploadDestination resets uploads to the private chat.
func (s *Store) RemoveUploadDestination(ctx context.Context, id int64) error {
	return s.update(ctx, "remove_upload_destination", id, map[string]interface{}{FieldUploadDestination: nil})
}

func (s *Store) stringField(ctx context.Context, op string, id int64, pick func(*UserRecord) *string, def string) (string, error) {
	rec, err := s.lookup(ctx, op, id)
	if err != nil || rec == nil {
		return def, err
	}
	return deref(pick(rec), def), nil
}

func metadataOf(rec *UserRecord) Metadata {
	if rec.Metadata == nil || rec.Metadata.IsZero() {
		return MetadataOff
	}
	return *rec.Metadata
}

func deref(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// nullable maps "" to a stored null.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
