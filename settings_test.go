package usersettings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/usersettings"
)

func TestUserSettings_MatchesGetters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))

	require.NoError(t, store.SetThumbnail(ctx, 42, "file-1"))
	require.NoError(t, store.SetCaption(ctx, 42, "cap"))
	require.NoError(t, store.SetFormatTemplate(ctx, 42, "{title} [{quality}]"))
	require.NoError(t, store.SetUploadMode(ctx, 42, true))
	require.NoError(t, store.SetUploadDestination(ctx, 42, usersettings.Destination{"chat_id": float64(-100)}))
	require.NoError(t, store.SetMediaPreference(ctx, 42, usersettings.MediaAudio))

	settings, err := store.UserSettings(ctx, 42)
	require.NoError(t, err)

	thumb, _ := store.Thumbnail(ctx, 42)
	caption, _ := store.Caption(ctx, 42)
	template, _ := store.FormatTemplate(ctx, 42)
	asDoc, _ := store.UploadMode(ctx, 42)
	dest, _ := store.UploadDestination(ctx, 42)
	meta, _ := store.Metadata(ctx, 42)
	media, _ := store.MediaPreference(ctx, 42)

	assert.Equal(t, usersettings.Settings{
		UploadAsDocument:  asDoc,
		UploadDestination: dest,
		FormatTemplate:    template,
		Caption:           caption,
		FileID:            thumb,
		Metadata:          meta,
		MediaType:         media,
	}, settings)
	assert.Equal(t, "file-1", settings.FileID)
	assert.Equal(t, usersettings.MediaAudio, settings.MediaType)
}

func TestUserSettings_MissingUser(t *testing.T) {
	store, _ := newTestStore(t)

	settings, err := store.UserSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, usersettings.Settings{}, settings)
}

func TestUpdateUserSettings(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))
	require.NoError(t, store.SetThumbnail(ctx, 42, "file-1"))

	before, err := store.GetUser(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, store.UpdateUserSettings(ctx, 42, map[string]interface{}{
		usersettings.FieldCaption:          "new caption",
		usersettings.FieldUploadAsDocument: true,
	}))

	after, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, after.Caption)
	assert.Equal(t, "new caption", *after.Caption)
	assert.True(t, after.UploadAsDocument)

	// Everything else is untouched.
	after.Caption = before.Caption
	after.UploadAsDocument = before.UploadAsDocument
	assert.Equal(t, before, after)
}

func TestUpdateUserSettings_Normalizes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))

	require.NoError(t, store.UpdateUserSettings(ctx, 42, map[string]interface{}{
		usersettings.FieldMetadata:          "Off",
		usersettings.FieldUploadDestination: map[string]interface{}{"chat_id": float64(-5)},
		usersettings.FieldMediaType:         "document",
	}))

	meta, err := store.Metadata(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, usersettings.MetadataText("Off"), meta)

	dest, err := store.UploadDestination(ctx, 42)
	require.NoError(t, err)
	chatID, ok := dest.ChatID()
	assert.True(t, ok)
	assert.Equal(t, int64(-5), chatID)

	media, err := store.MediaPreference(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, usersettings.MediaDocument, media)
}

func TestUpdateUserSettings_Rejects(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))

	tests := []struct {
		name   string
		fields map[string]interface{}
		want   error
	}{
		{"immutable id", map[string]interface{}{"_id": int64(1)}, usersettings.ErrInvalidField},
		{"immutable join date", map[string]interface{}{"join_date": "2000-01-01"}, usersettings.ErrInvalidField},
		{"operator", map[string]interface{}{"$unset": "caption"}, usersettings.ErrInvalidField},
		{"dotted", map[string]interface{}{"ban_status.is_banned": true}, usersettings.ErrInvalidField},
		{"wrong type", map[string]interface{}{"upload_as_document": "yes"}, usersettings.ErrInvalidValue},
		{"partial ban", map[string]interface{}{"ban_status": map[string]interface{}{"is_banned": true}}, usersettings.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpdateUserSettings(ctx, 42, tt.fields)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	rec, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", rec.JoinDate)
	assert.False(t, rec.BanStatus.IsBanned)
}

func TestUpdateUserSettings_EmptyAndMissing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.UpdateUserSettings(ctx, 42, nil))
	assert.NoError(t, store.UpdateUserSettings(ctx, 42, map[string]interface{}{"caption": "x"}))

	exists, err := store.Exists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSettings_Failures(t *testing.T) {
	store, _ := newFailingStore(t)
	ctx := context.Background()

	settings, err := store.UserSettings(ctx, 1)
	assert.Equal(t, usersettings.Settings{}, settings)
	assert.Error(t, err)

	assert.Error(t, store.UpdateUserSettings(ctx, 1, map[string]interface{}{"caption": "x"}))
}
