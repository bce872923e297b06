// Package usersettings defines the core types used by the settings store.
package usersettings

import (
	"encoding/json"
	"time"
)

// MaxDate is the banned_on value of a user that is not banned.
const MaxDate = "9999-12-31"

const (
	// JoinDateLayout formats join_date.
	JoinDateLayout = "2006-01-02"
	// BannedOnLayout formats banned_on for an active ban (local time, no zone).
	BannedOnLayout = "2006-01-02T15:04:05.999999"
)

// UserRecord is the settings document of one user. Pointer fields are nil when the field is null
// or absent from the stored document; the Store applies defaults on read.
type UserRecord struct {
	// ID is the chat user id and the primary key of the collection.
	ID int64 `json:"_id" bson:"_id"`
	// JoinDate is the creation date, written once.
	JoinDate string `json:"join_date" bson:"join_date"`
	// FileID references the stored thumbnail media.
	FileID  *string `json:"file_id" bson:"file_id"`
	Caption *string `json:"caption" bson:"caption"`
	// Metadata is a boolean on new records. Legacy records may store text or nothing.
	Metadata          *Metadata   `json:"metadata,omitempty" bson:"metadata,omitempty"`
	MetadataCode      string      `json:"metadata_code,omitempty" bson:"metadata_code,omitempty"`
	FormatTemplate    *string     `json:"format_template" bson:"format_template"`
	UploadAsDocument  bool        `json:"upload_as_document" bson:"upload_as_document"`
	UploadDestination Destination `json:"upload_destination" bson:"upload_destination"`
	BanStatus         *BanStatus  `json:"ban_status,omitempty" bson:"ban_status,omitempty"`

	// Media tags. They are only persisted once a user sets them.
	Title    *string `json:"title,omitempty" bson:"title,omitempty"`
	Author   *string `json:"author,omitempty" bson:"author,omitempty"`
	Artist   *string `json:"artist,omitempty" bson:"artist,omitempty"`
	Audio    *string `json:"audio,omitempty" bson:"audio,omitempty"`
	Subtitle *string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Video    *string `json:"video,omitempty" bson:"video,omitempty"`

	MediaType *string `json:"media_type,omitempty" bson:"media_type,omitempty"`
}

// NewUserRecord builds the document inserted on first contact with a user.
func NewUserRecord(id int64, now time.Time, d Defaults) *UserRecord {
	on := MetadataFlag(true)
	unbanned := UnbannedStatus()
	return &UserRecord{
		ID:           id,
		JoinDate:     now.Format(JoinDateLayout),
		Metadata:     &on,
		MetadataCode: d.MetadataCode,
		BanStatus:    &unbanned,
	}
}

// BanStatus is the moderation state embedded in every user record.
type BanStatus struct {
	IsBanned bool `json:"is_banned" bson:"is_banned"`
	// BanDuration is in days. Zero on an active ban means it does not expire.
	BanDuration int    `json:"ban_duration" bson:"ban_duration"`
	BannedOn    string `json:"banned_on" bson:"banned_on"`
	BanReason   string `json:"ban_reason" bson:"ban_reason"`
}

// UnbannedStatus returns the status written at creation and by Unban.
func UnbannedStatus() BanStatus {
	return BanStatus{
		IsBanned:    false,
		BanDuration: 0,
		BannedOn:    MaxDate,
		BanReason:   "",
	}
}

// BannedAt parses BannedOn. It reports false when the value is empty, the max date or unparsable.
func (b BanStatus) BannedAt() (time.Time, bool) {
	if b.BannedOn == "" || b.BannedOn == MaxDate {
		return time.Time{}, false
	}
	for _, layout := range []string{BannedOnLayout, time.RFC3339Nano, JoinDateLayout} {
		if t, err := time.ParseInLocation(layout, b.BannedOn, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExpiresAt returns the end of an active, time-limited ban.
func (b BanStatus) ExpiresAt() (time.Time, bool) {
	if !b.IsBanned || b.BanDuration <= 0 {
		return time.Time{}, false
	}
	at, ok := b.BannedAt()
	if !ok {
		return time.Time{}, false
	}
	return at.AddDate(0, 0, b.BanDuration), true
}

// Expired reports whether an active, time-limited ban has run out at now.
func (b BanStatus) Expired(now time.Time) bool {
	until, ok := b.ExpiresAt()
	return ok && !now.Before(until)
}

// Destination is an opaque upload target descriptor (target chat or channel info).
// Values decoded from JSON backends carry numbers as float64.
type Destination map[string]interface{}

// ChatID returns the "chat_id" entry as an int64, whatever numeric type the backend decoded.
func (d Destination) ChatID() (int64, bool) {
	switch v := d["chat_id"].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// MediaType is the preferred media kind for delivery.
type MediaType string

const (
	MediaNone     MediaType = ""
	MediaDocument MediaType = "document"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
)

// Valid reports whether t is one of the known media kinds or unset.
func (t MediaType) Valid() bool {
	switch t {
	case MediaNone, MediaDocument, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// Settings is the fixed projection returned by Store.UserSettings.
type Settings struct {
	UploadAsDocument  bool        `json:"upload_as_document"`
	UploadDestination Destination `json:"upload_destination"`
	FormatTemplate    string      `json:"format_template"`
	Caption           string      `json:"caption"`
	FileID            string      `json:"file_id"`
	Metadata          Metadata    `json:"metadata"`
	MediaType         MediaType   `json:"media_type"`
}

// Registrant identifies the chat user whose first contact triggers registration.
type Registrant struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName joins first and last name, falling back to the username.
func (r Registrant) DisplayName() string {
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	if name == "" {
		name = r.Username
	}
	return name
}

// Defaults holds the literal values returned for absent fields.
type Defaults struct {
	MetadataCode string
	Title        string
	Author       string
	Artist       string
	Audio        string
	Subtitle     string
	Video        string
}

// Built-in default literals.
const (
	DefaultMetadataCode = "Telegram : @Codeflix_Bots"
	DefaultTitle        = "Encoded by @Animes_Cruise"
	DefaultTag          = "@Animes_Cruise"
)

// DefaultValues returns the built-in Defaults.
func DefaultValues() Defaults {
	return Defaults{
		MetadataCode: DefaultMetadataCode,
		Title:        DefaultTitle,
		Author:       DefaultTag,
		Artist:       DefaultTag,
		Audio:        DefaultTag,
		Subtitle:     DefaultTag,
		Video:        DefaultTag,
	}
}

// merged fills the empty fields of d from the built-in defaults.
func (d Defaults) merged() Defaults {
	base := DefaultValues()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Defaults{
		MetadataCode: pick(d.MetadataCode, base.MetadataCode),
		Title:        pick(d.Title, base.Title),
		Author:       pick(d.Author, base.Author),
		Artist:       pick(d.Artist, base.Artist),
		Audio:        pick(d.Audio, base.Audio),
		Subtitle:     pick(d.Subtitle, base.Subtitle),
		Video:        pick(d.Video, base.Video),
	}
}

// Config holds the internal configuration of a Store, populated by Options passed to New.
type Config struct {
	collection Collection
	notifier   Notifier
	logger     Logger
	defaults   Defaults
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Config)

// WithCollection sets the document collection. It is mandatory.
func WithCollection(c Collection) Option {
	return func(cfg *Config) {
		cfg.collection = c
	}
}

// WithNotifier sets the collaborator told about every newly registered user.
func WithNotifier(n Notifier) Option {
	return func(cfg *Config) {
		cfg.notifier = n
	}
}

// WithLogger sets the Logger. Without it a JSON logger writing to os.Stderr is used.
func WithLogger(l Logger) Option {
	return func(cfg *Config) {
		cfg.logger = l
	}
}

// WithDefaults overrides the literal defaults. Empty fields keep the built-in value.
func WithDefaults(d Defaults) Option {
	return func(cfg *Config) {
		cfg.defaults = d.merged()
	}
}

// WithClock replaces time.Now, used for join dates and ban stamps.
func WithClock(now func() time.Time) Option {
	return func(cfg *Config) {
		cfg.now = now
	}
}
