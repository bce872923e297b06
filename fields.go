package usersettings

// Document field names, shared by every Collection implementation.
const (
	FieldID                = "_id"
	FieldJoinDate          = "join_date"
	FieldFileID            = "file_id"
	FieldCaption           = "caption"
	FieldMetadata          = "metadata"
	FieldMetadataCode      = "metadata_code"
	FieldFormatTemplate    = "format_template"
	FieldUploadAsDocument  = "upload_as_document"
	FieldUploadDestination = "upload_destination"
	FieldBanStatus         = "ban_status"
	FieldTitle             = "title"
	FieldAuthor            = "author"
	FieldArtist            = "artist"
	FieldAudio             = "audio"
	FieldSubtitle          = "subtitle"
	FieldVideo             = "video"
	FieldMediaType         = "media_type"
)

// CollectionName is the name of the single working collection.
const CollectionName = "user"
