// validation.go
package usersettings

import (
	"encoding/json"
	"fmt"
	"strings"
)

// immutableFields can never be changed through UpdateUserSettings.
var immutableFields = map[string]bool{
	FieldID:       true,
	FieldJoinDate: true,
}

var nullableStringFields = map[string]bool{
	FieldFileID:         true,
	FieldCaption:        true,
	FieldFormatTemplate: true,
	FieldMetadataCode:   true,
	FieldTitle:          true,
	FieldAuthor:         true,
	FieldArtist:         true,
	FieldAudio:          true,
	FieldSubtitle:       true,
	FieldVideo:          true,
}

func validateID(id int64) error {
	if id == 0 {
		return fmt.Errorf("%w: user id must be non-zero", ErrInvalidInput)
	}
	return nil
}

func validateFieldName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty field name", ErrInvalidField)
	case immutableFields[name]:
		return fmt.Errorf("%w: %s is immutable", ErrInvalidField, name)
	case strings.ContainsAny(name, "$."):
		return fmt.Errorf("%w: %q must be a plain top-level name", ErrInvalidField, name)
	}
	return nil
}

// validateFields checks every entry and returns a copy with known values normalized to the
// types the collections store.
func validateFields(fields map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if err := validateFieldName(name); err != nil {
			return nil, err
		}
		v, err := validateValue(name, value)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func validateValue(name string, value interface{}) (interface{}, error) {
	switch {
	case nullableStringFields[name]:
		switch v := value.(type) {
		case nil:
			return nil, nil
		case string:
			return v, nil
		case *string:
			if v == nil {
				return nil, nil
			}
			return *v, nil
		default:
			return nil, fmt.Errorf("%w: %s expected string", ErrInvalidValue, name)
		}
	case name == FieldMediaType:
		var t MediaType
		switch v := value.(type) {
		case nil:
			return nil, nil
		case string:
			t = MediaType(v)
		case MediaType:
			t = v
		default:
			return nil, fmt.Errorf("%w: %s expected string", ErrInvalidValue, name)
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown media type %q", ErrInvalidValue, t)
		}
		return nullable(string(t)), nil
	case name == FieldMetadata:
		switch v := value.(type) {
		case nil:
			return nil, nil
		case bool:
			return MetadataFlag(v), nil
		case string:
			return MetadataText(v), nil
		case Metadata:
			if v.IsZero() {
				return nil, nil
			}
			return v, nil
		default:
			return nil, fmt.Errorf("%w: %s expected boolean or string", ErrInvalidValue, name)
		}
	case name == FieldUploadAsDocument:
		if _, ok := value.(bool); !ok {
			return nil, fmt.Errorf("%w: %s expected boolean", ErrInvalidValue, name)
		}
		return value, nil
	case name == FieldUploadDestination:
		switch v := value.(type) {
		case nil:
			return nil, nil
		case Destination:
			if v == nil {
				return nil, nil
			}
			return v, nil
		case map[string]interface{}:
			if v == nil {
				return nil, nil
			}
			return Destination(v), nil
		default:
			return nil, fmt.Errorf("%w: %s expected an object", ErrInvalidValue, name)
		}
	case name == FieldBanStatus:
		// ban_status is only ever written whole.
		switch v := value.(type) {
		case BanStatus:
			return v, nil
		case *BanStatus:
			if v != nil {
				return *v, nil
			}
		}
		return nil, fmt.Errorf("%w: %s expected a complete BanStatus", ErrInvalidValue, name)
	default:
		if _, err := json.Marshal(value); err != nil {
			return nil, fmt.Errorf("%w: %s is not serializable", ErrInvalidValue, name)
		}
		return value, nil
	}
}
