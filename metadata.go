package usersettings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MetadataKind tells which of the stored shapes a Metadata value holds.
type MetadataKind uint8

const (
	MetadataUnset MetadataKind = iota
	MetadataBool
	MetadataString
)

// Metadata is the metadata toggle of a user. New records store a boolean, older records and
// the read default use the text form ("On"/"Off"). Both shapes are kept as found.
type Metadata struct {
	kind MetadataKind
	flag bool
	text string
}

// MetadataOff is returned when a record carries no metadata field.
var MetadataOff = MetadataText("Off")

// MetadataFlag returns a boolean Metadata.
func MetadataFlag(on bool) Metadata {
	return Metadata{kind: MetadataBool, flag: on}
}

// MetadataText returns a text Metadata.
func MetadataText(s string) Metadata {
	return Metadata{kind: MetadataString, text: s}
}

func (m Metadata) Kind() MetadataKind { return m.kind }

func (m Metadata) IsZero() bool { return m.kind == MetadataUnset }

// Bool returns the boolean value and whether m holds the boolean shape.
func (m Metadata) Bool() (bool, bool) {
	return m.flag, m.kind == MetadataBool
}

// Text returns the text value and whether m holds the text shape.
func (m Metadata) Text() (string, bool) {
	return m.text, m.kind == MetadataString
}

// Enabled interprets either shape as an on/off switch. Text values other than
// "off", "false" and "" count as on.
func (m Metadata) Enabled() bool {
	switch m.kind {
	case MetadataBool:
		return m.flag
	case MetadataString:
		t := strings.TrimSpace(m.text)
		return t != "" && !strings.EqualFold(t, "off") && !strings.EqualFold(t, "false")
	default:
		return false
	}
}

func (m Metadata) String() string {
	switch m.kind {
	case MetadataBool:
		return strconv.FormatBool(m.flag)
	case MetadataString:
		return m.text
	default:
		return ""
	}
}

func (m Metadata) value() interface{} {
	switch m.kind {
	case MetadataBool:
		return m.flag
	case MetadataString:
		return m.text
	default:
		return nil
	}
}

// MarshalJSON writes the boolean or text form, or null when unset.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.value())
}

// UnmarshalJSON accepts a boolean, a string or null.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*m = Metadata{}
	case bool:
		*m = MetadataFlag(x)
	case string:
		*m = MetadataText(x)
	default:
		return fmt.Errorf("%w: metadata must be boolean or string, got %T", ErrInvalidValue, v)
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (m Metadata) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(m.value())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (m *Metadata) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Boolean:
		*m = MetadataFlag(raw.Boolean())
	case bsontype.String:
		*m = MetadataText(raw.StringValue())
	case bsontype.Null, bsontype.Undefined:
		*m = Metadata{}
	default:
		return fmt.Errorf("%w: metadata of bson type %s", ErrInvalidValue, t)
	}
	return nil
}
