package schema

import (
	"encoding/json"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
)

// Kind is the primitive JSON type a payload field must carry.
type Kind int

const (
	KindBoolean Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Field is one required payload field. Code is returned when the field is
// present with the wrong type; Check, when set, runs right after the type check.
type Field struct {
	Name  string
	Kind  Kind
	Code  string
	Check func(value interface{}) *apperr.ValidationError
}

// Contract is the payload shape of one metric type.
//
// Fields are checked in order and the first failure wins. EmptyBody contracts
// reject any key. Check runs once every field has passed.
type Contract struct {
	Fields    []Field
	EmptyBody bool
	Check     func(payload map[string]interface{}) *apperr.ValidationError
}

var (
	successField   = Field{Name: "success", Kind: KindBoolean, Code: apperr.CodeInvalidSuccess}
	eventTimeField = Field{Name: "event_time", Kind: KindNumber, Code: apperr.CodeInvalidEventTime}
	emptyBody      = Contract{EmptyBody: true}
)

// Contracts maps every metric type to its payload contract. Types missing
// from this table are rejected with INVALID_TYPE.
var Contracts = map[v1.MetricType]Contract{
	v1.TypeRegister:             {Fields: []Field{successField, eventTimeField}},
	v1.TypeLogin:                {Fields: []Field{successField, eventTimeField}},
	v1.TypeRegisterWithProvider: emptyBody,
	v1.TypeTwit:                 emptyBody,
	v1.TypeLike:                 emptyBody,
	v1.TypeRetwit:               emptyBody,
	v1.TypeComment:              emptyBody,
	v1.TypeLoginWithProvider:    {Fields: []Field{successField}},
	v1.TypeBlocked: {Fields: []Field{
		{Name: "blocked", Kind: KindBoolean, Code: apperr.CodeInvalidBlocked},
	}},
	v1.TypeLocation: {
		Fields: []Field{
			{Name: "latitude", Kind: KindNumber, Code: apperr.CodeInvalidLatitude},
			{Name: "longitude", Kind: KindNumber, Code: apperr.CodeInvalidLongitude},
		},
		Check: checkCoordinates,
	},
	v1.TypeFollow: {Fields: []Field{
		{Name: "amount", Kind: KindNumber, Code: apperr.CodeInvalidAmount, Check: checkPositive},
		{Name: "followed", Kind: KindBoolean, Code: apperr.CodeInvalidFollowed},
	}},
	v1.TypeHashtag: {Fields: []Field{
		{Name: "hashtag", Kind: KindString, Code: apperr.CodeInvalidHashtag},
	}},
}

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ValidCoordinates reports whether both values are within range, bounds inclusive.
func ValidCoordinates(latitude, longitude float64) bool {
	return latitude >= minLatitude && latitude <= maxLatitude &&
		longitude >= minLongitude && longitude <= maxLongitude
}

func checkCoordinates(payload map[string]interface{}) *apperr.ValidationError {
	lat, lon, _ := CoordinatesOf(payload)
	if !ValidCoordinates(lat, lon) {
		return apperr.NewValidationError("metrics", "Invalid coordinates", apperr.CodeInvalidCoordinates)
	}
	return nil
}

func checkPositive(value interface{}) *apperr.ValidationError {
	n, _ := asNumber(value)
	if n <= 0 {
		return apperr.NewValidationError("metrics", `"amount" must be a positive number`, apperr.CodeInvalidAmount)
	}
	return nil
}

// CoordinatesOf extracts latitude and longitude from a location payload.
// ok is false if either is missing or not numeric.
func CoordinatesOf(payload map[string]interface{}) (latitude, longitude float64, ok bool) {
	lat, latOK := asNumber(payload["latitude"])
	lon, lonOK := asNumber(payload["longitude"])
	return lat, lon, latOK && lonOK
}

func hasKind(value interface{}, kind Kind) bool {
	switch kind {
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindNumber:
		_, ok := asNumber(value)
		return ok
	case KindString:
		_, ok := value.(string)
		return ok
	}
	return false
}

// asNumber accepts the numeric representations a decoded JSON payload can hold.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
