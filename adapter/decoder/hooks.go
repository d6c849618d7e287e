package decoder

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
	objectIDType = reflect.TypeFor[primitive.ObjectID]()
)

// dateTimeHook converts wire dates to [time.Time].
func dateTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	if dt, ok := data.(primitive.DateTime); ok {
		return dt.Time(), nil
	}
	return data, nil
}

// uuidHook converts subtype 4 binaries and canonical strings to
// [uuid.UUID].
func uuidHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != uuidType {
		return data, nil
	}
	switch t := data.(type) {
	case primitive.Binary:
		if t.Subtype == bsontype.BinaryUUID {
			return uuid.FromBytes(t.Data)
		}
	case string:
		return uuid.Parse(t)
	}
	return data, nil
}

// objectIDHook parses hex strings into [primitive.ObjectID].
func objectIDHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != objectIDType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		return primitive.ObjectIDFromHex(s)
	}
	return data, nil
}
