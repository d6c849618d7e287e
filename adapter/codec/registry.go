package codec

import (
	"reflect"
	"regexp"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/pkg/tags"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var (
	regexpType = reflect.TypeFor[*regexp.Regexp]()
	uuidType   = reflect.TypeFor[uuid.UUID]()
)

// NewRegistry returns a BSON registry that reads odm struct tags and writes
// [*regexp.Regexp] as regular expressions and [uuid.UUID] as subtype 4
// binaries.
func NewRegistry() *bsoncodec.Registry {
	sc, err := bsoncodec.NewStructCodec(bsoncodec.StructTagParserFunc(parseTags))
	if err != nil {
		// only happens with a nil parser
		panic(err)
	}

	reg := bson.NewRegistry()
	reg.RegisterKindEncoder(reflect.Struct, sc)
	reg.RegisterKindDecoder(reflect.Struct, sc)
	reg.RegisterTypeEncoder(regexpType, bsoncodec.ValueEncoderFunc(encodeRegexp))
	reg.RegisterTypeEncoder(uuidType, bsoncodec.ValueEncoderFunc(encodeUUID))
	return reg
}

func parseTags(sf reflect.StructField) (bsoncodec.StructTags, error) {
	t := tags.Parse(sf)
	return bsoncodec.StructTags{
		Name:      t.Name,
		OmitEmpty: t.OmitEmpty,
		Inline:    t.Inline,
		Skip:      t.Skip,
	}, nil
}

func encodeRegexp(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if val.IsNil() {
		return vw.WriteNull()
	}
	re := val.Interface().(*regexp.Regexp)
	return vw.WriteRegex(re.String(), "")
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	u := val.Interface().(uuid.UUID)
	return vw.WriteBinaryWithSubtype(u[:], bsontype.BinaryUUID)
}
