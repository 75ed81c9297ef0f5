package protocol

import "context"

// MediaType declares how a key or value is serialized: either absent
// (no info), a predefined encoding id, or a custom media-type name
// with parameters. Only one of PredefinedID / (Name, Params) is
// meaningful, selected by InfoType.
type MediaType struct {
	InfoType     byte // 0 = none, 1 = predefined, 2 = custom
	PredefinedID uint32
	Name         []byte
	Params       []MediaTypeParam
}

// MediaTypeParam is one key/value pair of a custom media type.
type MediaTypeParam struct {
	Key   []byte
	Value []byte
}

// NoMediaType is the zero-info media type descriptor.
var NoMediaType = MediaType{InfoType: mediaTypeInfoNone}

// PredefinedMediaType builds a MediaType carrying a predefined
// encoding id.
func PredefinedMediaType(id uint32) MediaType {
	return MediaType{InfoType: mediaTypeInfoPredefined, PredefinedID: id}
}

// WriteMediaType appends mt's wire encoding to buf.
func WriteMediaType(buf []byte, mt MediaType) []byte {
	buf = PutByte(buf, mt.InfoType)
	switch mt.InfoType {
	case mediaTypeInfoNone:
		// discriminant only
	case mediaTypeInfoPredefined:
		buf = PutVInt(buf, mt.PredefinedID)
	case mediaTypeInfoCustom:
		buf = PutByteArray(buf, mt.Name)
		buf = PutVInt(buf, uint32(len(mt.Params)))
		for _, p := range mt.Params {
			buf = PutByteArray(buf, p.Key)
			buf = PutByteArray(buf, p.Value)
		}
	}
	return buf
}

// ReadMediaType decodes a MediaType from r.
func ReadMediaType(ctx context.Context, r Reader) (MediaType, error) {
	infoType, err := ReadByte(ctx, r)
	if err != nil {
		return MediaType{}, err
	}

	switch infoType {
	case mediaTypeInfoNone:
		return MediaType{InfoType: infoType}, nil

	case mediaTypeInfoPredefined:
		id, err := ReadVInt(ctx, r)
		if err != nil {
			return MediaType{}, err
		}
		return MediaType{InfoType: infoType, PredefinedID: id}, nil

	case mediaTypeInfoCustom:
		name, err := ReadByteArray(ctx, r)
		if err != nil {
			return MediaType{}, err
		}
		paramsNum, err := ReadVInt(ctx, r)
		if err != nil {
			return MediaType{}, err
		}
		params := make([]MediaTypeParam, paramsNum)
		for i := range params {
			key, err := ReadByteArray(ctx, r)
			if err != nil {
				return MediaType{}, err
			}
			value, err := ReadByteArray(ctx, r)
			if err != nil {
				return MediaType{}, err
			}
			params[i] = MediaTypeParam{Key: key, Value: value}
		}
		return MediaType{InfoType: infoType, Name: name, Params: params}, nil

	default:
		return MediaType{}, &ProtocolError{Message: "impossible media type discriminant"}
	}
}
