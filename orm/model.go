package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
// Every model must be a pointer to a struct with protobuf field tags.
type Model interface {
	proto.Message
	Validate() error
}

// Marshal serializes a model. Validation is not performed.
func Marshal(m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads a serialized model into dest, resetting it first.
func Unmarshal(raw []byte, dest proto.Message) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}
