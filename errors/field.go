package errors

import (
	"fmt"
)

// Field marks err as the validation failure of a model field and returns
// nil for a nil err. Field names use Go naming, nested fields a dotted
// path such as Supplies.0.FromAmount.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{name: name, desc: description, cause: withStack(err)}
}

// AppendField adds the error of a field, if any, to errs.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	name  string
	desc  string
	cause error
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.name, e.cause)
	}
	return fmt.Sprintf("field %q: %s: %s", e.name, e.desc, e.cause)
}

func (e *fieldError) Cause() error {
	return e.cause
}

// FieldErrors collects the errors reported for the named field anywhere in
// err, including every member of a multi error.
func FieldErrors(err error, name string) []error {
	var found []error
	walk(err, func(e error) bool {
		if f, ok := e.(*fieldError); ok && f.name == name {
			found = append(found, e)
			return false
		}
		return true
	})
	return found
}

// walk visits err and its causes, descending into every member of a multi
// error. Returning false from visit skips the causes of that error.
func walk(err error, visit func(error) bool) {
	for !isNilErr(err) {
		if !visit(err) {
			return
		}
		switch e := err.(type) {
		case unpacker:
			for _, member := range e.Unpack() {
				walk(member, visit)
			}
			return
		case causer:
			err = e.Cause()
		default:
			return
		}
	}
}
