package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All errors
// returned by Unpack method are directly included in the result.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

type unpacker interface {
	Unpack() []error
}

// multiErr represents a group of errors, reported together. The first error
// decides the ABCI code.
type multiErr []error

func (errs multiErr) Unpack() []error {
	return errs
}

func (errs multiErr) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error.
func (errs multiErr) ABCICode() uint32 {
	return abciCode(errs[0])
}
