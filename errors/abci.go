package errors

import (
	"fmt"
)

const (
	// SuccessABCICode is the code of a delivered transaction or query.
	SuccessABCICode = 0

	// Errors without a registered code are reported under code 1 and,
	// outside of debug mode, with a fixed log.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response for err. Debug mode
// logs the full error with its stack. Otherwise unregistered errors and
// recovered panics only report a generic log, their messages may carry
// node internals.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode, code == ErrPanic.code:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// ABCIError rebuilds the error of an ABCI response on the client side.
// Codes not registered with this package become plain errors, reported
// back as internal.
func ABCIError(code uint32, log string) error {
	if code == SuccessABCICode {
		return nil
	}
	if e := usedCodes[code]; e != nil {
		return Wrap(e, log)
	}
	return fmt.Errorf("code %d: %s", code, log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode is the code of the outermost error in the cause chain of err
// that has one.
func abciCode(err error) uint32 {
	code := internalABCICode
	walk(err, func(e error) bool {
		c, ok := e.(coder)
		if ok {
			code = c.ABCICode()
		}
		return !ok
	})
	return code
}
