package wallet

import "github.com/iov-one/fiva/errors"

// ErrInvalidSequence is returned when an order does not carry the current
// sequence number of the wallet.
var ErrInvalidSequence = errors.Register(30, "invalid sequence")
