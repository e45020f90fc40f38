package user

import (
	"math/big"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
)

// Accrued returns the value of b deposited at snapshot once the index
// reached current. The result is truncated toward zero after the division.
func Accrued(b fiva.Coins, current, snapshot fiva.Index) (fiva.Coins, error) {
	if snapshot == 0 {
		return 0, errors.Wrap(errors.ErrInput, "zero index snapshot")
	}
	n := new(big.Int).SetUint64(uint64(b))
	n.Mul(n, new(big.Int).SetUint64(uint64(current)))
	n.Quo(n, new(big.Int).SetUint64(uint64(snapshot)))
	if !n.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "accrued value of %d", b)
	}
	return fiva.Coins(n.Uint64()), nil
}

// Interest returns the yield of b: its accrued value minus the principal.
// An index below the snapshot yields nothing.
func Interest(b fiva.Coins, current, snapshot fiva.Index) (fiva.Coins, error) {
	accrued, err := Accrued(b, current, snapshot)
	if err != nil {
		return 0, err
	}
	if accrued < b {
		return 0, nil
	}
	return accrued - b, nil
}
