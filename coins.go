package fiva

import (
	"math/big"

	"github.com/iov-one/fiva/errors"
	"github.com/shopspring/decimal"
)

// CoinsDecimals is the number of fractional digits of the native coin and
// of every jetton handled by the protocol.
const CoinsDecimals = 9

// Coins is an amount expressed in the smallest indivisible unit.
type Coins uint64

// Add returns the sum or an overflow error.
func (c Coins) Add(o Coins) (Coins, error) {
	s := c + o
	if s < c {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", c, o)
	}
	return s, nil
}

// Sub returns the difference or an error if o is greater than c.
func (c Coins) Sub(o Coins) (Coins, error) {
	if o > c {
		return 0, errors.Wrapf(errors.ErrAmount, "%d - %d", c, o)
	}
	return c - o, nil
}

// Decimal returns the value in whole units.
func (c Coins) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(c)), -CoinsDecimals)
}

// String returns the amount in whole units, for example "1.5".
func (c Coins) String() string {
	return c.Decimal().String()
}

// ParseCoins parses a decimal amount of whole units, for example "12.25".
func ParseCoins(s string) (Coins, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "coins %q", s)
	}
	if d.Sign() < 0 {
		return 0, errors.Wrap(errors.ErrAmount, "negative coins")
	}
	units := d.Mul(decimal.New(1, CoinsDecimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrAmount, "more than %d decimals", CoinsDecimals)
	}
	n, ok := new(big.Int).SetString(units.Truncate(0).String(), 10)
	if !ok {
		return 0, errors.Wrapf(errors.ErrInput, "coins %q", s)
	}
	if !n.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "coins %q", s)
	}
	return Coins(n.Uint64()), nil
}

// IndexScale is the index value representing a rate of exactly 1.0.
const IndexScale = 1000

// Index is the fixed point interest multiplier of the underlying asset.
type Index uint64

// Rate returns the index as a multiplier, 1100 is 1.1.
func (i Index) Rate() decimal.Decimal {
	return decimal.New(int64(i), 0).Div(decimal.New(IndexScale, 0))
}

// String returns the rate representation.
func (i Index) String() string {
	return i.Rate().String()
}

// Validate returns an error for the zero index, which cannot be used as a
// snapshot.
func (i Index) Validate() error {
	if i == 0 {
		return errors.Wrap(errors.ErrInput, "index must be positive")
	}
	return nil
}

// ParseRate converts a rate such as "1.1" into an index. Precision beyond
// the index scale is rejected.
func ParseRate(s string) (Index, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "rate %q", s)
	}
	scaled := d.Mul(decimal.New(IndexScale, 0))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrInput, "rate %q is too precise", s)
	}
	if scaled.Sign() <= 0 {
		return 0, errors.Wrap(errors.ErrInput, "rate must be positive")
	}
	return Index(scaled.IntPart()), nil
}
