package fiva_test

import (
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest/assert"
)

func TestParseCoins(t *testing.T) {
	cases := map[string]struct {
		in      string
		want    fiva.Coins
		wantErr *errors.Error
	}{
		"whole":          {in: "100", want: 100000000000},
		"fraction":       {in: "1.5", want: 1500000000},
		"smallest unit":  {in: "0.000000001", want: 1},
		"zero":           {in: "0", want: 0},
		"too precise":    {in: "0.0000000001", wantErr: errors.ErrAmount},
		"negative":       {in: "-1", wantErr: errors.ErrAmount},
		"not a number":   {in: "ten", wantErr: errors.ErrInput},
		"overflow":       {in: "100000000000", wantErr: errors.ErrOverflow},
		"trailing zeros": {in: "2.500", want: 2500000000},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := fiva.ParseCoins(tc.in)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestCoinsString(t *testing.T) {
	assert.Equal(t, "1.5", fiva.Coins(1500000000).String())
	assert.Equal(t, "0", fiva.Coins(0).String())
	assert.Equal(t, "0.000000001", fiva.Coins(1).String())
}

func TestCoinsArithmetic(t *testing.T) {
	sum, err := fiva.Coins(5).Add(7)
	assert.Nil(t, err)
	assert.Equal(t, fiva.Coins(12), sum)

	_, err = fiva.Coins(^uint64(0)).Add(1)
	assert.IsErr(t, errors.ErrOverflow, err)

	diff, err := fiva.Coins(7).Sub(5)
	assert.Nil(t, err)
	assert.Equal(t, fiva.Coins(2), diff)

	_, err = fiva.Coins(5).Sub(7)
	assert.IsErr(t, errors.ErrAmount, err)
}

func TestIndexRate(t *testing.T) {
	assert.Equal(t, "1", fiva.Index(1000).String())
	assert.Equal(t, "1.1", fiva.Index(1100).String())
	assert.Equal(t, "0.999", fiva.Index(999).String())

	idx, err := fiva.ParseRate("1.3")
	assert.Nil(t, err)
	assert.Equal(t, fiva.Index(1300), idx)

	_, err = fiva.ParseRate("1.0001")
	assert.IsErr(t, errors.ErrInput, err)
	_, err = fiva.ParseRate("0")
	assert.IsErr(t, errors.ErrInput, err)

	assert.IsErr(t, errors.ErrInput, fiva.Index(0).Validate())
}
