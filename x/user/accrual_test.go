package user

import (
	"math"
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest/assert"
)

func TestAccrual(t *testing.T) {
	cases := map[string]struct {
		amount       fiva.Coins
		current      fiva.Index
		snapshot     fiva.Index
		wantAccrued  fiva.Coins
		wantInterest fiva.Coins
		wantErr      *errors.Error
	}{
		"unchanged index": {amount: 100, current: 1000, snapshot: 1000, wantAccrued: 100, wantInterest: 0},
		"ten percent":     {amount: 100, current: 1100, snapshot: 1000, wantAccrued: 110, wantInterest: 10},
		"thirty percent":  {amount: 100, current: 1300, snapshot: 1000, wantAccrued: 130, wantInterest: 30},
		"truncates once":  {amount: 7, current: 10, snapshot: 3, wantAccrued: 23, wantInterest: 16},
		"no rounding before division": {
			// 1 * 1999 / 1000 would truncate to 1 if divided first
			amount: 3, current: 1999, snapshot: 1000, wantAccrued: 5, wantInterest: 2,
		},
		"index below snapshot": {amount: 100, current: 900, snapshot: 1000, wantAccrued: 90, wantInterest: 0},
		"large values do not overflow": {
			amount: math.MaxUint64 / 2, current: 1500, snapshot: 1000,
			wantAccrued: 13835058055282163710, wantInterest: 4611686018427387903,
		},
		"result overflows": {amount: math.MaxUint64, current: 2000, snapshot: 1000, wantErr: errors.ErrOverflow},
		"zero snapshot":    {amount: 1, current: 1000, snapshot: 0, wantErr: errors.ErrInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			accrued, err := Accrued(tc.amount, tc.current, tc.snapshot)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				_, err = Interest(tc.amount, tc.current, tc.snapshot)
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.wantAccrued, accrued)
			interest, err := Interest(tc.amount, tc.current, tc.snapshot)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantInterest, interest)
		})
	}
}
