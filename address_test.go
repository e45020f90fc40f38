package fiva_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		addr := fiva.NewAddress([]byte("ABCD123456LHB"))

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(len(addr), ShouldEqual, fiva.AddressLength)
	})

	Convey("test condition printing keeps ext and type readable", t, func() {
		cond := fiva.NewCondition("init", "user", []byte{0xCA, 0xFE})

		So(cond.String(), ShouldEqual, "init/user/CAFE")
	})
}

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    fiva.Condition
		wantExt string
		wantTyp string
		wantErr *errors.Error
	}{
		"valid": {
			cond:    fiva.NewCondition("init", "master", []byte("data")),
			wantExt: "init",
			wantTyp: "master",
		},
		"data with newline": {
			cond:    fiva.NewCondition("init", "user", []byte("\n\x20")),
			wantExt: "init",
			wantTyp: "user",
		},
		"too short extension": {
			cond:    fiva.NewCondition("in", "user", []byte("data")),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    fiva.Condition("init/user/"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
		})
	}
}

func TestStateInitAddressIsDeterministic(t *testing.T) {
	a := fiva.StateInit{Code: "user", Data: []byte("owner+master")}
	b := fiva.StateInit{Code: "user", Data: []byte("owner+master")}
	c := fiva.StateInit{Code: "user", Data: []byte("owner+other")}
	d := fiva.StateInit{Code: "master", Data: []byte("owner+master")}

	assert.Equal(t, a.Address(), b.Address())
	assert.NotEqual(t, a.Address(), c.Address())
	assert.NotEqual(t, a.Address(), d.Address())
	require.NoError(t, a.Address().Validate())
}

func TestAddressUnmarshalJSON(t *testing.T) {
	cond := fiva.NewCondition("foo", "bar", []byte("conditiondata"))
	hexAddr := cond.Address().String()
	bech, err := cond.Address().Bech32()
	require.NoError(t, err)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr fiva.Address
	}{
		"hex decoding": {
			json:     `"` + hexAddr + `"`,
			wantAddr: cond.Address(),
		},
		"bech32 decoding": {
			json:     `"` + bech + `"`,
			wantAddr: cond.Address(),
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: cond.Address(),
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"wrong length": {
			json:    `"CAFE"`,
			wantErr: errors.ErrInput,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a fiva.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil {
				assert.Equal(t, tc.wantAddr, a)
			}
		})
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := fiva.NewCondition("init", "wallet", []byte{1, 2, 3}).Address()
	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got fiva.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))
}

func TestAddressValidate(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(fiva.Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(fiva.Address("short").Validate()))
	assert.NoError(t, fiva.NewAddress([]byte("x")).Validate())
}
