package protocol

import (
	"hash/crc32"
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest/assert"
	"golang.org/x/crypto/ed25519"
)

func TestOpcodesAreNameChecksums(t *testing.T) {
	assert.Equal(t, Op(crc32.ChecksumIEEE([]byte("deposit"))), OpDeposit)
	assert.Equal(t, Op(crc32.ChecksumIEEE([]byte("set_pt_minder_addr"))), OpSetPTMinter)
	assert.Equal(t, "update_index", OpUpdateIndex.String())
	assert.Equal(t, "transfer_notification", OpTransferNotification.String())
	assert.Equal(t, "0x00000001", Op(1).String())
}

func TestDecodeVariants(t *testing.T) {
	a := fiva.NewAddress([]byte("a"))
	b := fiva.NewAddress([]byte("b"))

	bodies := []Body{
		&Transfer{QueryID: 1, Amount: 100, Destination: a, ResponseDestination: b, ForwardValue: 5,
			ForwardPayload: (&Supply{QueryID: 1, PTMinter: a, YTMinter: b}).Encode()},
		&TransferNotification{QueryID: 2, Amount: 3, Sender: a},
		&InternalTransfer{QueryID: 3, Amount: 7, From: a, ForwardPayload: []byte{}},
		&Burn{QueryID: 4, Amount: 9, ResponseDestination: b},
		&Mint{QueryID: 5, To: a, Amount: 11},
		&Deposit{QueryID: 6, OrderID: 2, Depositor: a, Amount: 100, Recipient: a, Minted: 100,
			MasterWallet: b, PTMinter: a, YTMinter: b, Index: 1000, Maturity: 1700000000, Policy: PolicyReject},
		&RedeemNotification{QueryID: 7, Leg: LegYield, Amount: 50, Holder: a, Index: 1300},
		&RedeemSettlement{QueryID: 8, Owner: a, Principal: 100, Yield: 100, Payout: 100, Destination: b},
		&UpdateIndex{QueryID: 9, Index: 1100},
		&SetYTMinter{QueryID: 10, Minter: b},
		&UpdateWalletAddr{QueryID: 11},
		&DumpReply{QueryID: 12, Data: []byte("state")},
	}

	for _, want := range bodies {
		t.Run(want.Op().String(), func(t *testing.T) {
			got, err := Decode(want.Encode())
			assert.Nil(t, err)
			assert.Equal(t, want, got)

			op, q, err := Header(want.Encode())
			assert.Nil(t, err)
			assert.Equal(t, want.Op(), op)
			assert.Equal(t, want.Query(), q)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{1, 2})
	assert.IsErr(t, errors.ErrInput, err)

	_, err = Decode(header(Op(42), 1).Bytes())
	assert.IsErr(t, errors.ErrUnknownOp, err)

	trailing := append((&Excesses{QueryID: 1}).Encode(), 0)
	_, err = Decode(trailing)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestBounce(t *testing.T) {
	body := (&Excesses{QueryID: 3}).Encode()
	bounced := Bounce(body)

	got, ok := Unbounce(bounced)
	assert.Equal(t, true, ok)
	assert.Equal(t, body, got)

	_, ok = Unbounce(body)
	assert.Equal(t, false, ok)
}

func TestSignAdmin(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	assert.Nil(t, err)

	cmd := &UpdateIndex{QueryID: 1, Index: 1100}
	raw := SignAdmin(priv, cmd)

	sig, body, err := OpenAdmin(raw)
	assert.Nil(t, err)
	assert.Equal(t, cmd.Encode(), body)
	assert.Equal(t, true, ed25519.Verify(pub, Digest(body), sig))

	_, _, err = OpenAdmin([]byte("short"))
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestExternal(t *testing.T) {
	to := fiva.NewAddress([]byte("master"))
	ext := External{To: to, Body: []byte("cmd")}
	got, err := DecodeExternal(ext.Encode())
	assert.Nil(t, err)
	assert.Equal(t, ext, got)

	_, err = DecodeExternal(External{Body: []byte("x")}.Encode())
	assert.IsErr(t, errors.ErrEmpty, err)
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]struct {
		want    PairingPolicy
		wantErr *errors.Error
	}{
		"":       {want: PolicyHold},
		"hold":   {want: PolicyHold},
		"reject": {want: PolicyReject},
		"wait":   {wantErr: errors.ErrInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePolicy(name)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
			assert.Nil(t, got.Validate())
		})
	}
	assert.IsErr(t, errors.ErrInput, PairingPolicy(7).Validate())
}
