package jetton

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
)

// MinterInit returns the StateInit of a minter controlled by admin. The
// content distinguishes minters of the same admin.
func MinterInit(admin fiva.Address, content string) fiva.StateInit {
	data := cell.NewBuilder().Address(admin).String(content).Bytes()
	return fiva.StateInit{Code: MinterCode, Data: data}
}

// WalletInit returns the StateInit of the wallet of owner for minter.
func WalletInit(owner, minter fiva.Address) fiva.StateInit {
	data := cell.NewBuilder().Address(owner).Address(minter).Bytes()
	return fiva.StateInit{Code: WalletCode, Data: data}
}

// WalletAddress returns the address of the wallet of owner for minter.
func WalletAddress(owner, minter fiva.Address) fiva.Address {
	return WalletInit(owner, minter).Address()
}

// WalletData is returned by the get_wallet_data getter.
type WalletData struct {
	Balance fiva.Coins
	Owner   fiva.Address
	Minter  fiva.Address
}

// DecodeWalletData parses the get_wallet_data getter result.
func DecodeWalletData(raw []byte) (WalletData, error) {
	s := cell.NewSlice(raw)
	d := WalletData{Balance: s.Coins(), Owner: s.Address(), Minter: s.Address()}
	return d, s.End()
}

// JettonData is returned by the get_jetton_data getter.
type JettonData struct {
	TotalSupply fiva.Coins
	Admin       fiva.Address
	Content     string
}

// DecodeJettonData parses the get_jetton_data getter result.
func DecodeJettonData(raw []byte) (JettonData, error) {
	s := cell.NewSlice(raw)
	d := JettonData{TotalSupply: s.Coins(), Admin: s.Address(), Content: s.String()}
	return d, s.End()
}

// DecodeAddress parses a getter result holding a single address.
func DecodeAddress(raw []byte) (fiva.Address, error) {
	s := cell.NewSlice(raw)
	a := s.Address()
	return a, s.End()
}
