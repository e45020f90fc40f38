package user

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
)

// Code is the code reference of the User contract.
const Code = "user"

// Init returns the StateInit of the User of owner in the market of master.
func Init(master, owner fiva.Address) fiva.StateInit {
	return InitWithCode(Code, master, owner)
}

// InitWithCode is Init for a market configured with another User code
// reference.
func InitWithCode(code string, master, owner fiva.Address) fiva.StateInit {
	data := cell.NewBuilder().Address(owner).Address(master).Bytes()
	return fiva.StateInit{Code: code, Data: data}
}

// DeriveAddress returns the address of the User of owner in the market of
// master. It never touches the store.
func DeriveAddress(master, owner fiva.Address) fiva.Address {
	return Init(master, owner).Address()
}
