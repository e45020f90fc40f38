package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/fiva"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *fiva.Address {
	var a addressValue
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			flagDie("Cannot parse %q address flag value. %s", name, err)
		}
	}
	fl.Var(&a, name, usage)
	return (*fiva.Address)(&a)
}

type addressValue fiva.Address

func (a addressValue) String() string {
	if len(a) == 0 {
		return ""
	}
	return fiva.Address(a).String()
}

func (a *addressValue) Set(raw string) error {
	addr, err := fiva.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = addressValue(addr)
	return nil
}

// flCoins returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. Amounts
// are given in whole units, for example 1.5.
func flCoins(fl *flag.FlagSet, name, defaultVal, usage string) *fiva.Coins {
	var c coinsValue
	if defaultVal != "" {
		if err := c.Set(defaultVal); err != nil {
			flagDie("Cannot parse %q coins flag value. %s", name, err)
		}
	}
	fl.Var(&c, name, usage)
	return (*fiva.Coins)(&c)
}

type coinsValue fiva.Coins

func (c coinsValue) String() string {
	return fiva.Coins(c).String()
}

func (c *coinsValue) Set(raw string) error {
	v, err := fiva.ParseCoins(raw)
	if err != nil {
		return err
	}
	*c = coinsValue(v)
	return nil
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *[]byte {
	var b flagbyte
	if defaultVal != "" {
		if err := b.Set(defaultVal); err != nil {
			flagDie("Cannot parse %q hex encoded flag value. %s", name, err)
		}
	}
	fl.Var(&b, name, usage)
	return (*[]byte)(&b)
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// flagDie terminates the program when an invalid flag value was given.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}
