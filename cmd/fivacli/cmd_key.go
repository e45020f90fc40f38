package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/fiva/x/wallet"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

const defaultDerivationPath = "m/44'/607'/0'"

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

The key is derived from a seed using the given bip44 path. Without -seed a
random seed is generated and printed, keep it to recover the key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use FIVACLI_PRIV_KEY environment variable to set it.")
		seedFl = flHex(fl, "seed", "", "Hex encoded seed to derive the key from.")
		pathFl = fl.String("derivation", defaultDerivationPath, "bip44 derivation path.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	seed := *seedFl
	if len(seed) == 0 {
		seed = make([]byte, 64)
		if _, err := rand.Read(seed); err != nil {
			return fmt.Errorf("cannot generate seed: %s", err)
		}
		fmt.Fprintf(output, "seed: %s\n", hex.EncodeToString(seed))
	}
	priv, err := deriveKey(seed, *pathFl)
	if err != nil {
		return err
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(priv); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	return nil
}

func deriveKey(seed []byte, path string) (ed25519.PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key using path=%q: %s", path, err)
	}
	return ed25519.NewKeyFromSeed(k.Key), nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the public key and the wallet address controlled by your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use FIVACLI_PRIV_KEY environment variable to set it.")
		subwalletFl = fl.Uint("subwallet", 0, "Subwallet id of the wallet.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	pub := publicKey(key)
	fmt.Fprintf(output, "pub_key: %s\n", hex.EncodeToString(pub))
	return printAddress(output, "wallet", wallet.Address(pub, uint32(*subwalletFl)))
}
