package protocol

import (
	"crypto/sha256"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"golang.org/x/crypto/ed25519"
)

// SignatureSize is the size of the signature prefixing admin commands.
const SignatureSize = ed25519.SignatureSize

// Digest returns the canonical hash that is signed for a body.
func Digest(body []byte) []byte {
	h := sha256.Sum256(body)
	return h[:]
}

// SignAdmin serializes cmd and prefixes it with an ed25519 signature over
// its digest.
func SignAdmin(key ed25519.PrivateKey, cmd Body) []byte {
	body := cmd.Encode()
	sig := ed25519.Sign(key, Digest(body))
	return cell.NewBuilder().Fixed(sig).Fixed(body).Bytes()
}

// OpenAdmin splits a signed admin command into the signature and the body
// that was signed. No verification happens here.
func OpenAdmin(raw []byte) (sig, body []byte, err error) {
	s := cell.NewSlice(raw)
	sig = s.Fixed(SignatureSize)
	if err := s.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return sig, s.Rest(), nil
}

// External is an inbound message coming from outside of the network,
// addressed to a contract that implements fiva.ExternalReceiver.
type External struct {
	To   fiva.Address
	Body []byte
}

// Encode serializes the external message.
func (e External) Encode() []byte {
	return cell.NewBuilder().Address(e.To).Ref(e.Body).Bytes()
}

// DecodeExternal parses an external message.
func DecodeExternal(raw []byte) (External, error) {
	s := cell.NewSlice(raw)
	e := External{To: s.Address(), Body: s.Ref()}
	if err := s.End(); err != nil {
		return External{}, errors.Wrap(err, "external message")
	}
	if err := e.To.Validate(); err != nil {
		return External{}, errors.Field("To", err, "destination")
	}
	if e.Body == nil {
		return External{}, errors.Wrap(errors.ErrEmpty, "body")
	}
	return e, nil
}
