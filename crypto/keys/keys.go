// Package keys derives the long-lived stealth key material from a single
// wallet signature, so the same wallet always recovers the same keys.
package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// DerivationMessage is the fixed message the wallet signs to derive the
// stealth keys. Changing it invalidates every key derived from it, hence
// the version suffix.
const DerivationMessage = "stealthpay wants to derive your stealth keys (v1)"

// MinSignatureLen is the smallest signature accepted by Derive. A plain
// secp256k1 signature is 64 bytes before the recovery id.
const MinSignatureLen = 64

var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrDerivationCollision = errors.New("derived scalar is zero")
)

// SigningKeyMaterial holds the recipient's spending and viewing key pairs.
// It never leaves the recipient's process; only the public halves are
// published, via the stealth meta-address.
type SigningKeyMaterial struct {
	SpendingKey *ecdsa.PrivateKey
	ViewingKey  *ecdsa.PrivateKey
}

const (
	spendDomain = "stealthpay/spend/v1"
	viewDomain  = "stealthpay/view/v1"

	// resalt attempts before giving up on a zero scalar
	maxResalt = 255
)

// Derive turns a wallet signature over DerivationMessage into the spending
// and viewing key pairs. It is a pure function: the same signature always
// yields the same material. The two scalars come from domain-separated
// hashes so that handing out the viewing key never leaks spend authority.
func Derive(signature []byte) (*SigningKeyMaterial, error) {
	if len(signature) < MinSignatureLen {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d",
			ErrInvalidSignature, len(signature), MinSignatureLen)
	}

	spending, err := deriveKey(spendDomain, signature)
	if err != nil {
		return nil, err
	}
	viewing, err := deriveKey(viewDomain, signature)
	if err != nil {
		return nil, err
	}

	return &SigningKeyMaterial{
		SpendingKey: spending,
		ViewingKey:  viewing,
	}, nil
}

// deriveKey hashes domain||signature into a nonzero scalar below the curve
// order and lifts it to a key pair. A digest that reduces to zero is
// re-salted with a counter byte instead of being accepted.
func deriveKey(domain string, signature []byte) (*ecdsa.PrivateKey, error) {
	n := crypto.S256().Params().N
	for salt := 0; salt <= maxResalt; salt++ {
		h := sha256.New()
		h.Write([]byte(domain))
		if salt > 0 {
			h.Write([]byte{byte(salt)})
		}
		h.Write(signature)

		k := new(big.Int).SetBytes(h.Sum(nil))
		k.Mod(k, n)
		if k.Sign() == 0 {
			continue
		}

		buf := make([]byte, 32)
		k.FillBytes(buf)
		key, err := crypto.ToECDSA(buf)
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	return nil, ErrDerivationCollision
}
