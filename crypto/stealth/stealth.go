// Package stealth implements ERC-5564-style stealth payments on secp256k1:
// one-time address generation for senders, view-tag scanning and private
// key recovery for recipients.
//
// A recipient publishes a meta-address (spending + viewing public keys).
// For each payment the sender picks a fresh ephemeral key r and computes
//
//	sh        = SHA-256(compress(r * ViewingPub))
//	P_stealth = SpendingPub + sh*G
//
// and pays the address of P_stealth. The recipient finds the payment by
// recomputing sh from the announced ephemeral public key R = r*G with the
// viewing private key, and spends with spendingPriv + sh (mod N).
package stealth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SchemeSecp256k1 is the only scheme id defined so far: secp256k1 ECDH
// with SHA-256 shared-secret hashing.
const SchemeSecp256k1 uint64 = 1

var (
	ErrUnsupportedScheme     = errors.New("unsupported stealth scheme")
	ErrInvalidMetaAddress    = errors.New("invalid stealth meta-address")
	ErrRandomness            = errors.New("secure randomness unavailable")
	ErrMalformedAnnouncement = errors.New("malformed announcement")
	// ErrNoMatch means the announcement was not for this recipient. It is
	// an expected outcome of scanning, not a failure.
	ErrNoMatch = errors.New("announcement does not belong to this recipient")
)

// Announcement is the public record a sender posts so the recipient can
// discover a payment: the one-time address, the ephemeral public key in
// compressed form, the one-byte view tag and an opaque metadata payload.
type Announcement struct {
	SchemeID        uint64
	StealthAddress  common.Address
	EphemeralPubKey []byte
	ViewTag         byte
	Metadata        []byte
}

// StealthAddressDetails is what a generation call hands back to the
// sender. SharedSecret is the hashed ECDH secret; it is never published,
// but the sender may use it to key an encrypted memo for the recipient.
type StealthAddressDetails struct {
	StealthAddress  common.Address
	EphemeralPubKey []byte
	ViewTag         byte
	SharedSecret    []byte
}

// GenerateStealthAddress derives a fresh one-time address for the given
// meta-address. Every call draws a new ephemeral key, so two calls for the
// same recipient yield unlinkable addresses. The ephemeral private key is
// dropped before returning; only R = r*G survives, inside the details.
func GenerateStealthAddress(meta *MetaAddress, schemeID uint64) (*StealthAddressDetails, error) {
	if schemeID != SchemeSecp256k1 {
		return nil, fmt.Errorf("%w: scheme id %d", ErrUnsupportedScheme, schemeID)
	}
	if meta == nil || !onCurve(meta.SpendingPubKey) || !onCurve(meta.ViewingPubKey) {
		return nil, ErrInvalidMetaAddress
	}

	ephemeral, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}

	sh := hashSharedPoint(ephemeral.D, meta.ViewingPubKey)
	stealthPub, err := stealthPubKey(meta.SpendingPubKey, sh)
	if err != nil {
		return nil, err
	}

	return &StealthAddressDetails{
		StealthAddress:  crypto.PubkeyToAddress(*stealthPub),
		EphemeralPubKey: crypto.CompressPubkey(&ephemeral.PublicKey),
		ViewTag:         sh[0],
		SharedSecret:    sh[:],
	}, nil
}

// RecipientSharedSecret recomputes the hashed shared secret from the
// recipient's viewing private key and an announced ephemeral public key.
// Its first byte is the view tag; the whole digest keys memo decryption.
func RecipientSharedSecret(viewingKey *ecdsa.PrivateKey, ephemeralPubKey []byte) ([]byte, error) {
	ephemeral, err := crypto.DecompressPubkey(ephemeralPubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrMalformedAnnouncement, err)
	}
	sh := hashSharedPoint(viewingKey.D, ephemeral)
	return sh[:], nil
}

// hashSharedPoint computes SHA-256 over the compressed ECDH point
// scalar*point. Both sides arrive at the same bytes: the sender with
// (r, ViewingPub), the recipient with (viewingPriv, R).
func hashSharedPoint(scalar *big.Int, point *ecdsa.PublicKey) [32]byte {
	x, y := crypto.S256().ScalarMult(point.X, point.Y, scalar.Bytes())
	shared := ecdsa.PublicKey{Curve: crypto.S256(), X: x, Y: y}
	return sha256.Sum256(crypto.CompressPubkey(&shared))
}

// stealthPubKey computes SpendingPub + sh*G. A digest that reduces to zero
// mod N would make the stealth key equal the spending key; that case fails
// closed instead of producing a degenerate address.
func stealthPubKey(spendingPub *ecdsa.PublicKey, sh [32]byte) (*ecdsa.PublicKey, error) {
	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(sh[:])
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, fmt.Errorf("%w: shared secret reduced to zero", ErrRandomness)
	}

	sx, sy := crypto.S256().ScalarBaseMult(s.Bytes())
	px, py := crypto.S256().Add(spendingPub.X, spendingPub.Y, sx, sy)
	return &ecdsa.PublicKey{Curve: crypto.S256(), X: px, Y: py}, nil
}
