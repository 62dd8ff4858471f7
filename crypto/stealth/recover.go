package stealth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverStealthKey re-derives the stealth address from a matched
// announcement and, when it agrees with the announced one, returns the
// private key controlling it: spendingPriv + sh (mod N). A view-tag false
// positive surfaces here as ErrNoMatch.
//
// This is the only operation that computes spend authority. The returned
// key must be handled like any other private key — never logged, zeroed
// when done.
func RecoverStealthKey(spendingKey, viewingKey *ecdsa.PrivateKey, ann *Announcement) (*ecdsa.PrivateKey, error) {
	if ann == nil {
		return nil, ErrMalformedAnnouncement
	}
	if ann.SchemeID != SchemeSecp256k1 {
		return nil, fmt.Errorf("%w: scheme id %d", ErrUnsupportedScheme, ann.SchemeID)
	}
	ephemeral, err := crypto.DecompressPubkey(ann.EphemeralPubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrMalformedAnnouncement, err)
	}

	sh := hashSharedPoint(viewingKey.D, ephemeral)
	stealthPub, err := stealthPubKey(&spendingKey.PublicKey, sh)
	if err != nil {
		return nil, err
	}
	if crypto.PubkeyToAddress(*stealthPub) != ann.StealthAddress {
		return nil, ErrNoMatch
	}

	n := crypto.S256().Params().N
	d := new(big.Int).SetBytes(sh[:])
	d.Mod(d, n)
	d.Add(d, spendingKey.D)
	d.Mod(d, n)

	buf := make([]byte, 32)
	d.FillBytes(buf)
	stealthKey, err := crypto.ToECDSA(buf)
	for i := range buf {
		buf[i] = 0
	}
	d.SetInt64(0)
	if err != nil {
		return nil, err
	}
	return stealthKey, nil
}
