package stealth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// MetaAddressScheme is the literal scheme tag every meta-address starts with.
const MetaAddressScheme = "st"

const (
	compressedKeyLen = 33
	maxChainTagLen   = 8
)

var ErrMalformedMetaAddress = errors.New("malformed stealth meta-address")

// MetaAddress is the long-lived, publicly shareable half of a recipient's
// stealth identity: the spending and viewing public keys plus the chain the
// recipient expects payments on. It carries no private material.
type MetaAddress struct {
	ChainTag       string
	SpendingPubKey *ecdsa.PublicKey
	ViewingPubKey  *ecdsa.PublicKey
}

// NewMetaAddress builds a meta-address after validating both keys against
// the curve. The key order (spending, then viewing) is fixed by the string
// format and must never be swapped.
func NewMetaAddress(chainTag string, spendingPub, viewingPub *ecdsa.PublicKey) (*MetaAddress, error) {
	if !validChainTag(chainTag) {
		return nil, fmt.Errorf("%w: bad chain tag %q", ErrMalformedMetaAddress, chainTag)
	}
	if !onCurve(spendingPub) || !onCurve(viewingPub) {
		return nil, fmt.Errorf("%w: public key not on curve", ErrMalformedMetaAddress)
	}
	return &MetaAddress{
		ChainTag:       chainTag,
		SpendingPubKey: spendingPub,
		ViewingPubKey:  viewingPub,
	}, nil
}

// Encode renders the meta-address as
// st:<chainTag>:<hex(spendingPubCompressed)><hex(viewingPubCompressed)>.
func (m *MetaAddress) Encode() string {
	spend := hex.EncodeToString(crypto.CompressPubkey(m.SpendingPubKey))
	view := hex.EncodeToString(crypto.CompressPubkey(m.ViewingPubKey))
	return MetaAddressScheme + ":" + m.ChainTag + ":" + spend + view
}

// DecodeMetaAddress parses and validates a meta-address string. Each key
// half must decompress to a real curve point; hex that merely looks right
// is rejected.
func DecodeMetaAddress(s string) (*MetaAddress, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want 3 colon-separated parts, got %d", ErrMalformedMetaAddress, len(parts))
	}
	if parts[0] != MetaAddressScheme {
		return nil, fmt.Errorf("%w: unknown scheme tag %q", ErrMalformedMetaAddress, parts[0])
	}
	if !validChainTag(parts[1]) {
		return nil, fmt.Errorf("%w: bad chain tag %q", ErrMalformedMetaAddress, parts[1])
	}
	if len(parts[2]) != 2*compressedKeyLen*2 {
		return nil, fmt.Errorf("%w: key part has length %d, want %d",
			ErrMalformedMetaAddress, len(parts[2]), 2*compressedKeyLen*2)
	}

	raw, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetaAddress, err)
	}

	spendingPub, err := crypto.DecompressPubkey(raw[:compressedKeyLen])
	if err != nil {
		return nil, fmt.Errorf("%w: spending key: %v", ErrMalformedMetaAddress, err)
	}
	viewingPub, err := crypto.DecompressPubkey(raw[compressedKeyLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: viewing key: %v", ErrMalformedMetaAddress, err)
	}

	return &MetaAddress{
		ChainTag:       parts[1],
		SpendingPubKey: spendingPub,
		ViewingPubKey:  viewingPub,
	}, nil
}

// RandomMetaAddress builds a meta-address from two freshly drawn key
// pairs. Useful for decoys and tests; real recipients derive their keys
// from a wallet signature instead.
func RandomMetaAddress(chainTag string) (*MetaAddress, error) {
	spending, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}
	viewing, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}
	return NewMetaAddress(chainTag, &spending.PublicKey, &viewing.PublicKey)
}

func validChainTag(tag string) bool {
	if len(tag) == 0 || len(tag) > maxChainTagLen {
		return false
	}
	for _, c := range tag {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func onCurve(pub *ecdsa.PublicKey) bool {
	return pub != nil && pub.X != nil && pub.Y != nil &&
		crypto.S256().IsOnCurve(pub.X, pub.Y)
}
