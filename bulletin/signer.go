package bulletin

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
)

// LocalSigner signs with an in-process secp256k1 key, the same way a
// wallet would sign a personal message. Signatures are deterministic, so
// key derivation from them is reproducible across sessions.
type LocalSigner struct {
	key *ecdsa.PrivateKey
}

func NewLocalSigner(key *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

// SignerFromSeed derives the signing key from a BIP32 master seed, so one
// stored seed can back any number of signer identities via the child
// index.
func SignerFromSeed(seed []byte, child uint32) (*LocalSigner, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("bip32 master key: %w", err)
	}
	childKey, err := master.NewChildKey(child)
	if err != nil {
		return nil, fmt.Errorf("bip32 child key %d: %w", child, err)
	}
	key, err := crypto.ToECDSA(childKey.Key)
	if err != nil {
		return nil, fmt.Errorf("bip32 child key %d: %w", child, err)
	}
	return &LocalSigner{key: key}, nil
}

// Sign signs the EIP-191 personal-message hash of message and returns the
// 65-byte [R || S || V] signature.
func (s *LocalSigner) Sign(message string) ([]byte, error) {
	return crypto.Sign(accounts.TextHash([]byte(message)), s.key)
}

func (s *LocalSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}
