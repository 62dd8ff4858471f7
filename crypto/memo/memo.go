// Package memo encrypts an optional sender note under the stealth shared
// secret, so only the payment's true recipient can read it.
package memo

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

const memoKeyDomain = "stealthpay/memo/v1"

// memoKey stretches the hashed ECDH secret into a dedicated AES-256 key.
// The domain prefix keeps it disjoint from the scalar used for address
// derivation.
func memoKey(sharedSecret []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(memoKeyDomain))
	h.Write(sharedSecret)
	return h.Sum(nil)
}

// Seal encrypts plaintext under the shared secret and returns a base64
// string suitable for announcement metadata or off-chain storage.
func Seal(plaintext, sharedSecret []byte) (string, error) {
	block, err := aes.NewCipher(memoKey(sharedSecret))
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], plaintext)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a sealed memo with the shared secret recomputed from the
// announcement's ephemeral public key.
func Open(sealed string, sharedSecret []byte) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, fmt.Errorf("sealed memo too short")
	}

	block, err := aes.NewCipher(memoKey(sharedSecret))
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	plaintext := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(plaintext, ciphertext[aes.BlockSize:])

	return plaintext, nil
}
