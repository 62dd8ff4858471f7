package bulletin

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Announcement metadata always starts with the one-byte view tag; what
// follows depends on the payment kind. The ether and token layouts mirror
// the ERC-5564 convention: a 4-byte function identifier, a 20-byte token
// address (0xee..e for native ether) and a 32-byte amount.

var ErrBadMetadata = errors.New("bad announcement metadata")

var (
	etherIdentifier = [4]byte{0xee, 0xee, 0xee, 0xee}
	etherToken      = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
)

// EtherMetadata encodes a native-currency payment: view tag, ether
// marker, amount in wei.
func EtherMetadata(viewTag byte, amount *big.Int) []byte {
	return TokenMetadata(viewTag, etherIdentifier, etherToken, amount)
}

// TokenMetadata encodes a token payment: view tag, transfer function
// identifier, token contract address, amount. Always 57 bytes.
func TokenMetadata(viewTag byte, identifier [4]byte, token common.Address, amount *big.Int) []byte {
	out := make([]byte, 0, 57)
	out = append(out, viewTag)
	out = append(out, identifier[:]...)
	out = append(out, token.Bytes()...)
	amountBytes := make([]byte, 32)
	amount.FillBytes(amountBytes)
	return append(out, amountBytes...)
}

// MemoMetadata encodes a payment carrying a sealed memo (or an IPFS CID
// pointing at one) after the view tag.
func MemoMetadata(viewTag byte, sealed string) []byte {
	out := make([]byte, 0, 1+len(sealed))
	out = append(out, viewTag)
	return append(out, sealed...)
}

// ViewTag extracts the view tag from a metadata payload.
func ViewTag(metadata []byte) (byte, error) {
	if len(metadata) == 0 {
		return 0, ErrBadMetadata
	}
	return metadata[0], nil
}

// Memo returns the payload after the view tag, which for memo-carrying
// announcements is the sealed memo or its CID.
func Memo(metadata []byte) (string, error) {
	if len(metadata) < 2 {
		return "", ErrBadMetadata
	}
	return string(metadata[1:]), nil
}
