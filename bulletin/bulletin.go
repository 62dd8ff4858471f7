// Package bulletin holds the external collaborators of the stealth
// payment core: the wallet signer, the on-chain meta-address registry and
// the announcement bulletin. The core only ever sees these interfaces;
// the Eth-backed implementations in this package are one possible wiring.
package bulletin

import (
	"github.com/ethereum/go-ethereum/common"

	"stealthpay/crypto/stealth"
)

// Signer produces wallet signatures over human-readable messages. Key
// derivation requires exactly one fixed message (keys.DerivationMessage)
// so the same wallet always reproduces the same stealth keys.
type Signer interface {
	Sign(message string) ([]byte, error)
	Address() common.Address
}

// Registry publishes and looks up stealth meta-address strings per
// account.
type Registry interface {
	StealthMetaAddressOf(account common.Address) (string, error)
	RegisterStealthMetaAddress(meta string) error
}

// Announcer posts payment announcements and reads back the published
// history for scanning.
type Announcer interface {
	Announce(schemeID uint64, stealthAddress common.Address, ephemeralPubKey, metadata []byte) error
	Announcements(fromBlock, toBlock uint64) ([]*stealth.Announcement, error)
}
