package bulletin

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"stealthpay/crypto/keys"
	"stealthpay/crypto/stealth"
)

func announcementLog(t *testing.T, schemeID uint64, stealthAddr common.Address, eph, metadata []byte) types.Log {
	t.Helper()
	event := announcerABI.Events["Announcement"]
	data, err := event.Inputs.NonIndexed().Pack(eph, metadata)
	if err != nil {
		t.Fatal(err)
	}
	return types.Log{
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(new(big.Int).SetUint64(schemeID)),
			common.BytesToHash(common.LeftPadBytes(stealthAddr.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(common.HexToAddress("0x01").Bytes(), 32)),
		},
		Data: data,
	}
}

func TestParseAnnouncementLog(t *testing.T) {
	meta, err := stealth.RandomMetaAddress("eth")
	if err != nil {
		t.Fatal(err)
	}
	details, err := stealth.GenerateStealthAddress(meta, stealth.SchemeSecp256k1)
	if err != nil {
		t.Fatal(err)
	}
	metadata := EtherMetadata(details.ViewTag, big.NewInt(1e18))

	lg := announcementLog(t, stealth.SchemeSecp256k1, details.StealthAddress, details.EphemeralPubKey, metadata)
	ann, err := ParseAnnouncementLog(lg)
	if err != nil {
		t.Fatal(err)
	}

	if ann.SchemeID != stealth.SchemeSecp256k1 {
		t.Fatalf("scheme id %d, want %d", ann.SchemeID, stealth.SchemeSecp256k1)
	}
	if ann.StealthAddress != details.StealthAddress {
		t.Fatalf("stealth address %s, want %s", ann.StealthAddress, details.StealthAddress)
	}
	if !bytes.Equal(ann.EphemeralPubKey, details.EphemeralPubKey) {
		t.Fatal("ephemeral key mangled")
	}
	if ann.ViewTag != details.ViewTag {
		t.Fatalf("view tag 0x%02x, want 0x%02x", ann.ViewTag, details.ViewTag)
	}
}

func TestParseAnnouncementLogRejectsBadLogs(t *testing.T) {
	meta, err := stealth.RandomMetaAddress("eth")
	if err != nil {
		t.Fatal(err)
	}
	details, err := stealth.GenerateStealthAddress(meta, stealth.SchemeSecp256k1)
	if err != nil {
		t.Fatal(err)
	}

	// wrong topic count
	lg := announcementLog(t, 1, details.StealthAddress, details.EphemeralPubKey, EtherMetadata(details.ViewTag, big.NewInt(1)))
	lg.Topics = lg.Topics[:2]
	if _, err := ParseAnnouncementLog(lg); err == nil {
		t.Fatal("accepted a log with missing topics")
	}

	// ephemeral key of the wrong length
	lg = announcementLog(t, 1, details.StealthAddress, details.EphemeralPubKey[:20], EtherMetadata(details.ViewTag, big.NewInt(1)))
	if _, err := ParseAnnouncementLog(lg); err == nil {
		t.Fatal("accepted a truncated ephemeral key")
	}

	// empty metadata leaves no view tag
	lg = announcementLog(t, 1, details.StealthAddress, details.EphemeralPubKey, []byte{})
	if _, err := ParseAnnouncementLog(lg); err == nil {
		t.Fatal("accepted empty metadata")
	}
}

// Announcements parsed from logs must scan and recover like locally built
// ones.
func TestParsedAnnouncementRecovers(t *testing.T) {
	signer := NewLocalSigner(testKey(t))
	signature, err := signer.Sign(keys.DerivationMessage)
	if err != nil {
		t.Fatal(err)
	}
	material, err := keys.Derive(signature)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := stealth.NewMetaAddress("eth",
		&material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	details, err := stealth.GenerateStealthAddress(meta, stealth.SchemeSecp256k1)
	if err != nil {
		t.Fatal(err)
	}
	lg := announcementLog(t, stealth.SchemeSecp256k1, details.StealthAddress, details.EphemeralPubKey,
		MemoMetadata(details.ViewTag, "QmCID"))
	ann, err := ParseAnnouncementLog(lg)
	if err != nil {
		t.Fatal(err)
	}

	if !stealth.CheckAnnouncement(material.ViewingKey, ann) {
		t.Fatal("view-tag check failed on a parsed announcement")
	}
	stealthKey, err := stealth.RecoverStealthKey(material.SpendingKey, material.ViewingKey, ann)
	if err != nil {
		t.Fatal(err)
	}
	if crypto.PubkeyToAddress(stealthKey.PublicKey) != ann.StealthAddress {
		t.Fatal("recovered key does not control the announced address")
	}
}
