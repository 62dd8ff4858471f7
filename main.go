package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"

	"stealthpay/bulletin"
	"stealthpay/crypto/keys"
	"stealthpay/crypto/memo"
	"stealthpay/crypto/stealth"
	"stealthpay/utils"
)

func main() {

	fmt.Println("=============================receiver: derive stealth keys=====================")
	// Alice's wallet signs the fixed derivation message once; the same
	// signature always reproduces the same stealth keys.
	signer, err := recipientSigner()
	if err != nil {
		log.Fatalf("signer setup: %v", err)
	}
	signature, err := signer.Sign(keys.DerivationMessage)
	if err != nil {
		log.Fatalf("sign derivation message: %v", err)
	}
	material, err := keys.Derive(signature)
	if err != nil {
		log.Fatalf("derive keys: %v", err)
	}

	meta, err := stealth.NewMetaAddress("eth",
		&material.SpendingKey.PublicKey, &material.ViewingKey.PublicKey)
	if err != nil {
		log.Fatalf("meta-address: %v", err)
	}
	encoded := meta.Encode()
	fmt.Println("stealth meta-address:", encoded)
	// this string is what Alice would publish via the registry contract

	fmt.Println("=============================sender: generate one-time address=====================")
	// Bob only sees the published string and decodes it himself.
	decoded, err := stealth.DecodeMetaAddress(encoded)
	if err != nil {
		log.Fatalf("decode meta-address: %v", err)
	}
	details, err := stealth.GenerateStealthAddress(decoded, stealth.SchemeSecp256k1)
	if err != nil {
		log.Fatalf("generate stealth address: %v", err)
	}
	fmt.Println("stealth address:", details.StealthAddress)
	fmt.Println("ephemeral pubkey:", hexutil.Encode(details.EphemeralPubKey))
	fmt.Printf("view tag: 0x%02x\n", details.ViewTag)

	sealed, err := memo.Seal([]byte("lunch repayment, thanks again!"), details.SharedSecret)
	if err != nil {
		log.Fatalf("seal memo: %v", err)
	}

	announcement := &stealth.Announcement{
		SchemeID:        stealth.SchemeSecp256k1,
		StealthAddress:  details.StealthAddress,
		EphemeralPubKey: details.EphemeralPubKey,
		ViewTag:         details.ViewTag,
		Metadata:        bulletin.MemoMetadata(details.ViewTag, sealed),
	}
	fmt.Println("=============================recipient: scan announcements=====================")
	// Bury the real announcement among decoys addressed to other people.
	announcements := decoyAnnouncements(512)
	announcements = append(announcements, announcement)

	matched := 0
	for ann := range stealth.ScanAnnouncements(material.ViewingKey, announcements) {
		stealthKey, err := stealth.RecoverStealthKey(material.SpendingKey, material.ViewingKey, ann)
		if err == stealth.ErrNoMatch {
			// a 1-byte tag lets ~1/256 foreign announcements through
			continue
		}
		if err != nil {
			log.Fatalf("recover stealth key: %v", err)
		}
		matched++

		fmt.Println("payment found at:", ann.StealthAddress)
		fmt.Println("recovered key controls:", crypto.PubkeyToAddress(stealthKey.PublicKey))

		secret, err := stealth.RecipientSharedSecret(material.ViewingKey, ann.EphemeralPubKey)
		if err != nil {
			log.Fatalf("shared secret: %v", err)
		}
		if sealedMemo, err := bulletin.Memo(ann.Metadata); err == nil {
			if note, err := memo.Open(sealedMemo, secret); err == nil {
				fmt.Println("memo:", string(note))
			}
		}
	}
	fmt.Printf("scanned %d announcements, %d payment(s) recovered\n", len(announcements), matched)
}

// recipientSigner builds the local signer from the BIP32 seed in .env,
// creating and persisting a fresh seed on first run.
func recipientSigner() (*bulletin.LocalSigner, error) {
	seedHex := utils.GetENV("MASTER_SEED")
	if seedHex == "" {
		seed, err := bip32.NewSeed()
		if err != nil {
			return nil, err
		}
		envMap := utils.GetAllEnv()
		envMap["MASTER_SEED"] = hex.EncodeToString(seed)
		utils.WriteAllEnv(envMap)
		return bulletin.SignerFromSeed(seed, 1)
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	return bulletin.SignerFromSeed(seed, 1)
}

// decoyAnnouncements fabricates announcements for random other
// recipients, so the scan has something to reject.
func decoyAnnouncements(n int) []*stealth.Announcement {
	anns := make([]*stealth.Announcement, 0, n)
	for i := 0; i < n; i++ {
		other, err := stealth.RandomMetaAddress("eth")
		if err != nil {
			log.Fatalf("decoy meta-address: %v", err)
		}
		details, err := stealth.GenerateStealthAddress(other, stealth.SchemeSecp256k1)
		if err != nil {
			log.Fatalf("decoy announcement: %v", err)
		}
		anns = append(anns, &stealth.Announcement{
			SchemeID:        stealth.SchemeSecp256k1,
			StealthAddress:  details.StealthAddress,
			EphemeralPubKey: details.EphemeralPubKey,
			ViewTag:         details.ViewTag,
			Metadata:        bulletin.EtherMetadata(details.ViewTag, big.NewInt(1e15)),
		})
	}
	return anns
}
