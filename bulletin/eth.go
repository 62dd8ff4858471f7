package bulletin

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"stealthpay/crypto/stealth"
)

// Minimal ABI shapes: just enough to register a meta-address, post an
// announcement and read the Announcement event history back.
const (
	announcerABIJSON = `[
		{"type":"function","name":"announce","stateMutability":"nonpayable","inputs":[
			{"name":"schemeId","type":"uint256"},
			{"name":"stealthAddress","type":"address"},
			{"name":"ephemeralPubKey","type":"bytes"},
			{"name":"metadata","type":"bytes"}],"outputs":[]},
		{"type":"event","name":"Announcement","inputs":[
			{"name":"schemeId","type":"uint256","indexed":true},
			{"name":"stealthAddress","type":"address","indexed":true},
			{"name":"caller","type":"address","indexed":true},
			{"name":"ephemeralPubKey","type":"bytes","indexed":false},
			{"name":"metadata","type":"bytes","indexed":false}]}]`

	registryABIJSON = `[
		{"type":"function","name":"registerKeys","stateMutability":"nonpayable","inputs":[
			{"name":"stealthMetaAddress","type":"string"}],"outputs":[]},
		{"type":"function","name":"stealthMetaAddressOf","stateMutability":"view","inputs":[
			{"name":"registrant","type":"address"}],"outputs":[{"name":"","type":"string"}]}]`

	txGasLimit = uint64(200000)
)

var (
	announcerABI = mustParseABI(announcerABIJSON)
	registryABI  = mustParseABI(registryABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EthAnnouncer posts announcements to an ERC-5564 announcer contract and
// reads its event history.
type EthAnnouncer struct {
	client   *ethclient.Client
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
}

func NewEthAnnouncer(client *ethclient.Client, contract common.Address, key *ecdsa.PrivateKey) (*EthAnnouncer, error) {
	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return &EthAnnouncer{client: client, contract: contract, key: key, chainID: chainID}, nil
}

func (a *EthAnnouncer) Announce(schemeID uint64, stealthAddress common.Address, ephemeralPubKey, metadata []byte) error {
	input, err := announcerABI.Pack("announce",
		new(big.Int).SetUint64(schemeID), stealthAddress, ephemeralPubKey, metadata)
	if err != nil {
		return err
	}
	return sendTx(a.client, a.key, a.chainID, a.contract, input)
}

// Announcements pulls the Announcement logs in [fromBlock, toBlock] and
// converts them for scanning.
func (a *EthAnnouncer) Announcements(fromBlock, toBlock uint64) ([]*stealth.Announcement, error) {
	logs, err := a.client.FilterLogs(context.Background(), ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{a.contract},
		Topics:    [][]common.Hash{{announcerABI.Events["Announcement"].ID}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter announcements: %w", err)
	}

	anns := make([]*stealth.Announcement, 0, len(logs))
	for _, lg := range logs {
		ann, err := ParseAnnouncementLog(lg)
		if err != nil {
			// skip malformed third-party announcements, keep scanning
			continue
		}
		anns = append(anns, ann)
	}
	return anns, nil
}

// ParseAnnouncementLog decodes one Announcement event log. The view tag is
// the first metadata byte per the metadata layout in this package.
func ParseAnnouncementLog(lg types.Log) (*stealth.Announcement, error) {
	if len(lg.Topics) != 4 || lg.Topics[0] != announcerABI.Events["Announcement"].ID {
		return nil, fmt.Errorf("%w: not an Announcement log", stealth.ErrMalformedAnnouncement)
	}

	unpacked, err := announcerABI.Unpack("Announcement", lg.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stealth.ErrMalformedAnnouncement, err)
	}
	ephemeralPubKey, ok := unpacked[0].([]byte)
	if !ok || len(ephemeralPubKey) != 33 {
		return nil, fmt.Errorf("%w: ephemeral key length", stealth.ErrMalformedAnnouncement)
	}
	metadata, ok := unpacked[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: metadata", stealth.ErrMalformedAnnouncement)
	}
	viewTag, err := ViewTag(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: empty metadata", stealth.ErrMalformedAnnouncement)
	}

	return &stealth.Announcement{
		SchemeID:        new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(),
		StealthAddress:  common.BytesToAddress(lg.Topics[2].Bytes()),
		EphemeralPubKey: ephemeralPubKey,
		ViewTag:         viewTag,
		Metadata:        metadata,
	}, nil
}

// EthRegistry stores meta-address strings in an ERC-6538-style registry
// contract.
type EthRegistry struct {
	client   *ethclient.Client
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
}

func NewEthRegistry(client *ethclient.Client, contract common.Address, key *ecdsa.PrivateKey) (*EthRegistry, error) {
	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return &EthRegistry{client: client, contract: contract, key: key, chainID: chainID}, nil
}

func (r *EthRegistry) StealthMetaAddressOf(account common.Address) (string, error) {
	input, err := registryABI.Pack("stealthMetaAddressOf", account)
	if err != nil {
		return "", err
	}
	out, err := r.client.CallContract(context.Background(), ethereum.CallMsg{
		To:   &r.contract,
		Data: input,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("registry call: %w", err)
	}
	unpacked, err := registryABI.Unpack("stealthMetaAddressOf", out)
	if err != nil {
		return "", fmt.Errorf("registry call: %w", err)
	}
	meta, ok := unpacked[0].(string)
	if !ok {
		return "", fmt.Errorf("registry call: unexpected return type")
	}
	return meta, nil
}

func (r *EthRegistry) RegisterStealthMetaAddress(meta string) error {
	input, err := registryABI.Pack("registerKeys", meta)
	if err != nil {
		return err
	}
	return sendTx(r.client, r.key, r.chainID, r.contract, input)
}

func sendTx(client *ethclient.Client, key *ecdsa.PrivateKey, chainID *big.Int, to common.Address, input []byte) error {
	ctx := context.Background()
	from := crypto.PubkeyToAddress(key.PublicKey)
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, to, big.NewInt(0), txGasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	return client.SendTransaction(ctx, signed)
}
