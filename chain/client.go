// Package chain talks to the deployed SupplyChain contract over JSON-RPC.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrNoSigner       = errors.New("chain: no signing key configured")
	ErrReverted       = errors.New("chain: transaction reverted")
	ErrNotDeployed    = errors.New("chain: no contract code at address")
	ErrInvalidAddress = errors.New("chain: invalid address")
)

// Client is a SupplyChain contract binding. Without a key it can only read.
type Client struct {
	eth      *ethclient.Client
	address  common.Address
	contract *bind.BoundContract
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	from     common.Address
}

// Dial connects to rpcURL and binds the contract at contractAddress. privateKeyHex
// may be empty for a read-only client.
func Dial(ctx context.Context, rpcURL, contractAddress, privateKeyHex string) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("%w: contract %q", ErrInvalidAddress, contractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(supplyChainABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("read chain id: %w", err)
	}

	address := common.HexToAddress(contractAddress)
	c := &Client{
		eth:      eth,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
		chainID:  chainID,
	}
	if privateKeyHex != "" {
		key, err := ParsePrivateKey(privateKeyHex)
		if err != nil {
			eth.Close()
			return nil, err
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	return c, nil
}

// ParsePrivateKey accepts a hex key with or without the 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// AddressFromKey derives the checksummed account address of a hex private key.
func AddressFromKey(hexKey string) (string, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

func (c *Client) Close() { c.eth.Close() }

// SignerAddress is the account transactions are sent from, or "" for a read-only client.
func (c *Client) SignerAddress() string {
	if c.key == nil {
		return ""
	}
	return c.from.Hex()
}

// AssertDeployed fails with ErrNotDeployed when the configured address holds no code,
// which is what a wrong network or a stale CONTRACT_ADDRESS looks like.
func (c *Client) AssertDeployed(ctx context.Context) error {
	code, err := c.eth.CodeAt(ctx, c.address, nil)
	if err != nil {
		return fmt.Errorf("read code at %s: %w", c.address.Hex(), err)
	}
	if len(code) == 0 {
		return fmt.Errorf("%w %s", ErrNotDeployed, c.address.Hex())
	}
	return nil
}

// FileInsuranceClaimFor files a claim on behalf of farm and waits until it is mined.
func (c *Client) FileInsuranceClaimFor(ctx context.Context, farm, sensorType, sensorValue string) (string, error) {
	farmAddr, err := parseAddress(farm)
	if err != nil {
		return "", err
	}
	receipt, err := c.transact(ctx, "fileInsuranceClaimFor", farmAddr, sensorType, sensorValue)
	if err != nil {
		return "", err
	}
	return receipt.TxHash, nil
}

// SetSensorServiceAccount registers account as the service identity. Owner only.
func (c *Client) SetSensorServiceAccount(ctx context.Context, account string) (*models.TxReceipt, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return nil, err
	}
	return c.transact(ctx, "setSensorServiceAccount", addr)
}

// Role returns the Roles.Role value registered for account.
func (c *Client) Role(ctx context.Context, account string) (uint8, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return 0, err
	}
	out, err := c.call(ctx, "roles", addr)
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

func (c *Client) Owner(ctx context.Context) (string, error) {
	return c.readAddress(ctx, "owner")
}

func (c *Client) SensorServiceAccount(ctx context.Context) (string, error) {
	return c.readAddress(ctx, "sensorServiceAccount")
}

// onchainClaim matches the decoded InsuranceClaim tuple field by field.
type onchainClaim struct {
	ClaimId     *big.Int
	Claimant    common.Address
	SensorType  string
	SensorValue string
	Timestamp   *big.Int
	Status      string
}

// ClaimsByFarmer lists every claim the contract holds for farmer.
func (c *Client) ClaimsByFarmer(ctx context.Context, farmer string) ([]models.InsuranceClaim, error) {
	addr, err := parseAddress(farmer)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, "getClaimsByFarmer", addr)
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]onchainClaim)).(*[]onchainClaim)
	claims := make([]models.InsuranceClaim, 0, len(raw))
	for _, rc := range raw {
		claims = append(claims, models.InsuranceClaim{
			ClaimID:     rc.ClaimId.String(),
			Claimant:    rc.Claimant.Hex(),
			SensorType:  rc.SensorType,
			SensorValue: rc.SensorValue,
			Timestamp:   time.Unix(rc.Timestamp.Int64(), 0).UTC(),
			Status:      rc.Status,
		})
	}
	return claims, nil
}

func (c *Client) readAddress(ctx context.Context, method string) (string, error) {
	out, err := c.call(ctx, method)
	if err != nil {
		return "", err
	}
	return abi.ConvertType(out[0], new(common.Address)).(*common.Address).Hex(), nil
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s: empty result", method)
	}
	return out, nil
}

func (c *Client) transact(ctx context.Context, method string, args ...interface{}) (*models.TxReceipt, error) {
	if c.key == nil {
		return nil, ErrNoSigner
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s %s", ErrReverted, method, tx.Hash().Hex())
	}
	return &models.TxReceipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
