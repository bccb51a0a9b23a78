// Package config defines the runtime configuration for the SDK, including
// the target network, RPC endpoint, wallet private key, pinning-service
// credentials and operation timeouts. It also provides validation and
// defaulting helpers plus fail-fast loading from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalid is wrapped by every configuration failure (missing or malformed
// credentials, endpoints or environment values). Match with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all SDK settings required to initialize the chain client and
// the content pinner. Use Validate to fill implicit defaults and to check for
// required fields.
type Config struct {
	// Network selects the target chain (chain ID and human-readable name).
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the EVM RPC endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA private key used to sign mint and
	// registration transactions (required).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// PinataJWT authorizes uploads to the Pinata pinning API. Required only
	// when the Pinata backend is used; the Kubo backend ignores it.
	PinataJWT string `json:"pinata_jwt" yaml:"pinata_jwt"`
	// PinataURL is the base URL of the Pinata pinning API.
	// Default: https://api.pinata.cloud
	PinataURL string `json:"pinata_url" yaml:"pinata_url"`
	// IpfsURL is the HTTP API endpoint of the IPFS (Kubo) node used to add
	// and pin files. Default: http://localhost:5001
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// GatewayURL is the public HTTP gateway used to read pinned content back.
	// Default: https://ipfs.io/ipfs/
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a registration network (chain ID and name). ChainID is
// used for EIP-155 signing; Name is informational.
type Network struct {
	ChainID string `json:"chain_id"`
	Name    string `json:"network_name"`
}

// Aeneid is a predefined Network for the Aeneid testnet.
var Aeneid = Network{
	ChainID: "1315",
	Name:    "aeneid",
}

// Main is a predefined Network for the platform mainnet.
var Main = Network{
	ChainID: "1514",
	Name:    "main",
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // RPC dial/connect
	ChainRead   time.Duration // eth_call, chain ID, receipts
	ChainSubmit time.Duration // send tx
	ReceiptWait time.Duration // wait for tx confirmation
	PinUpload   time.Duration // pinning-service upload
}

// Validate normalizes the configuration by applying implicit defaults for
// PinataURL, IpfsURL, GatewayURL and Network (defaults to Aeneid) and verifies
// that RPCAddr and PrivateKey are provided. Returned errors wrap ErrInvalid.
func (c *Config) Validate() error {

	if c.PinataURL == "" {
		c.PinataURL = "https://api.pinata.cloud"
	}

	if c.IpfsURL == "" {
		c.IpfsURL = "http://localhost:5001"
	}

	if c.GatewayURL == "" {
		c.GatewayURL = "https://ipfs.io/ipfs/"
	}

	if c.Network.ChainID == "" {
		c.Network = Aeneid
	}

	if c.RPCAddr == "" {
		return fmt.Errorf("%w: RPC address is required", ErrInvalid)
	}

	if c.PrivateKey == "" {
		return fmt.Errorf("%w: wallet private key is required", ErrInvalid)
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	PinUpload:   60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.PinUpload == 0 {
		tt.PinUpload = 60 * time.Second
	}
	return tt
}

// FromEnv assembles a Config from the environment:
//
//	RPC_PROVIDER_URL   – EVM RPC endpoint (required)
//	WALLET_PRIVATE_KEY – hex-encoded signing key (required)
//	PINATA_JWT         – Pinata API token (required)
//
// Any missing value fails immediately, before a network call is attempted.
func FromEnv() (*Config, error) {
	cfg := &Config{
		RPCAddr:    os.Getenv("RPC_PROVIDER_URL"),
		PrivateKey: os.Getenv("WALLET_PRIVATE_KEY"),
		PinataJWT:  os.Getenv("PINATA_JWT"),
	}
	if cfg.PinataJWT == "" {
		return nil, fmt.Errorf("%w: PINATA_JWT is not set", ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
