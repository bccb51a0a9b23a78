// Package sdk exposes the high-level IP asset SDK entry points. It wires
// together chain access (registration workflows contract), the content pinner
// (IPFS/Pinata), and the registration strategies, and runs the end-to-end
// pipeline: build metadata, pin it, mint, register.
package sdk

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/mintworks/ipasset-sdk-go/pkg/blockchain"
	"github.com/mintworks/ipasset-sdk-go/pkg/config"
	"github.com/mintworks/ipasset-sdk-go/pkg/model"
	"github.com/mintworks/ipasset-sdk-go/pkg/registrar"
	"github.com/mintworks/ipasset-sdk-go/pkg/storage"
)

// IPAssetSDK is the public interface for running the registration pipeline
// and releasing resources.
type IPAssetSDK interface {
	// RegisterIPAsset pins the two metadata records and registers the asset
	// using the path implied by the params (existing collection vs. new
	// collection). It is strictly sequential; the first failure aborts the
	// rest of the pipeline and is reported as a *StepError.
	RegisterIPAsset(ctx context.Context, params RegisterParams) (*model.RegistrationResult, error)

	// Pinner exposes the configured content pinner for callers that want to
	// pin additional records.
	Pinner() storage.Pinner

	// Close releases resources associated with the SDK instance.
	Close()
}

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// RegisterParams is the input of the end-to-end pipeline. Exactly one of
// Collection (mint-then-register on a deployed collection) or NewCollection
// (create a fresh collection, then mint-and-register) selects the path.
type RegisterParams struct {
	IPMetadata  *model.IPMetadata
	NFTMetadata *model.NFTMetadata

	Collection    common.Address
	NewCollection *model.CollectionParams
	// Recipient receives the minted token; defaults to the signer address.
	Recipient common.Address
	Terms     model.LicenseTerms

	// WaitForConfirmation blocks until the ledger confirms the registration
	// transaction; otherwise the call returns a pending transaction hash.
	WaitForConfirmation bool
}

// StepError reports which pipeline step failed, together with the outputs of
// the steps that already completed, so a caller can resume manually (pinned
// content stays pinned; a minted token stays minted).
type StepError struct {
	// Step is the pipeline step that failed: "pin-ip-metadata",
	// "pin-nft-metadata" or "register".
	Step string
	// IPMetadataURI and NFTMetadataURI are set when the corresponding record
	// was already pinned before the failure.
	IPMetadataURI  string
	NFTMetadataURI string

	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Core is the concrete SDK implementation.
type Core struct {
	evm *blockchain.EVMClient
	*config.Config
	prvKey *ecdsa.PrivateKey
	pinner storage.Pinner
	chain  registrar.ChainBackend
}

// NewSDK initializes the SDK Core with validated configuration, a connected
// EVM client and a content pinner. Configuration failures (including a
// malformed private key) wrap config.ErrInvalid and are returned before any
// network call is made.
func NewSDK(cfg *config.Config) (IPAssetSDK, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, err
	}

	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	address, prvKey, err := blockchain.ParsePrivateKeyECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad private key: %v", config.ErrInvalid, err)
	}

	evmClient, err := blockchain.InitEvm(cfg.Network.ChainID, cfg.RPCAddr, "")
	if err != nil {
		zap.L().Error("Init ethereum client failed", zap.Error(err))
		return nil, err
	}

	backend, err := blockchain.NewBackend(evmClient, prvKey, cfg.Timeouts.ReceiptWait)
	if err != nil {
		evmClient.Close()
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	pinner, err := newPinner(cfg)
	if err != nil {
		evmClient.Close()
		return nil, err
	}

	if cfg.Debug {
		zap.L().Debug("signer address", zap.String("addr", address.Hex()))
	}

	return &Core{
		evm:    evmClient,
		Config: cfg,
		prvKey: prvKey,
		pinner: pinner,
		chain:  backend,
	}, nil
}

// newPinner selects the pinning backend: Pinata when a JWT is configured,
// otherwise the Kubo node at IpfsURL.
func newPinner(cfg *config.Config) (storage.Pinner, error) {
	var uploader storage.Uploader
	if cfg.PinataJWT != "" {
		p, err := storage.NewPinataUploader(cfg.PinataURL, cfg.PinataJWT)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		uploader = p
	} else {
		k, err := storage.NewKuboUploader(cfg.IpfsURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		uploader = k
	}
	return storage.NewClient(uploader, cfg.GatewayURL), nil
}

// Pinner returns the configured content pinner.
func (c *Core) Pinner() storage.Pinner {
	return c.pinner
}

// RegisterIPAsset runs the pipeline: pin IP metadata, pin NFT metadata, then
// run the registration strategy implied by params. Metadata records must have
// been built with their constructors (nil records fail before any pinning).
func (c *Core) RegisterIPAsset(ctx context.Context, params RegisterParams) (*model.RegistrationResult, error) {
	if params.IPMetadata == nil {
		return nil, &StepError{Step: "pin-ip-metadata", Err: fmt.Errorf("%w: ip metadata is required", model.ErrValidation)}
	}
	if params.NFTMetadata == nil {
		return nil, &StepError{Step: "pin-nft-metadata", Err: fmt.Errorf("%w: nft metadata is required", model.ErrValidation)}
	}

	pinCtx, cancel := context.WithTimeout(ctx, c.Timeouts.PinUpload)
	ipPinned, err := c.pinner.Pin(pinCtx, params.IPMetadata)
	cancel()
	if err != nil {
		return nil, &StepError{Step: "pin-ip-metadata", Err: err}
	}

	pinCtx, cancel = context.WithTimeout(ctx, c.Timeouts.PinUpload)
	nftPinned, err := c.pinner.Pin(pinCtx, params.NFTMetadata)
	cancel()
	if err != nil {
		return nil, &StepError{Step: "pin-nft-metadata", IPMetadataURI: ipPinned.URI, Err: err}
	}

	req := &model.RegistrationRequest{
		Collection:          params.Collection,
		NewCollection:       params.NewCollection,
		Recipient:           params.Recipient,
		IPMetadata:          model.PinnedMetadata{URI: ipPinned.URI, Hash: ipPinned.Hash},
		NFTMetadata:         model.PinnedMetadata{URI: nftPinned.URI, Hash: nftPinned.Hash},
		Terms:               params.Terms,
		WaitForConfirmation: params.WaitForConfirmation,
	}

	strategy := registrar.ForRequest(c.chain, req)
	result, err := strategy.Register(ctx, req)
	if err != nil {
		return nil, &StepError{
			Step:           "register",
			IPMetadataURI:  ipPinned.URI,
			NFTMetadataURI: nftPinned.URI,
			Err:            err,
		}
	}

	zap.L().Info("registered IP asset",
		zap.String("txHash", result.TxHash.Hex()),
		zap.String("ipAssetId", result.IPAssetID.Hex()),
		zap.Bool("confirmed", result.Confirmed))

	return result, nil
}

// Close shuts down underlying network clients (e.g., Ethereum RPC).
func (c *Core) Close() {
	c.evm.Close()
}
