package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mintworks/ipasset-sdk-go/pkg/config"
	"github.com/mintworks/ipasset-sdk-go/pkg/model"
	"github.com/mintworks/ipasset-sdk-go/pkg/registrar"
	"github.com/mintworks/ipasset-sdk-go/pkg/storage"
)

// stubPinner pins in memory with deterministic identifiers; fail aborts every
// pin with the given error.
type stubPinner struct {
	pins int
	fail error
}

func (s *stubPinner) Pin(_ context.Context, record any) (*storage.PinnedContent, error) {
	if s.fail != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUpload, s.fail)
	}
	data, err := model.CanonicalJSON(record)
	if err != nil {
		return nil, err
	}
	s.pins++
	cid := fmt.Sprintf("QmStub%d", s.pins)
	return &storage.PinnedContent{
		Hash: storage.ComputeHash(data),
		CID:  cid,
		URI:  storage.IpfsPrefix + cid,
	}, nil
}

// stubBackend counts chain calls; everything succeeds instantly.
type stubBackend struct {
	calls int
}

func (s *stubBackend) tx() *types.Transaction {
	s.calls++
	return types.NewTx(&types.LegacyTx{Nonce: uint64(s.calls), Gas: 21000, GasPrice: big.NewInt(1), Value: big.NewInt(0)})
}

func (s *stubBackend) SignerAddress() common.Address {
	return common.HexToAddress("0x1111111111111111111111111111111111111111")
}

func (s *stubBackend) CreateCollection(_ context.Context, _ model.CollectionParams) (*types.Transaction, error) {
	return s.tx(), nil
}

func (s *stubBackend) MintToken(_ context.Context, _, _ common.Address, _ model.PinnedMetadata) (*types.Transaction, error) {
	return s.tx(), nil
}

func (s *stubBackend) RegisterIP(_ context.Context, _ common.Address, _ *big.Int, _ *model.RegistrationRequest) (*types.Transaction, error) {
	return s.tx(), nil
}

func (s *stubBackend) MintAndRegisterIP(_ context.Context, _ common.Address, _ *model.RegistrationRequest) (*types.Transaction, error) {
	return s.tx(), nil
}

func (s *stubBackend) WaitMined(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	s.calls++
	return &types.Receipt{TxHash: txHash, Status: types.ReceiptStatusSuccessful}, nil
}

func (s *stubBackend) CollectionFromReceipt(_ *types.Receipt) (common.Address, error) {
	return common.HexToAddress("0x2222222222222222222222222222222222222222"), nil
}

func (s *stubBackend) TokenFromReceipt(_ *types.Receipt, _ common.Address) (*big.Int, error) {
	return big.NewInt(7), nil
}

func (s *stubBackend) AssetFromReceipt(_ *types.Receipt) (common.Address, *big.Int, error) {
	return common.HexToAddress("0x3333333333333333333333333333333333333333"), big.NewInt(7), nil
}

func testCore(pinner storage.Pinner, chain registrar.ChainBackend) *Core {
	return &Core{
		Config: &config.Config{Timeouts: config.Timeouts{}.WithDefaults()},
		pinner: pinner,
		chain:  chain,
	}
}

func testParams(t *testing.T) RegisterParams {
	t.Helper()
	ip, err := model.NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}
	nft, err := model.NewNFTMetadata("Test NFT", "Test Description", "ipfs://QmImage")
	if err != nil {
		t.Fatalf("NewNFTMetadata returned error: %v", err)
	}
	return RegisterParams{
		IPMetadata:          ip,
		NFTMetadata:         nft,
		NewCollection:       &model.CollectionParams{Name: "Test Collection", Symbol: "TEST", IsPublicMinting: true},
		WaitForConfirmation: true,
	}
}

// TestRegisterIPAsset_EndToEnd runs the whole pipeline against stubs and
// checks the result carries a transaction hash and a registered asset id.
func TestRegisterIPAsset_EndToEnd(t *testing.T) {
	pinner := &stubPinner{}
	chain := &stubBackend{}
	core := testCore(pinner, chain)

	result, err := core.RegisterIPAsset(context.Background(), testParams(t))
	if err != nil {
		t.Fatalf("RegisterIPAsset returned error: %v", err)
	}

	if result.TxHash == (common.Hash{}) {
		t.Fatal("empty transaction hash")
	}
	if result.IPAssetID == (common.Address{}) {
		t.Fatal("empty asset id")
	}
	if pinner.pins != 2 {
		t.Fatalf("expected 2 pinned records, got %d", pinner.pins)
	}
}

// TestRegisterIPAsset_PinFailureStopsPipeline verifies strict sequencing: a
// pinning failure prevents any chain call from being issued.
func TestRegisterIPAsset_PinFailureStopsPipeline(t *testing.T) {
	chain := &stubBackend{}
	core := testCore(&stubPinner{fail: fmt.Errorf("connection reset")}, chain)

	_, err := core.RegisterIPAsset(context.Background(), testParams(t))
	if err == nil {
		t.Fatal("expected pin failure")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error is not a StepError: %v", err)
	}
	if stepErr.Step != "pin-ip-metadata" {
		t.Fatalf("unexpected failing step: %s", stepErr.Step)
	}
	if !errors.Is(err, storage.ErrUpload) {
		t.Fatalf("error does not wrap storage.ErrUpload: %v", err)
	}
	if chain.calls != 0 {
		t.Fatalf("chain was called %d times after pin failure", chain.calls)
	}
}

// TestRegisterIPAsset_MissingMetadata verifies that nil metadata records fail
// with a validation error before any pinning happens.
func TestRegisterIPAsset_MissingMetadata(t *testing.T) {
	pinner := &stubPinner{}
	core := testCore(pinner, &stubBackend{})

	params := testParams(t)
	params.IPMetadata = nil

	_, err := core.RegisterIPAsset(context.Background(), params)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("error does not wrap model.ErrValidation: %v", err)
	}
	if pinner.pins != 0 {
		t.Fatalf("pinner was called %d times", pinner.pins)
	}
}

// failingRegisterBackend fails the final registration call only.
type failingRegisterBackend struct {
	stubBackend
}

func (f *failingRegisterBackend) MintAndRegisterIP(_ context.Context, _ common.Address, _ *model.RegistrationRequest) (*types.Transaction, error) {
	return nil, fmt.Errorf("execution reverted")
}

// TestRegisterIPAsset_ReportsPinnedURIs verifies that a registration failure
// still reports the already-pinned metadata URIs for manual resumption.
func TestRegisterIPAsset_ReportsPinnedURIs(t *testing.T) {
	core := testCore(&stubPinner{}, &failingRegisterBackend{})

	_, err := core.RegisterIPAsset(context.Background(), testParams(t))
	if err == nil {
		t.Fatal("expected registration failure")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error is not a StepError: %v", err)
	}
	if stepErr.Step != "register" {
		t.Fatalf("unexpected failing step: %s", stepErr.Step)
	}
	if stepErr.IPMetadataURI == "" || stepErr.NFTMetadataURI == "" {
		t.Fatalf("pinned URIs not reported: %+v", stepErr)
	}
	if !errors.Is(err, registrar.ErrRegistration) {
		t.Fatalf("error does not wrap registrar.ErrRegistration: %v", err)
	}
}
