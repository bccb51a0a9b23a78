// Package blockchain provides Go bindings and helpers to interact with the IP
// asset registration contracts on EVM chains. It initializes an Ethereum
// client, wires hand-written bindings for the RegistrationWorkflows contract
// and SPG NFT collections, decodes registration events from receipts, and
// includes utilities for key parsing, transactor construction and token-amount
// conversions.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// workflowsAddresses maps chain IDs to the deployed RegistrationWorkflows
// contract address on that network.
var workflowsAddresses = map[string]string{
	"1315": "0xbe39E1C756e921BD25DF86e7AAa31106d1eb0424",
	"1514": "0xbe39E1C756e921BD25DF86e7AAa31106d1eb0424",
}

// EVMClient holds a connected ethclient.Client and the binding for the
// RegistrationWorkflows contract, the single entry point for collection
// creation and IP registration on the target network.
type EVMClient struct {
	Client    *ethclient.Client
	Workflows *RegistrationWorkflows

	workflowsAddr common.Address
}

// InitEvm dials an EVM endpoint and binds the RegistrationWorkflows contract.
// If workflowsAddr is empty, the address is resolved from the built-in
// per-network table for the given chain ID.
//
// Construction does not probe the endpoint; an unreachable endpoint surfaces
// on the first remote call.
func InitEvm(network, endpoint, workflowsAddr string) (*EVMClient, error) {
	if workflowsAddr == "" {
		workflowsAddr = workflowsAddresses[network]
	}
	if workflowsAddr == "" {
		return nil, fmt.Errorf("no registration workflows address known for network %q", network)
	}

	var eth = new(EVMClient)

	var err error
	eth.Client, err = ethclient.Dial(endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.Error(err))
		return nil, err
	}

	eth.workflowsAddr = common.HexToAddress(workflowsAddr)
	eth.Workflows = NewRegistrationWorkflows(eth.workflowsAddr, eth.Client)

	return eth, nil
}

// WorkflowsAddress returns the bound RegistrationWorkflows contract address.
func (evm *EVMClient) WorkflowsAddress() common.Address {
	return evm.workflowsAddr
}

// GetCurrentBlockNumberCtx returns the latest block number using the provided context.
func (evm *EVMClient) GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error) {
	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. It returns an error if the tx is reverted.
func (evm *EVMClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := time.Second
	for {
		receipt, err := evm.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, fmt.Errorf("tx reverted: %s", txHash)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if maxBackoff == 0 || backoff < maxBackoff {
				backoff *= 2
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}

// Close shuts down the underlying RPC client.
func (evm *EVMClient) Close() {
	if evm.Client != nil {
		evm.Client.Close()
	}
}
