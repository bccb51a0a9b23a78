package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetAddressFromPrivateKeyECDSA derives the Ethereum address from the given
// ECDSA private key. It returns nil if the key is nil or its public part cannot
// be asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key and returns the
// corresponding Ethereum address together with the private key object.
// It returns an error if the hex string is invalid or the public key cannot be
// derived from the private key.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	privateKeyECDSA, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return common.Address{}, nil, err
	}

	publicKey := privateKeyECDSA.Public()

	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, nil, errors.New("failed to get public key")
	}

	address := crypto.PubkeyToAddress(*publicKeyECDSA)
	return address, privateKeyECDSA, nil
}

// TokensToWei converts a human-unit token amount to its smallest unit
// (18 decimals), e.g. for license minting fees.
//
// Supported input types for iamount: string, float64, int64, decimal.Decimal,
// *decimal.Decimal. Any other type results in an error.
//
// The returned value is a *big.Int representing amount * 10^18.
func TokensToWei(iamount any) (wei *big.Int, err error) {
	base := 10
	amount := decimal.NewFromFloat(0)
	switch v := iamount.(type) {
	case string:
		amount, err = decimal.NewFromString(v)
		if err != nil {
			zap.L().Error("Failed to convert string to decimal", zap.Error(err))
			return nil, err
		}
	case float64:
		amount = decimal.NewFromFloat(v)
	case int64:
		amount = decimal.NewFromFloat(float64(v))
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		amount = *v
	default:
		return nil, errors.New("unsupported amount type")
	}
	dec, pow := float64(10), float64(18)
	mul := decimal.NewFromFloat(dec).Pow(decimal.NewFromFloat(pow))
	result := amount.Mul(mul)

	wei = new(big.Int)
	wei.SetString(result.String(), base)

	return
}

// WeiToTokens converts a smallest-unit amount (18 decimals) into a
// decimal.Decimal with 18 digits of precision.
//
// Supported input types for ivalue: string, *big.Int, int.
// Any other type results in decimal.Zero and logs an error.
func WeiToTokens(ivalue any) decimal.Decimal {
	value := new(big.Int)
	base := 10
	switch v := ivalue.(type) {
	case string:
		value.SetString(v, base)
	case *big.Int:
		value = v
	case int:
		value.SetInt64(int64(v))
	default:
		zap.L().Error("Unsupported type")
		return decimal.Zero
	}
	dec, pow := float64(10), float64(18)
	mul := decimal.NewFromFloat(dec).Pow(decimal.NewFromFloat(pow))
	num, err := decimal.NewFromString(value.String())
	if err != nil {
		zap.L().Error("Failed to convert string to decimal", zap.Error(err))
	}
	precision := int32(18)
	result := num.DivRound(mul, precision)

	return result
}
