package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

var ErrTxReverted = errors.New("transaction reverted")

// WaitSuccess 等待交易上链，回执状态失败时返回 ErrTxReverted
func WaitSuccess(ctx context.Context, b bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, b, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on wait tx %s", tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrTxReverted, "tx %s in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}
