package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

const (
	SimulatedGasLimit = 30_000_000
	// 每个模拟账户的初始余额: 10000 ether
	simulatedFunds = "10000000000000000000000"
)

// simulatedBackend 进程内链，每笔交易发送后立即出块
type simulatedBackend struct {
	*backends.SimulatedBackend
}

func (b *simulatedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}
	b.Commit()
	return nil
}

func (b *simulatedBackend) ChainID(context.Context) (*big.Int, error) {
	return b.Blockchain().Config().ChainID, nil
}

// NewSimulated 创建带有 accounts 个已充值账户的进程内链 (对应 Hardhat 本地网络)
func NewSimulated(accounts int) (*Client, error) {
	if accounts <= 0 {
		return nil, errors.New("simulated chain needs at least one account")
	}
	funds, _ := new(big.Int).SetString(simulatedFunds, 10)

	alloc := make(core.GenesisAlloc, accounts)
	signers := make([]*bind.TransactOpts, 0, accounts)
	chainID := big.NewInt(config.HardhatChainID)
	for i := 0; i < accounts; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, errors.Wrap(err, "failed on generate key")
		}
		opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return nil, errors.Wrap(err, "failed on create transactor")
		}
		alloc[opts.From] = core.GenesisAccount{Balance: funds}
		signers = append(signers, opts)
	}

	sim := &simulatedBackend{SimulatedBackend: backends.NewSimulatedBackend(alloc, SimulatedGasLimit)}
	return &Client{
		Name:    config.HardhatNetwork,
		Backend: sim,
		chainID: chainID,
		signers: signers,
		closer:  func() { _ = sim.Close() },
	}, nil
}
