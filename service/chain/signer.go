package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var ErrEmptyKey = errors.New("empty private key")

// NewSigner 由十六进制私钥 (可带 0x 前缀) 构造绑定 chain id 的交易签名参数
func NewSigner(hexKey string, chainID *big.Int) (*bind.TransactOpts, error) {
	key := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if key == "" {
		return nil, ErrEmptyKey
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create transactor")
	}
	return opts, nil
}
