package chain

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

var (
	ErrChainIDMismatch = errors.New("chain id mismatch")
	ErrNoSigner        = errors.New("no signer at index")
)

// Backend 部署与调用合约所需的全部链上能力
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Client 一个网络的连接和它的签名账户
type Client struct {
	Name    string
	Backend Backend

	chainID *big.Int
	signers []*bind.TransactOpts
	closer  func()
}

// Dial 连接网络的 RPC 节点
// 超时时间直接交给 http client；节点返回的 chain id 必须与配置一致
func Dial(ctx context.Context, name string, n *config.Network) (*Client, error) {
	var opts []rpc.ClientOption
	if d := n.RequestTimeout(); d > 0 {
		opts = append(opts, rpc.WithHTTPClient(&http.Client{Timeout: d}))
	}

	rc, err := rpc.DialOptions(ctx, n.URL, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on dial network %s", name)
	}
	ec := ethclient.NewClient(rc)

	chainID, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, errors.Wrapf(err, "failed on get chain id of %s", name)
	}
	if chainID.Int64() != n.ChainID {
		ec.Close()
		return nil, errors.Wrapf(ErrChainIDMismatch, "network %s: configured %d, node reports %s", name, n.ChainID, chainID)
	}

	signers := make([]*bind.TransactOpts, 0, len(n.Accounts))
	for i, acc := range n.Accounts {
		signer, err := NewSigner(acc, chainID)
		if err != nil {
			ec.Close()
			return nil, errors.Wrapf(err, "account %d of %s", i, name)
		}
		signers = append(signers, signer)
	}

	return &Client{
		Name:    name,
		Backend: ec,
		chainID: chainID,
		signers: signers,
		closer:  ec.Close,
	}, nil
}

// ChainID 已确认的 chain id
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Signers 所有签名账户
func (c *Client) Signers() []*bind.TransactOpts {
	return c.signers
}

// TransactOpts 返回第 i 个账户的交易参数副本，绑定到 ctx
func (c *Client) TransactOpts(ctx context.Context, i int) (*bind.TransactOpts, error) {
	if i < 0 || i >= len(c.signers) {
		return nil, errors.Wrapf(ErrNoSigner, "%d (have %d)", i, len(c.signers))
	}
	opts := *c.signers[i]
	opts.Context = ctx
	return &opts, nil
}

// Address 第 i 个账户的地址
func (c *Client) Address(i int) (common.Address, error) {
	if i < 0 || i >= len(c.signers) {
		return common.Address{}, errors.Wrapf(ErrNoSigner, "%d (have %d)", i, len(c.signers))
	}
	return c.signers[i].From, nil
}

// Balance 账户余额，单位 ether
func (c *Client) Balance(ctx context.Context, account common.Address) (decimal.Decimal, error) {
	wei, err := c.Backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed on get balance of %s", account.Hex())
	}
	return WeiToEther(wei), nil
}

// Close 关闭底层连接
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// WeiToEther wei 转换为 ether
func WeiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}
