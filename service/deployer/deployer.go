package deployer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/DarkHorse0725/NFT-marketplace/logger/xzap"
	"github.com/DarkHorse0725/NFT-marketplace/service/abiarg"
	"github.com/DarkHorse0725/NFT-marketplace/service/artifact"
	"github.com/DarkHorse0725/NFT-marketplace/service/chain"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/registry"
)

var ErrUnknownContract = errors.New("unknown contract alias")

// 签名者变量名: owner 为第 0 个账户，other 为第 1 个账户
var SignerNames = []string{"owner", "other"}

// Contract 已部署 (或已绑定) 的合约
type Contract struct {
	Name    string
	Alias   string
	Address common.Address
	ABI     abi.ABI
	TxHash  common.Hash
	Bound   *bind.BoundContract
}

// Deployer 按顺序部署合约，并记录别名到地址的映射
type Deployer struct {
	client    *chain.Client
	artifacts *artifact.Store
	registry  registry.Store
	runID     string

	vars      abiarg.Vars
	contracts map[string]*Contract
}

func New(client *chain.Client, artifacts *artifact.Store, store registry.Store, runID string) *Deployer {
	vars := abiarg.Vars{}
	for i, signer := range client.Signers() {
		vars.Set(fmt.Sprintf("signer%d", i), signer.From.Hex())
		if i < len(SignerNames) {
			vars.Set(SignerNames[i], signer.From.Hex())
		}
	}
	return &Deployer{
		client:    client,
		artifacts: artifacts,
		registry:  store,
		runID:     runID,
		vars:      vars,
		contracts: make(map[string]*Contract),
	}
}

// Vars 当前可用的 ${name} 变量
func (d *Deployer) Vars() abiarg.Vars {
	return d.vars
}

// Client 使用的链客户端
func (d *Deployer) Client() *chain.Client {
	return d.client
}

// Contract 按别名取已部署的合约
func (d *Deployer) Contract(alias string) (*Contract, error) {
	c, ok := d.contracts[alias]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownContract, "%s", alias)
	}
	return c, nil
}

// DeployAll 依次部署，遇到第一个失败即停止
func (d *Deployer) DeployAll(ctx context.Context, specs []config.DeploySpec) ([]*Contract, error) {
	deployed := make([]*Contract, 0, len(specs))
	for _, spec := range specs {
		c, err := d.Deploy(ctx, spec)
		if err != nil {
			return deployed, err
		}
		deployed = append(deployed, c)
	}
	return deployed, nil
}

// Deploy 使用第 0 个账户部署合约
func (d *Deployer) Deploy(ctx context.Context, spec config.DeploySpec) (*Contract, error) {
	return d.DeployFrom(ctx, spec, 0)
}

// DeployFrom 使用第 signer 个账户部署一个合约:
// 取合约工厂 -> 转换构造参数 -> 发送部署交易 -> 等待上链 -> 记录
func (d *Deployer) DeployFrom(ctx context.Context, spec config.DeploySpec, signer int) (*Contract, error) {
	alias := spec.Alias
	if alias == "" {
		alias = contractName(spec.Name)
	}

	factory, err := d.artifacts.Factory(spec.Name)
	if err != nil {
		return nil, err
	}
	if err := factory.Deployable(); err != nil {
		return nil, err
	}

	expanded := make([]string, len(spec.Args))
	for i, raw := range spec.Args {
		if expanded[i], err = d.vars.Expand(raw); err != nil {
			return nil, errors.Wrapf(err, "deploy %s argument %d", alias, i)
		}
	}
	// 参数已经展开过，变量值中的 ${...} 按字面量处理
	args, err := abiarg.Convert(factory.ABI.Constructor.Inputs, expanded, abiarg.Vars{})
	if err != nil {
		return nil, errors.Wrapf(err, "deploy %s", alias)
	}

	opts, err := d.client.TransactOpts(ctx, signer)
	if err != nil {
		return nil, err
	}

	xzap.WithContext(ctx).Info("deploying contract",
		zap.String("contract", factory.Name),
		zap.String("alias", alias),
		zap.Strings("args", expanded),
		zap.String("deployer", opts.From.Hex()))

	address, tx, bound, err := bind.DeployContract(opts, factory.ABI, factory.Bytecode, d.client.Backend, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on send deploy tx of %s", alias)
	}

	receipt, err := chain.WaitSuccess(ctx, d.client.Backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "deploy %s", alias)
	}
	if _, err := bind.WaitDeployed(ctx, d.client.Backend, tx); err != nil {
		return nil, errors.Wrapf(err, "deploy %s", alias)
	}

	xzap.WithContext(ctx).Info(fmt.Sprintf("%s Contract Address: %s", factory.Name, address.Hex()),
		zap.String("alias", alias),
		zap.String("address", address.Hex()),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
		zap.Uint64("gas_used", receipt.GasUsed))

	if d.registry != nil {
		if err := d.registry.Save(ctx, &registry.Record{
			RunID:       d.runID,
			Network:     d.client.Name,
			ChainID:     d.client.ChainID().Int64(),
			Contract:    factory.Name,
			Alias:       alias,
			Address:     address.Hex(),
			TxHash:      tx.Hash().Hex(),
			Deployer:    opts.From.Hex(),
			Args:        expanded,
			BlockNumber: receipt.BlockNumber.Uint64(),
			DeployedAt:  time.Now().UTC(),
		}); err != nil {
			return nil, errors.Wrapf(err, "failed on record deployment of %s", alias)
		}
	}

	c := &Contract{
		Name:    factory.Name,
		Alias:   alias,
		Address: address,
		ABI:     factory.ABI,
		TxHash:  tx.Hash(),
		Bound:   bound,
	}
	d.contracts[alias] = c
	d.vars.Set(alias, address.Hex())
	return c, nil
}

// contractName 完整名 contracts/A.sol:A 取冒号后的部分
func contractName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}
