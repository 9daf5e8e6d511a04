package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/DarkHorse0725/NFT-marketplace/logger/xzap"
	"github.com/DarkHorse0725/NFT-marketplace/service/artifact"
	"github.com/DarkHorse0725/NFT-marketplace/service/chain"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/deployer"
	"github.com/DarkHorse0725/NFT-marketplace/service/registry"
	"github.com/DarkHorse0725/NFT-marketplace/service/scenario"
)

// HardhatAccounts 进程内链的账户数量
const HardhatAccounts = 10

// Service 一次命令执行所需的全部组件
type Service struct {
	ctx       context.Context
	config    *config.Config
	runID     string
	client    *chain.Client
	artifacts *artifact.Store
	registry  registry.Store
	deployer  *deployer.Deployer
}

// New 连接网络并初始化部署器
func New(ctx context.Context, cfg *config.Config, network string) (*Service, error) {
	network = strings.ToLower(network)
	runID := uuid.NewString()
	ctx = xzap.NewContext(ctx, zap.String("run_id", runID), zap.String("network", network))

	// 1. 解析网络配置 (展开环境变量)
	n, err := cfg.Network(network)
	if err != nil {
		return nil, err
	}

	// 2. 连接链
	var client *chain.Client
	if network == config.HardhatNetwork {
		client, err = chain.NewSimulated(HardhatAccounts)
	} else {
		client, err = chain.Dial(ctx, network, n)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed on create chain client")
	}

	// 3. 部署记录存储
	store, err := registry.New(cfg.Registry)
	if err != nil {
		client.Close()
		return nil, err
	}

	artifacts := artifact.NewStore(cfg.Artifacts)
	return &Service{
		ctx:       ctx,
		config:    cfg,
		runID:     runID,
		client:    client,
		artifacts: artifacts,
		registry:  store,
		deployer:  deployer.New(client, artifacts, store, runID),
	}, nil
}

// RunID 本次执行的唯一标识
func (s *Service) RunID() string {
	return s.runID
}

// Deploy 执行部署计划，发送任何交易之前先确认所有 artifact 都可用
func (s *Service) Deploy() ([]*deployer.Contract, error) {
	names := make([]string, 0, len(s.config.Deploy.Contracts))
	for _, spec := range s.config.Deploy.Contracts {
		names = append(names, spec.Name)
	}
	if err := s.artifacts.Preload(names...); err != nil {
		return nil, err
	}

	s.logDeployer()
	return s.deployer.DeployAll(s.ctx, s.config.Deploy.Contracts)
}

// Scenario 执行市场/拍卖流程，配置中没有自定义步骤时使用内置流程
func (s *Service) Scenario() ([]scenario.Result, error) {
	steps := s.config.Scenario.Steps
	if len(steps) == 0 {
		steps = scenario.DefaultMarketplace()
	}
	var names []string
	for _, step := range steps {
		if step.Kind == scenario.KindDeploy {
			names = append(names, step.Contract)
		}
	}
	if err := s.artifacts.Preload(names...); err != nil {
		return nil, err
	}

	s.logDeployer()
	return scenario.New(s.deployer).Run(s.ctx, steps)
}

// Deployments 当前网络的历史部署记录
func (s *Service) Deployments() ([]*registry.Record, error) {
	return s.registry.List(s.ctx, s.client.Name)
}

// Close 关闭部署记录存储和链连接
func (s *Service) Close() {
	if err := s.registry.Close(); err != nil {
		xzap.WithContext(s.ctx).Warn("failed on close deployment store", zap.Error(err))
	}
	s.client.Close()
}

func (s *Service) logDeployer() {
	addr, err := s.client.Address(0)
	if err != nil {
		xzap.WithContext(s.ctx).Warn("no deployer account configured", zap.Error(err))
		return
	}
	balance, err := s.client.Balance(s.ctx, addr)
	if err != nil {
		xzap.WithContext(s.ctx).Warn("failed on get deployer balance", zap.Error(err))
		return
	}
	xzap.WithContext(s.ctx).Info("deployer account",
		zap.String("address", addr.Hex()),
		zap.String("balance", balance.String()),
		zap.String("chain_id", s.client.ChainID().String()))
}
