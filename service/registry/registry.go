package registry

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

// Record 一次合约部署的记录
type Record struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RunID       string    `gorm:"column:run_id;size:36;index" json:"run_id"`          // 同一次命令执行的部署共享 RunID
	Network     string    `gorm:"column:network;size:64;index" json:"network"`        // 网络名
	ChainID     int64     `gorm:"column:chain_id" json:"chain_id"`                    // Chain ID
	Contract    string    `gorm:"column:contract;size:128" json:"contract"`           // 合约名
	Alias       string    `gorm:"column:alias;size:128" json:"alias"`                 // 引用名
	Address     string    `gorm:"column:address;size:42" json:"address"`              // 合约地址
	TxHash      string    `gorm:"column:tx_hash;size:66" json:"tx_hash"`              // 部署交易哈希
	Deployer    string    `gorm:"column:deployer;size:42" json:"deployer"`            // 部署账户
	Args        []string  `gorm:"column:args;serializer:json;type:text" json:"args"` // 展开后的构造参数
	BlockNumber uint64    `gorm:"column:block_number" json:"block_number"`            // 部署所在区块
	DeployedAt  time.Time `gorm:"column:deployed_at" json:"deployed_at"`
}

func (Record) TableName() string {
	return "contract_deployments"
}

// Store 部署记录存储
type Store interface {
	Save(ctx context.Context, r *Record) error
	List(ctx context.Context, network string) ([]*Record, error)
	Close() error
}

// New 按配置创建存储: 总是写文件，配置了 db 时同时写 MySQL
func New(cfg config.RegistryCfg) (Store, error) {
	file := NewFileStore(cfg.Dir)
	if cfg.DB == nil {
		return file, nil
	}

	db, err := NewDBStore(cfg.DB)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create deployment db store")
	}
	return Multi(file, db), nil
}

type multiStore []Store

// Multi 依次写入每个存储，读取使用第一个
func Multi(stores ...Store) Store {
	return multiStore(stores)
}

func (m multiStore) Save(ctx context.Context, r *Record) error {
	for _, s := range m {
		if err := s.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m multiStore) List(ctx context.Context, network string) ([]*Record, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].List(ctx, network)
}

// Close 关闭全部存储，返回第一个错误
func (m multiStore) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
