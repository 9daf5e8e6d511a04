package registry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

// DBStore 部署记录写入 MySQL 的 contract_deployments 表
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(c *config.DBConf) (*DBStore, error) {
	db, err := gorm.Open(mysql.Open(c.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed on get sql db")
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewDBStoreWithDB(db)
}

// NewDBStoreWithDB 使用已有连接，并确保表结构存在
func NewDBStoreWithDB(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, errors.Wrap(err, "failed on migrate contract_deployments")
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Save(ctx context.Context, r *Record) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return errors.Wrapf(err, "failed on insert deployment of %s", r.Contract)
	}
	return nil
}

func (s *DBStore) List(ctx context.Context, network string) ([]*Record, error) {
	var records []*Record
	if err := s.db.WithContext(ctx).
		Where("network = ?", network).
		Order("id asc").
		Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed on list deployments of %s", network)
	}
	return records, nil
}

// Close 关闭连接池
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed on get sql db")
	}
	return sqlDB.Close()
}
