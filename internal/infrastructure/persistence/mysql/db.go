package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	applog "github.com/xiebiao/library/pkg/logger"
)

// NewDB 创建数据库连接并配置连接池
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// 唯一索引冲突统一翻译成 gorm.ErrDuplicatedKey
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	applog.Info("数据库连接成功", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.DBName,
	})

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// AutoMigrate 建表/补字段，只增不删
// 生产环境应使用版本化迁移脚本
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&BorrowSlipModel{},
		&BorrowSlipDetailModel{},
	)
}

// UserModel 用户表
// roles 以逗号分隔存储，如 "USER,ADMIN"
type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:64;not null"`
	Password  string `gorm:"size:255;not null"`
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:20"`
	Roles     string `gorm:"size:64;not null"`
	Status    string `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel 图书表
// available_quantity 只通过条件更新修改，见 bookRepository.DecrementAvailable
type BookModel struct {
	ID                uint   `gorm:"primaryKey"`
	BookCode          string `gorm:"uniqueIndex;size:32;not null"`
	Title             string `gorm:"index;size:200;not null"`
	ISBN              string `gorm:"size:20"`
	PublishYear       int
	Price             int64
	Description       string `gorm:"type:text"`
	TotalQuantity     int    `gorm:"not null;default:0"`
	AvailableQuantity int    `gorm:"not null;default:0"`
	IsActive          bool   `gorm:"index;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// BorrowSlipModel 借阅单头
// created_at 精确到微秒，按时刻精确查询依赖这一精度
// precision:6 在 MySQL 上生成 datetime(6)，sqlite 上为 datetime
type BorrowSlipModel struct {
	ID        uint                    `gorm:"primaryKey"`
	SlipCode  string                  `gorm:"uniqueIndex;size:16;not null"`
	ReaderID  uint                    `gorm:"index;not null"`
	Status    string                  `gorm:"size:16;not null"`
	Note      string                  `gorm:"size:500"`
	CreatedAt time.Time               `gorm:"index;precision:6"`
	UpdatedAt time.Time               `gorm:"precision:6"`
	Details   []BorrowSlipDetailModel `gorm:"foreignKey:BorrowSlipID"`
}

func (BorrowSlipModel) TableName() string {
	return "borrow_slips"
}

// BorrowSlipDetailModel 借阅明细，一行一册
type BorrowSlipDetailModel struct {
	ID           uint       `gorm:"primaryKey"`
	BorrowSlipID uint       `gorm:"index;not null"`
	BookID       uint       `gorm:"index;not null"`
	BorrowDate   time.Time  `gorm:"type:date;not null"`
	DueDate      time.Time  `gorm:"type:date;not null"`
	ReturnDate   *time.Time `gorm:"type:date"`
	Status       string     `gorm:"index;size:16;not null"`
	Note         string     `gorm:"size:500"`
}

func (BorrowSlipDetailModel) TableName() string {
	return "borrow_slip_details"
}
