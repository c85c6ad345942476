package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Name          string `gorm:"not null"`
		Email         string `gorm:"unique;not null"`
		Password      string `gorm:"not null"`
		Tokens        []Token
		FavoriteShops []FavoriteShop
	}

	Token struct {
		GormForkedModel
		UserID    uint64    `gorm:"not null;index"`
		User      User
		Token     string    `gorm:"uniqueIndex;not null"`
		ExpiresAt time.Time `gorm:"not null"`
	}

	Shop struct {
		GormForkedModel
		Name         string     `gorm:"not null"`
		Address      string     `gorm:"not null"`
		Latitude     float64    `gorm:"not null"`
		Longitude    float64    `gorm:"not null"`
		Description  *string
		ListedBrands StringList `gorm:"type:text"`
		Reviews      []Review
	}

	Review struct {
		GormForkedModel
		ShopID      uint64     `gorm:"not null;index"`
		Shop        Shop
		UserName    string     `gorm:"not null"`
		Rating      int        `gorm:"not null"`
		Comment     *string
		Brands      StringList `gorm:"type:text"`
		Description *string
	}

	FavoriteShop struct {
		GormForkedModel
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_user_id_shop_id"`
		User   User
		ShopID uint64 `gorm:"not null;uniqueIndex:uidx_user_id_shop_id"`
		Shop   Shop
	}
)

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DBDriverSqlite:
		dialector = sqlite.Open(cfg.DBSqlitePath)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	}

	db, err := Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Open connects through the given dialector and migrates the schema.
func Open(dialector gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	gormCfg.TranslateError = true

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Token{}); err != nil {
		return errors.Wrap(err, "migrate token")
	}
	if err := db.AutoMigrate(&Shop{}); err != nil {
		return errors.Wrap(err, "migrate shop")
	}
	if err := db.AutoMigrate(&Review{}); err != nil {
		return errors.Wrap(err, "migrate review")
	}
	if err := db.AutoMigrate(&FavoriteShop{}); err != nil {
		return errors.Wrap(err, "migrate favorite shop")
	}
	return nil
}
