package database

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Schema is the ordered set of migrations for the storefront tables.
// The structs below are snapshots of each table at the version that
// introduced it; later model changes need a new migration, not an edit here.
var Schema = NewRegistry()

func init() {
	Schema.Register(Migration{
		Version: "202501010001",
		Name:    "create_admins",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&adminV1{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&adminV1{})
		},
	})

	Schema.Register(Migration{
		Version: "202501010002",
		Name:    "create_categories_and_products",
		Up: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&categoryV1{}); err != nil {
				return err
			}
			return tx.AutoMigrate(&productV1{})
		},
		Down: func(tx *gorm.DB) error {
			if err := tx.Migrator().DropTable(&productV1{}); err != nil {
				return err
			}
			return tx.Migrator().DropTable(&categoryV1{})
		},
	})

	Schema.Register(Migration{
		Version: "202501010003",
		Name:    "create_sessions",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&sessionV1{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&sessionV1{})
		},
	})
}

type adminV1 struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Username  string  `gorm:"uniqueIndex;size:50;not null"`
	Password  string  `gorm:"size:255;not null"`
	FullName  *string `gorm:"size:100"`
	IsActive  bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (adminV1) TableName() string { return "admins" }

type categoryV1 struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Name      string  `gorm:"uniqueIndex;size:100;not null"`
	Slug      string  `gorm:"uniqueIndex;size:100;not null"`
	Icon      *string `gorm:"size:50"`
	CreatedAt time.Time
}

func (categoryV1) TableName() string { return "categories" }

type productV1 struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Name        string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"uniqueIndex;size:255;not null"`
	SKU         *string         `gorm:"column:sku;uniqueIndex;size:100"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	Unit        string          `gorm:"size:50;not null;default:piece"`
	Stock       int             `gorm:"not null;default:0"`
	ImageURL    *string         `gorm:"size:500"`
	CategoryID  string          `gorm:"size:36;not null;index"`
	Category    categoryV1      `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

func (productV1) TableName() string { return "products" }

type sessionV1 struct {
	SID           string    `gorm:"column:sid;primaryKey;size:64"`
	AdminID       string    `gorm:"size:36;not null"`
	AdminUsername string    `gorm:"size:50;not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

func (sessionV1) TableName() string { return "sessions" }
