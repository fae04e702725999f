package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	gorm.Model
	Name          string `gorm:"column:name;type:varchar(100);not null"`
	NameEn        string `gorm:"column:name_en;type:varchar(100)"`
	Description   string `gorm:"column:description;type:text"`
	DescriptionEn string `gorm:"column:description_en;type:text"`
	Image         string `gorm:"column:image;type:varchar(512)"`
	Active        bool   `gorm:"column:active;not null"`
}

func (Category) TableName() string { return "categories" }

// Product 商品，库存始终非负
type Product struct {
	gorm.Model
	Name          string          `gorm:"column:name;type:varchar(255);not null"`
	NameEn        string          `gorm:"column:name_en;type:varchar(255)"`
	Description   string          `gorm:"column:description;type:text"`
	DescriptionEn string          `gorm:"column:description_en;type:text"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	Images        []string        `gorm:"column:images;type:text;serializer:json"`
	Stock         int             `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0"`
	Featured      bool            `gorm:"column:featured;not null;index"`
	Active        bool            `gorm:"column:active;not null"`
	CategoryID    uint            `gorm:"column:category_id;not null;index"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string { return "products" }

// HasStock 是否能满足指定数量
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// ProductFilter 商品列表过滤条件，nil 字段不过滤
type ProductFilter struct {
	CategoryID *uint
	Featured   *bool
	Active     *bool
	Search     string
}
