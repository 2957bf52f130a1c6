package models

import (
	"github.com/shopspring/decimal"

	"goflare.io/storefront/models/enum"
)

// Product 代表商品目錄中的商品
type Product struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Rating      float64         `json:"rating"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Stock       int64           `json:"stock"`
}

// LineItem builds the cart entry for quantity units of the product.
func (p *Product) LineItem(quantity int64) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: quantity,
	}
}

// ProductQuery 商品列表的搜尋、分類與排序條件
type ProductQuery struct {
	Search   string           `json:"search"`
	Category string           `json:"category"`
	Sort     enum.ProductSort `json:"sort"`
}

// Offer 代表促銷活動
type Offer struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}
