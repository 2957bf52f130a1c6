package enum

// ProductSort 表示商品列表的排序方式
type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortRating    ProductSort = "rating"
)

func (s ProductSort) Valid() bool {
	switch s {
	case ProductSortName, ProductSortPriceLow, ProductSortPriceHigh, ProductSortRating:
		return true
	}
	return false
}
