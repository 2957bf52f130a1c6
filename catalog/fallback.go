package catalog

import (
	"github.com/shopspring/decimal"

	"goflare.io/storefront/models"
)

const imageQuery = "?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&q=80"

// fallbackProducts is served when neither the remote catalog nor the database answers.
var fallbackProducts = []models.Product{
	{ID: 1, Name: "Organic Apples", Price: decimal.NewFromInt(250), Image: "https://images.unsplash.com/photo-1568702846914-96b305d2aaeb" + imageQuery, Rating: 4.5, Category: "fruits", Description: "Fresh organic apples from local farms", Stock: 25},
	{ID: 2, Name: "Fresh Avocados", Price: decimal.NewFromInt(320), Image: "https://images.unsplash.com/photo-1523049673857-eb18f1d7b578" + imageQuery, Rating: 4.8, Category: "fruits", Description: "Creamy ripe avocados", Stock: 18},
	{ID: 3, Name: "Strawberries", Price: decimal.NewFromInt(450), Image: "https://images.unsplash.com/photo-1543528176-61b239494933" + imageQuery, Rating: 4.7, Category: "berries", Description: "Sweet organic strawberries", Stock: 12},
	{ID: 4, Name: "Broccoli", Price: decimal.NewFromInt(220), Image: "https://images.unsplash.com/photo-1459411621453-7b03977f4bfc" + imageQuery, Rating: 4.3, Category: "vegetables", Description: "Fresh green broccoli", Stock: 30},
	{ID: 5, Name: "Carrots", Price: decimal.NewFromInt(150), Image: "https://images.unsplash.com/photo-1445282768818-728615cc910a" + imageQuery, Rating: 4.6, Category: "vegetables", Description: "Organic crunchy carrots", Stock: 40},
	{ID: 6, Name: "Bananas", Price: decimal.NewFromInt(180), Image: "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e" + imageQuery, Rating: 4.4, Category: "fruits", Description: "Sweet yellow bananas", Stock: 35},
	{ID: 7, Name: "Spinach", Price: decimal.NewFromInt(280), Image: "https://images.unsplash.com/photo-1576045057995-568f588f82fb" + imageQuery, Rating: 4.2, Category: "leafy-greens", Description: "Fresh organic spinach", Stock: 22},
	{ID: 8, Name: "Tomatoes", Price: decimal.NewFromInt(190), Image: "https://images.unsplash.com/photo-1592924357228-91a4daadcfea" + imageQuery, Rating: 4.5, Category: "vegetables", Description: "Fresh red tomatoes", Stock: 28},
}

var offers = []models.Offer{
	{ID: 1, Title: "Buy One Get One Free - Organic Avocados", Description: "Get a free avocado when you buy one. Limited time only!", Price: "$4.99", Image: "https://images.unsplash.com/photo-1558449714-9b91a1a381e0?fit=max&w=400"},
	{ID: 2, Title: "10% Off on All Organic Apples", Description: "Enjoy a 10% discount on all apple products. Fresh and tasty!", Price: "$2.99", Image: "https://images.unsplash.com/photo-1568702846914-96b305d2aaeb?fit=max&w=400"},
	{ID: 3, Title: "20% Off on Strawberries", Description: "Save 20% on fresh strawberries this week only.", Price: "$3.99", Image: "https://images.unsplash.com/photo-1592862529571-b5e8f720a94a?fit=max&w=400"},
}

// Fallback returns a copy of the built-in product list.
func Fallback() []models.Product {
	out := make([]models.Product, len(fallbackProducts))
	copy(out, fallbackProducts)
	return out
}

// Offers returns the current promotions.
func Offers() []models.Offer {
	out := make([]models.Offer, len(offers))
	copy(out, offers)
	return out
}
