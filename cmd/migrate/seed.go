package main

import "github.com/MikeMC777/caja-pos/internal/product"

// cafeMenu is loaded into an empty catalog.
var cafeMenu = []product.SaveProductRequest{
	{Name: "Espresso", Price: "2.50", Category: "Coffee"},
	{Name: "Cappuccino", Price: "3.50", Category: "Coffee"},
	{Name: "Latte", Price: "4.00", Category: "Coffee"},
	{Name: "Americano", Price: "3.00", Category: "Coffee"},
	{Name: "Mocha", Price: "4.50", Category: "Coffee"},
	{Name: "Hot Chocolate", Price: "3.50", Category: "Beverages"},
	{Name: "Green Tea", Price: "2.00", Category: "Tea"},
	{Name: "Earl Grey", Price: "2.50", Category: "Tea"},
	{Name: "Croissant", Price: "3.00", Category: "Pastries"},
	{Name: "Muffin", Price: "2.50", Category: "Pastries"},
	{Name: "Sandwich", Price: "6.50", Category: "Food"},
	{Name: "Bagel", Price: "4.00", Category: "Food"},
	{Name: "Cheesecake", Price: "5.00", Category: "Desserts"},
	{Name: "Tiramisu", Price: "5.50", Category: "Desserts"},
	{Name: "Iced Coffee", Price: "3.50", Category: "Cold Drinks"},
	{Name: "Smoothie", Price: "4.50", Category: "Cold Drinks"},
}

func seedProducts() ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(cafeMenu))
	for _, req := range cafeMenu {
		p, err := req.ToProduct()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
