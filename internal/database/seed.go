package database

import (
	"context"
	"fmt"
)

type sampleProduct struct {
	id          int64
	name        string
	description string
	price       string
	image       string
	tags        string
}

var sampleProducts = []sampleProduct{
	{1, "Canvas Backpack", "Durable canvas backpack with padded laptop sleeve.", "199.99", "images/product1.jpg", "bags,travel"},
	{2, "Wireless Headphones", "Over-ear headphones with active noise cancelling.", "299.99", "images/product2.jpg", "audio,electronics"},
	{3, "Smart Watch", "Fitness tracking, notifications and a week of battery.", "399.99", "images/product3.jpg", "electronics,fitness"},
	{4, "Espresso Machine", "15 bar pump espresso machine with milk frother.", "499.99", "images/product4.jpg", "kitchen,coffee"},
	{5, "Leather Jacket", "Classic cut leather jacket that never goes out of style.", "599.99", "images/product5.jpg", "clothing"},
	{6, "Mechanical Keyboard", "Hot-swappable switches and aluminium frame.", "699.99", "images/product6.jpg", "electronics,office"},
}

// SeedProducts inserts the sample catalog. Rows whose id already exists are
// left alone, so running it twice is harmless. It returns the number of rows
// inserted.
func (db *DB) SeedProducts(ctx context.Context) (int64, error) {
	var inserted int64
	for _, p := range sampleProducts {
		res, err := db.ExecContext(ctx, `
			INSERT IGNORE INTO products (id, name, description, price, image, tags)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.description, p.price, p.image, p.tags)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed product %d: %w", p.id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}
