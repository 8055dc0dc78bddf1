// Copyright 2025 The Stockpile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"database/sql"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/stockpile/stockpile/container"
)

// Product is a row of the products table.
type Product struct {
	ID             int64
	SKU            string
	Name           string
	Category       string
	Price          float64
	MinPrice       float64
	MaxPrice       float64
	Quantity       int
	ReorderLevel   int
	IsActive       bool
	IsPromoActive  bool
	ItemsSoldCount int
	ReviewsCount   int
	DiscountRate   float64
	CreatedAt      string
	UpdatedAt      string
}

const productColumns = `id, sku, name, category, price, min_price, max_price,
	quantity, reorder_level, is_active, is_promo_active,
	items_sold_count, reviews_count, discount_rate, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.MinPrice, &p.MaxPrice,
		&p.Quantity, &p.ReorderLevel, &p.IsActive, &p.IsPromoActive,
		&p.ItemsSoldCount, &p.ReviewsCount, &p.DiscountRate, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// allowedProductFields whitelists the columns UpdateProductField may touch.
// The column name lands in the SQL text directly, so the whitelist is what
// stands between the caller and injection.
var allowedProductFields = map[string]bool{
	"name":             true,
	"category":         true,
	"price":            true,
	"min_price":        true,
	"max_price":        true,
	"quantity":         true,
	"reorder_level":    true,
	"is_active":        true,
	"is_promo_active":  true,
	"items_sold_count": true,
	"reviews_count":    true,
	"discount_rate":    true,
}

// CreateProduct inserts a new product and returns its id. New products start
// active and out of promo.
func (s *Store) CreateProduct(
	actor, sku, name, category string,
	price, minPrice, maxPrice float64,
	quantity, reorderLevel int,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := nowStr()
	res, err := s.db.Exec(
		`INSERT INTO products (
			sku, name, category, price, min_price, max_price,
			quantity, reorder_level, is_active, is_promo_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 0, ?, ?)`,
		sku, name, category, price, minPrice, maxPrice, quantity, reorderLevel, ts, ts,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "insert product %q", sku)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "last insert id")
	}
	if err := s.audit(actor, "create", "product", id,
		fmt.Sprintf("sku=%s, name=%s, category=%s, quantity=%d, price=%v", sku, name, category, quantity, price)); err != nil {
		return 0, err
	}
	return id, nil
}

// ProductBySKU fetches a product by SKU, returning ErrNotFound if absent.
func (s *Store) ProductBySKU(sku string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productBySKU(sku)
}

func (s *Store) productBySKU(sku string) (Product, error) {
	p, err := scanProduct(s.db.QueryRow(
		"SELECT "+productColumns+" FROM products WHERE sku = ?", sku))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, errors.Wrapf(ErrNotFound, "product %q", sku)
	}
	return p, errors.Wrapf(err, "fetch product %q", sku)
}

// UpdateProductField sets a single whitelisted column for the product with
// the given SKU.
func (s *Store) UpdateProductField(actor, sku, field string, value any) error {
	if !allowedProductFields[field] {
		return errors.Newf("unsupported or unsafe field: %q", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET "+field+" = ?, updated_at = ? WHERE sku = ?",
		value, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "update", "product", 0,
		fmt.Sprintf("sku=%s, set %s=%v", sku, field, value))
}

// execOnSKU runs an update keyed by SKU and converts a zero-row result into
// ErrNotFound.
func (s *Store) execOnSKU(sku, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return errors.Wrapf(err, "update product %q", sku)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "product %q", sku)
	}
	return nil
}

// SetQuantity sets the absolute stock quantity, which must be non-negative.
func (s *Store) SetQuantity(actor, sku string, qty int) error {
	if qty < 0 {
		return errors.New("quantity cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET quantity = ?, updated_at = ? WHERE sku = ?",
		qty, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "set-qty", "product", 0, fmt.Sprintf("sku=%s, qty=%d", sku, qty))
}

// AdjustQuantity shifts the stock quantity by delta, which may be negative.
func (s *Store) AdjustQuantity(actor, sku string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE sku = ?",
		delta, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "adjust-qty", "product", 0, fmt.Sprintf("sku=%s, delta=%d", sku, delta))
}

// RecordSale decrements stock by qty, increments the sold counter, and
// appends a sales ledger row priced at the product's current price. It fails
// if the product is unknown, qty is not positive, or stock is insufficient.
func (s *Store) RecordSale(actor, sku string, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.productBySKU(sku)
	if err != nil {
		return err
	}
	if p.Quantity < qty {
		return errors.Newf("insufficient stock for %q: have %d, want %d", sku, p.Quantity, qty)
	}

	newQty := p.Quantity - qty
	now := nowStr()
	if _, err := s.db.Exec(
		"UPDATE products SET quantity = ?, items_sold_count = items_sold_count + ?, updated_at = ? WHERE id = ?",
		newQty, qty, now, p.ID); err != nil {
		return errors.Wrapf(err, "update product %q", sku)
	}
	if _, err := s.db.Exec(
		"INSERT INTO sales (product_id, quantity, price_at_sale, created_at) VALUES (?, ?, ?, ?)",
		p.ID, qty, p.Price, now); err != nil {
		return errors.Wrap(err, "insert sale")
	}
	return s.audit(actor, "sale", "product", p.ID,
		fmt.Sprintf("sku=%s, qty=%d, new_qty=%d", sku, qty, newQty))
}

// RecordReturn increments stock by qty and decrements the sold counter,
// flooring it at zero. Returned units do not re-enter the sales ledger.
func (s *Store) RecordReturn(actor, sku string, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.productBySKU(sku)
	if err != nil {
		return err
	}
	newQty := p.Quantity + qty
	if _, err := s.db.Exec(
		`UPDATE products
		SET quantity = ?, items_sold_count = MAX(items_sold_count - ?, 0), updated_at = ?
		WHERE id = ?`,
		newQty, qty, nowStr(), p.ID); err != nil {
		return errors.Wrapf(err, "update product %q", sku)
	}
	return s.audit(actor, "return", "product", p.ID,
		fmt.Sprintf("sku=%s, qty=%d, new_qty=%d", sku, qty, newQty))
}

// ListProducts returns all products ordered by SKU.
func (s *Store) ListProducts() (*container.Array[Product], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryProducts("SELECT " + productColumns + " FROM products ORDER BY sku")
}

// ActiveProducts returns the active catalog ordered by SKU, the snapshot the
// pricing and reorder rules operate on.
func (s *Store) ActiveProducts() (*container.Array[Product], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryProducts("SELECT " + productColumns + " FROM products WHERE is_active = 1 ORDER BY sku")
}

func (s *Store) queryProducts(query string, args ...any) (*container.Array[Product], error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	out := container.NewArray[Product]()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out.Append(p)
	}
	return out, errors.Wrap(rows.Err(), "iterate products")
}

// SetReviewsCount sets the absolute review count, which must be non-negative.
func (s *Store) SetReviewsCount(actor, sku string, count int) error {
	if count < 0 {
		return errors.New("reviews_count cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET reviews_count = ?, updated_at = ? WHERE sku = ?",
		count, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "set-reviews", "product", 0,
		fmt.Sprintf("sku=%s, reviews_count=%d", sku, count))
}

// SetItemsSoldCount sets the absolute sold counter, which must be
// non-negative.
func (s *Store) SetItemsSoldCount(actor, sku string, count int) error {
	if count < 0 {
		return errors.New("items_sold_count cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET items_sold_count = ?, updated_at = ? WHERE sku = ?",
		count, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "set-sold", "product", 0,
		fmt.Sprintf("sku=%s, items_sold_count=%d", sku, count))
}

// SetDiscountRate sets the discount rate, which must lie in [0.0, 1.0].
func (s *Store) SetDiscountRate(actor, sku string, rate float64) error {
	if rate < 0 || rate > 1 {
		return errors.New("discount_rate must be between 0.0 and 1.0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.execOnSKU(sku,
		"UPDATE products SET discount_rate = ?, updated_at = ? WHERE sku = ?",
		rate, nowStr(), sku); err != nil {
		return err
	}
	return s.audit(actor, "set-discount", "product", 0,
		fmt.Sprintf("sku=%s, discount_rate=%v", sku, rate))
}
