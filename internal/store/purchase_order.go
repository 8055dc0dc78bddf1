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

// Purchase order lifecycle. A draft or submitted order counts as open for
// duplicate suppression in the reorder rule.
const (
	POStatusDraft     = "draft"
	POStatusSubmitted = "submitted"
	POStatusReceived  = "received"
)

// PurchaseOrder is a row of the purchase_orders table with the product's SKU
// joined in.
type PurchaseOrder struct {
	ID        int64
	ProductID int64
	SKU       string
	Quantity  int
	Status    string
	CreatedAt string
	UpdatedAt string
}

// ListPurchaseOrders returns purchase orders ordered by id, restricted to the
// given status unless status is empty.
func (s *Store) ListPurchaseOrders(status string) (*container.Array[PurchaseOrder], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT po.id, po.product_id, p.sku, po.quantity, po.status, po.created_at, po.updated_at
		FROM purchase_orders po JOIN products p ON p.id = po.product_id`
	var args []any
	if status != "" {
		query += " WHERE po.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY po.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query purchase_orders")
	}
	defer rows.Close()

	out := container.NewArray[PurchaseOrder]()
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.ProductID, &po.SKU, &po.Quantity,
			&po.Status, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan purchase_order")
		}
		out.Append(po)
	}
	return out, errors.Wrap(rows.Err(), "iterate purchase_orders")
}

// HasOpenPurchaseOrder reports whether the product has a draft or submitted
// purchase order.
func (s *Store) HasOpenPurchaseOrder(productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasOpenPurchaseOrder(productID)
}

func (s *Store) hasOpenPurchaseOrder(productID int64) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM purchase_orders WHERE product_id = ? AND status IN ('draft','submitted')",
		productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, errors.Wrap(err, "query open purchase_orders")
}

// CreatePurchaseOrder inserts a draft purchase order for qty units and
// returns its id.
func (s *Store) CreatePurchaseOrder(actor string, productID int64, qty int) (int64, error) {
	if qty <= 0 {
		return 0, errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := nowStr()
	res, err := s.db.Exec(
		"INSERT INTO purchase_orders (product_id, quantity, status, created_at, updated_at) VALUES (?, ?, 'draft', ?, ?)",
		productID, qty, ts, ts)
	if err != nil {
		return 0, errors.Wrap(err, "insert purchase_order")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "last insert id")
	}
	if err := s.audit(actor, "create", "purchase_order", id,
		fmt.Sprintf("product_id=%d, qty=%d", productID, qty)); err != nil {
		return 0, err
	}
	return id, nil
}

// ReceivePurchaseOrder marks the order received and adds the received units
// to the product's stock. qtyReceived <= 0 receives the order's full
// quantity. Receiving an already-received order fails.
func (s *Store) ReceivePurchaseOrder(actor string, poID int64, qtyReceived int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var productID int64
	var qty int
	var status string
	err := s.db.QueryRow(
		"SELECT product_id, quantity, status FROM purchase_orders WHERE id = ?", poID).
		Scan(&productID, &qty, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, "purchase order %d", poID)
	}
	if err != nil {
		return errors.Wrapf(err, "fetch purchase order %d", poID)
	}
	if status == POStatusReceived {
		return errors.Newf("purchase order %d already received", poID)
	}
	if qtyReceived > 0 {
		qty = qtyReceived
	}

	now := nowStr()
	if _, err := s.db.Exec(
		"UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE id = ?",
		qty, now, productID); err != nil {
		return errors.Wrapf(err, "update product %d", productID)
	}
	if _, err := s.db.Exec(
		"UPDATE purchase_orders SET status = 'received', updated_at = ? WHERE id = ?",
		now, poID); err != nil {
		return errors.Wrapf(err, "update purchase order %d", poID)
	}
	return s.audit(actor, "receive", "purchase_order", poID, fmt.Sprintf("qty_received=%d", qty))
}
