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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func addProduct(t *testing.T, s *Store, sku string, qty, reorderLevel int) int64 {
	t.Helper()
	id, err := s.CreateProduct("test", sku, "Widget "+sku, "Tools", 10, 8, 12, qty, reorderLevel)
	require.NoError(t, err)
	return id
}

func TestProductCreateFetch(t *testing.T) {
	s := newTestStore(t)
	id := addProduct(t, s, "P001", 50, 10)

	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, id, p.ID)
	require.Equal(t, "Widget P001", p.Name)
	require.Equal(t, 50, p.Quantity)
	require.Equal(t, 10, p.ReorderLevel)
	require.True(t, p.IsActive)
	require.False(t, p.IsPromoActive)
	require.NotEmpty(t, p.CreatedAt)
	require.Equal(t, p.CreatedAt, p.UpdatedAt)

	_, err = s.ProductBySKU("NOPE")
	require.ErrorIs(t, err, ErrNotFound)

	// SKUs are unique.
	_, err = s.CreateProduct("test", "P001", "dup", "Tools", 1, 1, 1, 0, 0)
	require.Error(t, err)
}

func TestUpdateProductField(t *testing.T) {
	s := newTestStore(t)
	addProduct(t, s, "P001", 50, 10)

	require.NoError(t, s.UpdateProductField("test", "P001", "price", 11.5))
	require.NoError(t, s.UpdateProductField("test", "P001", "category", "Garden"))

	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 11.5, p.Price)
	require.Equal(t, "Garden", p.Category)

	// Only whitelisted columns may be named.
	require.Error(t, s.UpdateProductField("test", "P001", "sku", "P999"))
	require.Error(t, s.UpdateProductField("test", "P001", "id; DROP TABLE products", 1))

	require.ErrorIs(t, s.UpdateProductField("test", "NOPE", "price", 1.0), ErrNotFound)
}

func TestQuantityOps(t *testing.T) {
	s := newTestStore(t)
	addProduct(t, s, "P001", 50, 10)

	require.NoError(t, s.SetQuantity("test", "P001", 20))
	require.Error(t, s.SetQuantity("test", "P001", -1))
	require.ErrorIs(t, s.SetQuantity("test", "NOPE", 5), ErrNotFound)

	require.NoError(t, s.AdjustQuantity("test", "P001", -5))
	require.NoError(t, s.AdjustQuantity("test", "P001", 3))

	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 18, p.Quantity)
}

func TestRecordSaleReturn(t *testing.T) {
	s := newTestStore(t)
	id := addProduct(t, s, "P001", 10, 2)

	require.NoError(t, s.RecordSale("test", "P001", 3))
	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 7, p.Quantity)
	require.Equal(t, 3, p.ItemsSoldCount)

	total, err := s.SalesTotalSince(id, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 3, total)

	// Insufficient stock, non-positive quantity, unknown SKU.
	require.Error(t, s.RecordSale("test", "P001", 100))
	require.Error(t, s.RecordSale("test", "P001", 0))
	require.ErrorIs(t, s.RecordSale("test", "NOPE", 1), ErrNotFound)

	// Returns add stock back and floor the sold counter at zero.
	require.NoError(t, s.RecordReturn("test", "P001", 5))
	p, err = s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 12, p.Quantity)
	require.Equal(t, 0, p.ItemsSoldCount)
	require.Error(t, s.RecordReturn("test", "P001", 0))

	// Returned units are not new sales.
	total, err = s.SalesTotalSince(id, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 3, total)
}

func TestSalesTotalSinceWindow(t *testing.T) {
	s := newTestStore(t)
	id := addProduct(t, s, "P001", 100, 0)

	require.NoError(t, s.RecordSale("test", "P001", 4))
	require.NoError(t, s.RecordSale("test", "P001", 6))
	// Push the first sale outside a 7-day window.
	require.NoError(t, s.BackdateSale(1, time.Now().Add(-10*24*time.Hour)))

	total, err := s.SalesTotalSince(id, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 6, total)

	total, err = s.SalesTotalSince(id, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 10, total)
}

func TestListProducts(t *testing.T) {
	s := newTestStore(t)
	addProduct(t, s, "P002", 1, 0)
	addProduct(t, s, "P001", 2, 0)
	addProduct(t, s, "P003", 3, 0)
	require.NoError(t, s.UpdateProductField("test", "P003", "is_active", 0))

	all, err := s.ListProducts()
	require.NoError(t, err)
	require.Equal(t, 3, all.Len())
	// Ordered by SKU.
	require.Equal(t, "P001", all.Get(0, Product{}).SKU)
	require.Equal(t, "P003", all.Get(-1, Product{}).SKU)

	active, err := s.ActiveProducts()
	require.NoError(t, err)
	require.Equal(t, 2, active.Len())
	require.False(t, active.Contains(all.Get(-1, Product{})))
}

func TestSetters(t *testing.T) {
	s := newTestStore(t)
	addProduct(t, s, "P001", 1, 0)

	require.NoError(t, s.SetReviewsCount("test", "P001", 42))
	require.NoError(t, s.SetItemsSoldCount("test", "P001", 7))
	require.NoError(t, s.SetDiscountRate("test", "P001", 0.25))

	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 42, p.ReviewsCount)
	require.Equal(t, 7, p.ItemsSoldCount)
	require.Equal(t, 0.25, p.DiscountRate)

	require.Error(t, s.SetReviewsCount("test", "P001", -1))
	require.Error(t, s.SetItemsSoldCount("test", "P001", -1))
	require.Error(t, s.SetDiscountRate("test", "P001", 1.5))
	require.Error(t, s.SetDiscountRate("test", "P001", -0.1))
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	s := newTestStore(t)
	id := addProduct(t, s, "P001", 5, 10)

	open, err := s.HasOpenPurchaseOrder(id)
	require.NoError(t, err)
	require.False(t, open)

	poID, err := s.CreatePurchaseOrder("test", id, 20)
	require.NoError(t, err)
	_, err = s.CreatePurchaseOrder("test", id, 0)
	require.Error(t, err)

	open, err = s.HasOpenPurchaseOrder(id)
	require.NoError(t, err)
	require.True(t, open)

	pos, err := s.ListPurchaseOrders("")
	require.NoError(t, err)
	require.Equal(t, 1, pos.Len())
	po := pos.Get(0, PurchaseOrder{})
	require.Equal(t, poID, po.ID)
	require.Equal(t, "P001", po.SKU)
	require.Equal(t, POStatusDraft, po.Status)

	// Receiving the full order adds its quantity to stock.
	require.NoError(t, s.ReceivePurchaseOrder("test", poID, 0))
	p, err := s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 25, p.Quantity)

	open, err = s.HasOpenPurchaseOrder(id)
	require.NoError(t, err)
	require.False(t, open)

	received, err := s.ListPurchaseOrders(POStatusReceived)
	require.NoError(t, err)
	require.Equal(t, 1, received.Len())
	drafts, err := s.ListPurchaseOrders(POStatusDraft)
	require.NoError(t, err)
	require.Equal(t, 0, drafts.Len())

	// Double receive and unknown id fail.
	require.Error(t, s.ReceivePurchaseOrder("test", poID, 0))
	require.ErrorIs(t, s.ReceivePurchaseOrder("test", 999, 0), ErrNotFound)

	// Partial receive.
	poID2, err := s.CreatePurchaseOrder("test", id, 20)
	require.NoError(t, err)
	require.NoError(t, s.ReceivePurchaseOrder("test", poID2, 5))
	p, err = s.ProductBySKU("P001")
	require.NoError(t, err)
	require.Equal(t, 30, p.Quantity)
}

func TestAuditTrail(t *testing.T) {
	s := newTestStore(t)
	n0, err := s.AuditCount()
	require.NoError(t, err)
	require.Equal(t, 0, n0)

	id := addProduct(t, s, "P001", 10, 2)
	require.NoError(t, s.RecordSale("test", "P001", 1))
	require.NoError(t, s.SetQuantity("test", "P001", 4))
	poID, err := s.CreatePurchaseOrder("test", id, 3)
	require.NoError(t, err)
	require.NoError(t, s.ReceivePurchaseOrder("test", poID, 0))

	// Every write above appended exactly one audit row.
	n, err := s.AuditCount()
	require.NoError(t, err)
	require.Equal(t, 5, n)
}
