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

package rules

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile/stockpile/container"
	"github.com/stockpile/stockpile/internal/store"
)

func seedRanked(t *testing.T, s *store.Store) {
	t.Helper()
	for _, p := range []struct {
		sku      string
		reviews  int
		sold     int
		discount float64
	}{
		{"A", 100, 50, 0.5},
		{"B", 50, 25, 0.25},
		{"C", 0, 0, 0},
	} {
		_, err := s.CreateProduct("test", p.sku, "Widget "+p.sku, "Tools", 10, 8, 12, 30, 10)
		require.NoError(t, err)
		require.NoError(t, s.SetReviewsCount("test", p.sku, p.reviews))
		require.NoError(t, s.SetItemsSoldCount("test", p.sku, p.sold))
		require.NoError(t, s.SetDiscountRate("test", p.sku, p.discount))
	}
}

func popOrder(t *testing.T, h *container.Heap[RankedProduct]) []string {
	t.Helper()
	var skus []string
	for h.Len() > 0 {
		rp, err := h.Pop()
		require.NoError(t, err)
		skus = append(skus, rp.Product.SKU)
	}
	return skus
}

func TestPopularityHeap(t *testing.T) {
	s := newTestStore(t)
	seedRanked(t, s)

	h, err := BuildPopularityHeap(s, 0.5, 0.4, 0.1)
	require.NoError(t, err)
	require.Equal(t, 3, h.Len())

	// A has every metric at the cohort max, C at the min.
	top, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, "A", top.Product.SKU)
	require.Equal(t, 1.0, top.Score)
	require.Equal(t, []string{"A", "B", "C"}, popOrder(t, h))
}

func TestPopularityHeapTieBreak(t *testing.T) {
	s := newTestStore(t)
	for _, sku := range []string{"Z", "M", "A"} {
		_, err := s.CreateProduct("test", sku, "Widget", "Tools", 10, 8, 12, 1, 0)
		require.NoError(t, err)
	}

	// Identical metrics score identically; ties order by SKU.
	h, err := BuildPopularityHeap(s, 0.5, 0.4, 0.1)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "M", "Z"}, popOrder(t, h))
}

func TestDiscountHeap(t *testing.T) {
	s := newTestStore(t)
	seedRanked(t, s)

	h, err := BuildDiscountHeap(s)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, popOrder(t, h))

	top, err := BuildDiscountHeap(s)
	require.NoError(t, err)
	rp, ok := top.Peek()
	require.True(t, ok)
	require.Equal(t, 0.5, rp.Score)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteReport(t *testing.T) {
	s := newTestStore(t)
	seedRanked(t, s)
	// Pull A below its reorder level so the low_stock flag fires.
	require.NoError(t, s.SetQuantity("test", "A", 5))
	require.NoError(t, s.RecordSale("test", "A", 2))

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteReport(s, path, 7, 0.5, 0.4, 0.1))

	records := readCSV(t, path)
	require.Len(t, records, 4)
	require.Equal(t, reportHeader, records[0])

	bySKU := make(map[string][]string)
	for _, r := range records[1:] {
		require.Len(t, r, len(reportHeader))
		bySKU[r[0]] = r
	}

	a := bySKU["A"]
	require.Equal(t, "Widget A", a[1])
	require.Equal(t, "1", a[11], "low_stock")
	require.Equal(t, "1", a[13], "popularity_rank")
	require.Equal(t, "1", a[15], "discount_rank")

	c := bySKU["C"]
	require.Equal(t, "0", c[11], "low_stock")
	require.Equal(t, "3", c[13], "popularity_rank")
	require.Equal(t, "0.0000", c[12], "sales_velocity_per_day")
}

func TestWriteReportEmpty(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteReport(s, path, 7, 0.5, 0.4, 0.1))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	require.Equal(t, reportHeader, records[0])
}
