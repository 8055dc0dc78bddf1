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
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/stockpile/stockpile/container"
	"github.com/stockpile/stockpile/internal/store"
)

// RankedProduct pairs a product with the score that ranks it.
type RankedProduct struct {
	Score   float64
	Product store.Product
}

// rankedLess orders higher scores first, breaking ties by SKU so the pop
// order is total.
func rankedLess(a, b RankedProduct) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Product.SKU < b.Product.SKU
}

func minMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// normalize maps value into [0, 1] within [lo, hi], returning 0 for a
// degenerate range.
func normalize(value, lo, hi float64) float64 {
	if hi-lo <= 0 {
		return 0
	}
	return (value - lo) / (hi - lo)
}

// BuildPopularityHeap ranks the active catalog by a weighted blend of
// normalized review count, sold count, and discount rate. The returned heap
// pops the most popular product first.
func BuildPopularityHeap(
	s *store.Store, wReviews, wSold, wDiscount float64,
) (*container.Heap[RankedProduct], error) {
	products, err := s.ActiveProducts()
	if err != nil {
		return nil, err
	}

	// Normalization bounds are computed within the cohort, so a score only
	// means something relative to the other active products.
	revs := make([]float64, 0, products.Len())
	solds := make([]float64, 0, products.Len())
	discs := make([]float64, 0, products.Len())
	products.All(func(_ int, p store.Product) bool {
		revs = append(revs, float64(p.ReviewsCount))
		solds = append(solds, float64(p.ItemsSoldCount))
		discs = append(discs, p.DiscountRate)
		return true
	})
	rlo, rhi := minMax(revs)
	slo, shi := minMax(solds)
	dlo, dhi := minMax(discs)

	ranked := make([]RankedProduct, 0, products.Len())
	products.All(func(_ int, p store.Product) bool {
		score := wReviews*normalize(float64(p.ReviewsCount), rlo, rhi) +
			wSold*normalize(float64(p.ItemsSoldCount), slo, shi) +
			wDiscount*normalize(p.DiscountRate, dlo, dhi)
		ranked = append(ranked, RankedProduct{Score: score, Product: p})
		return true
	})
	return container.HeapifyFunc(ranked, rankedLess), nil
}

// BuildDiscountHeap ranks the active catalog by discount rate, deepest
// discount first.
func BuildDiscountHeap(s *store.Store) (*container.Heap[RankedProduct], error) {
	products, err := s.ActiveProducts()
	if err != nil {
		return nil, err
	}
	ranked := make([]RankedProduct, 0, products.Len())
	products.All(func(_ int, p store.Product) bool {
		ranked = append(ranked, RankedProduct{Score: p.DiscountRate, Product: p})
		return true
	})
	return container.HeapifyFunc(ranked, rankedLess), nil
}

type rankEntry struct {
	rank  int
	score float64
}

// drainRanks pops the heap empty, assigning 1-based ranks by SKU.
func drainRanks(h *container.Heap[RankedProduct]) (*container.Dict[string, rankEntry], error) {
	ranks := container.NewDict[string, rankEntry]()
	for rank := 1; h.Len() > 0; rank++ {
		rp, err := h.Pop()
		if err != nil {
			return nil, err
		}
		ranks.Set(rp.Product.SKU, rankEntry{rank: rank, score: rp.Score})
	}
	return ranks, nil
}

var reportHeader = []string{
	"sku", "name", "category", "price", "min_price", "max_price",
	"discount_rate", "reviews_count", "items_sold_count",
	"quantity", "reorder_level", "low_stock", "sales_velocity_per_day",
	"popularity_rank", "popularity_score", "discount_rank", "discount_value",
}

// WriteReport writes a CSV report over the active catalog: identifiers,
// pricing, inventory signals, the trailing sales velocity, and the popularity
// and discount ranks. An empty catalog produces a header-only file.
func WriteReport(
	s *store.Store, path string, days int, wReviews, wSold, wDiscount float64,
) error {
	products, err := s.ActiveProducts()
	if err != nil {
		return err
	}
	popHeap, err := BuildPopularityHeap(s, wReviews, wSold, wDiscount)
	if err != nil {
		return err
	}
	popRanks, err := drainRanks(popHeap)
	if err != nil {
		return err
	}
	discHeap, err := BuildDiscountHeap(s)
	if err != nil {
		return err
	}
	discRanks, err := drainRanks(discHeap)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create report %q", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return errors.Wrap(err, "write header")
	}

	var loopErr error
	products.All(func(_ int, p store.Product) bool {
		v, err := SalesVelocity(s, p.ID, days)
		if err != nil {
			loopErr = err
			return false
		}
		lowStock := 0
		if p.ReorderLevel > 0 && p.Quantity <= p.ReorderLevel {
			lowStock = 1
		}
		pop, _ := popRanks.Lookup(p.SKU)
		disc, _ := discRanks.Lookup(p.SKU)

		record := []string{
			p.SKU,
			p.Name,
			p.Category,
			formatFloat(p.Price),
			formatFloat(p.MinPrice),
			formatFloat(p.MaxPrice),
			formatFloat(p.DiscountRate),
			strconv.Itoa(p.ReviewsCount),
			strconv.Itoa(p.ItemsSoldCount),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.ReorderLevel),
			strconv.Itoa(lowStock),
			fmt.Sprintf("%.4f", v),
			strconv.Itoa(pop.rank),
			fmt.Sprintf("%.6f", pop.score),
			strconv.Itoa(disc.rank),
			fmt.Sprintf("%.6f", disc.score),
		}
		if err := w.Write(record); err != nil {
			loopErr = errors.Wrap(err, "write record")
			return false
		}
		return true
	})
	if loopErr != nil {
		return loopErr
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flush report")
	}
	return errors.Wrapf(f.Close(), "close report %q", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
