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

// Package rules holds the automated inventory policies: reorder point
// replenishment and velocity-driven dynamic pricing, plus the analytics
// rankings and CSV reporting built on top of them.
package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/op/go-logging"

	"github.com/stockpile/stockpile/container"
	"github.com/stockpile/stockpile/internal/store"
)

var log = logging.MustGetLogger("rules")

// SalesVelocity returns the average units sold per day for a product over the
// trailing window of the given number of days. A product with no sales in the
// window has velocity zero.
func SalesVelocity(s *store.Store, productID int64, days int) (float64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	total, err := s.SalesTotalSince(productID, cutoff)
	if err != nil {
		return 0, err
	}
	return float64(total) / float64(days), nil
}

// OrderQuantity decides how many units to order to cover targetDays of
// projected demand, never less than reorderLevel.
func OrderQuantity(currentQty, reorderLevel int, velocity float64, targetDays int) int {
	target := int(math.Round(math.Max(velocity*float64(targetDays)-float64(currentQty), float64(reorderLevel))))
	if target < reorderLevel {
		return reorderLevel
	}
	return target
}

// ReorderResult describes a purchase order created by the reorder rule.
type ReorderResult struct {
	SKU      string
	POID     int64
	Quantity int
}

// Reorder rule window sizes: demand is estimated over the trailing week and
// the order covers two weeks of it.
const (
	reorderVelocityDays = 7
	reorderTargetDays   = 14
)

// RunReorder scans active products and creates a draft purchase order for
// each one at or below its reorder level, sized to cover two weeks of demand
// at the trailing week's velocity. Products with an open purchase order or a
// zero reorder level are skipped.
func RunReorder(s *store.Store, actor string) (*container.Array[ReorderResult], error) {
	products, err := s.ActiveProducts()
	if err != nil {
		return nil, err
	}

	created := container.NewArray[ReorderResult]()
	var loopErr error
	products.All(func(_ int, p store.Product) bool {
		if p.ReorderLevel <= 0 || p.Quantity > p.ReorderLevel {
			return true
		}
		open, err := s.HasOpenPurchaseOrder(p.ID)
		if err != nil {
			loopErr = err
			return false
		}
		if open {
			return true
		}

		v, err := SalesVelocity(s, p.ID, reorderVelocityDays)
		if err != nil {
			loopErr = err
			return false
		}
		qty := OrderQuantity(p.Quantity, p.ReorderLevel, v, reorderTargetDays)
		poID, err := s.CreatePurchaseOrder(actor, p.ID, qty)
		if err != nil {
			loopErr = err
			return false
		}
		if err := s.Audit(actor, "rule", "product", p.ID,
			fmt.Sprintf("reorder triggered, velocity=%.2f, po_id=%d, qty=%d", v, poID, qty)); err != nil {
			loopErr = err
			return false
		}
		log.Infof("reorder %s: PO %d for qty %d (velocity %.2f)", p.SKU, poID, qty, v)
		created.Append(ReorderResult{SKU: p.SKU, POID: poID, Quantity: qty})
		return true
	})
	if loopErr != nil {
		return nil, loopErr
	}
	return created, nil
}

// PricingParams tunes the dynamic pricing rule.
type PricingParams struct {
	// Days is the velocity window.
	Days int
	// Increase and Decrease are the fractional markup and markdown, e.g.
	// 0.05 for five percent.
	Increase float64
	Decrease float64
	// HighVelocity and LowVelocity are the velocity thresholds that qualify
	// demand as high or low.
	HighVelocity float64
	LowVelocity  float64
	// HighStockMultiplier defines high stock as
	// reorder_level * multiplier.
	HighStockMultiplier float64
}

// DefaultPricingParams returns the standard tuning: a one-week window with
// five percent moves.
func DefaultPricingParams() PricingParams {
	return PricingParams{
		Days:                7,
		Increase:            0.05,
		Decrease:            0.05,
		HighVelocity:        5.0,
		LowVelocity:         1.0,
		HighStockMultiplier: 2.0,
	}
}

// PriceChange describes one price adjustment made by the pricing rule.
type PriceChange struct {
	SKU      string
	OldPrice float64
	NewPrice float64
	Reason   string
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// RunDynamicPricing adjusts prices on the active catalog. Fast-selling,
// understocked products are marked up; slow-selling, overstocked products are
// marked down. Products under an active promotion are left alone, new prices
// are clamped to [min_price, max_price], and changes under one cent are not
// persisted.
func RunDynamicPricing(
	s *store.Store, actor string, params PricingParams,
) (*container.Array[PriceChange], error) {
	products, err := s.ActiveProducts()
	if err != nil {
		return nil, err
	}

	changes := container.NewArray[PriceChange]()
	var loopErr error
	products.All(func(_ int, p store.Product) bool {
		v, err := SalesVelocity(s, p.ID, params.Days)
		if err != nil {
			loopErr = err
			return false
		}

		var highStock float64
		if p.ReorderLevel > 0 {
			highStock = float64(p.ReorderLevel) * params.HighStockMultiplier
		}

		var newPrice float64
		var reason string
		switch {
		case p.IsPromoActive:
			return true
		case p.ReorderLevel > 0 && p.Quantity < p.ReorderLevel && v > params.HighVelocity:
			newPrice = clamp(round2(p.Price*(1+params.Increase)), p.MinPrice, p.MaxPrice)
			reason = "High demand and low stock"
		case float64(p.Quantity) > highStock && v < params.LowVelocity:
			newPrice = clamp(round2(p.Price*(1-params.Decrease)), p.MinPrice, p.MaxPrice)
			reason = "Low demand and high stock"
		default:
			return true
		}

		if math.Abs(newPrice-p.Price) < 0.01 {
			return true
		}
		if err := s.UpdateProductField(actor, p.SKU, "price", newPrice); err != nil {
			loopErr = err
			return false
		}
		if err := s.Audit(actor, "rule", "product", p.ID,
			fmt.Sprintf("dynamic price change from %v to %v due to %s; v=%.2f", p.Price, newPrice, reason, v)); err != nil {
			loopErr = err
			return false
		}
		log.Infof("price %s: %v -> %v (%s)", p.SKU, p.Price, newPrice, reason)
		changes.Append(PriceChange{SKU: p.SKU, OldPrice: p.Price, NewPrice: newPrice, Reason: reason})
		return true
	})
	if loopErr != nil {
		return nil, loopErr
	}
	return changes, nil
}
