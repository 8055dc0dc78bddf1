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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockpile/stockpile/internal/rules"
	"github.com/stockpile/stockpile/internal/store"
)

var pricingParams = rules.DefaultPricingParams()

var runRulesCmd = &cobra.Command{
	Use:   "run-rules",
	Short: "Run the reorder and dynamic pricing rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			created, err := rules.RunReorder(s, actor)
			if err != nil {
				return err
			}
			changes, err := rules.RunDynamicPricing(s, actor, pricingParams)
			if err != nil {
				return err
			}

			if created.Len() == 0 {
				fmt.Println("No reorder POs created.")
			} else {
				fmt.Println("Reorder POs created:")
				created.All(func(_ int, r rules.ReorderResult) bool {
					fmt.Printf("  %s: PO %d for qty %d\n", r.SKU, r.POID, r.Quantity)
					return true
				})
			}
			if changes.Len() == 0 {
				fmt.Println("No price changes.")
			} else {
				fmt.Println("Price changes:")
				changes.All(func(_ int, c rules.PriceChange) bool {
					fmt.Printf("  %s: %v -> %v (%s)\n", c.SKU, c.OldPrice, c.NewPrice, c.Reason)
					return true
				})
			}
			return nil
		})
	},
}

var reportFlags struct {
	path      string
	days      int
	wReviews  float64
	wSold     float64
	wDiscount float64
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the analytics report CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &reportFlags
		return withStore(func(s *store.Store) error {
			if err := rules.WriteReport(s, f.path, f.days, f.wReviews, f.wSold, f.wDiscount); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", f.path)
			return nil
		})
	},
}

var queuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "Display popularity and discount rankings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &reportFlags
		return withStore(func(s *store.Store) error {
			pop, err := rules.BuildPopularityHeap(s, f.wReviews, f.wSold, f.wDiscount)
			if err != nil {
				return err
			}
			fmt.Println("Popularity priority order (highest score first):")
			for rank := 1; pop.Len() > 0; rank++ {
				rp, err := pop.Pop()
				if err != nil {
					return err
				}
				p := rp.Product
				fmt.Printf("  %d. %s | %s | score=%.4f | reviews=%d | sold=%d | discount=%.2f\n",
					rank, p.SKU, p.Name, rp.Score, p.ReviewsCount, p.ItemsSoldCount, p.DiscountRate)
			}

			disc, err := rules.BuildDiscountHeap(s)
			if err != nil {
				return err
			}
			fmt.Println("Discount order (deepest discount first):")
			for rank := 1; disc.Len() > 0; rank++ {
				rp, err := disc.Pop()
				if err != nil {
					return err
				}
				fmt.Printf("  %d. %s | %s | discount=%.2f\n",
					rank, rp.Product.SKU, rp.Product.Name, rp.Score)
			}
			return nil
		})
	},
}

func init() {
	f := runRulesCmd.Flags()
	f.IntVar(&pricingParams.Days, "days", pricingParams.Days, "velocity window in days")
	f.Float64Var(&pricingParams.Increase, "increase", pricingParams.Increase, "fractional markup")
	f.Float64Var(&pricingParams.Decrease, "decrease", pricingParams.Decrease, "fractional markdown")
	f.Float64Var(&pricingParams.HighVelocity, "high-velocity", pricingParams.HighVelocity,
		"velocity above which demand is high")
	f.Float64Var(&pricingParams.LowVelocity, "low-velocity", pricingParams.LowVelocity,
		"velocity below which demand is low")
	f.Float64Var(&pricingParams.HighStockMultiplier, "high-stock-mult", pricingParams.HighStockMultiplier,
		"high stock is reorder_level times this")

	for _, cmd := range []*cobra.Command{reportCmd, queuesCmd} {
		fl := cmd.Flags()
		fl.Float64Var(&reportFlags.wReviews, "w-reviews", 0.5, "weight for review count")
		fl.Float64Var(&reportFlags.wSold, "w-sold", 0.4, "weight for sold count")
		fl.Float64Var(&reportFlags.wDiscount, "w-discount", 0.1, "weight for discount rate")
	}
	reportCmd.Flags().IntVar(&reportFlags.days, "days", 7, "velocity window in days")
	reportCmd.Flags().StringVar(&reportFlags.path, "path", "", "output file path")
	_ = reportCmd.MarkFlagRequired("path")
}
