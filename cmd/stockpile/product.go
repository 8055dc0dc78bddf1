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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stockpile/stockpile/container"
	"github.com/stockpile/stockpile/internal/store"
)

var addProductFlags struct {
	sku          string
	name         string
	category     string
	price        float64
	minPrice     float64
	maxPrice     float64
	quantity     int
	reorderLevel int
}

var addProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Add a new product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &addProductFlags
		return withStore(func(s *store.Store) error {
			id, err := s.CreateProduct(actor, f.sku, f.name, f.category,
				f.price, f.minPrice, f.maxPrice, f.quantity, f.reorderLevel)
			if err != nil {
				return err
			}
			fmt.Printf("Product %s created (id %d).\n", f.sku, id)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			products, err := s.ListProducts()
			if err != nil {
				return err
			}
			if products.Len() == 0 {
				fmt.Println("No products found.")
				return nil
			}
			printProducts(products)
			return nil
		})
	},
}

func printProducts(products *container.Array[store.Product]) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"ID", "SKU", "Name", "Category", "Price", "Min", "Max",
		"Qty", "Reorder", "Active", "Promo", "Updated",
	})
	products.All(func(_ int, p store.Product) bool {
		table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.SKU,
			p.Name,
			p.Category,
			fmt.Sprintf("%.2f", p.Price),
			fmt.Sprintf("%.2f", p.MinPrice),
			fmt.Sprintf("%.2f", p.MaxPrice),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.ReorderLevel),
			strconv.FormatBool(p.IsActive),
			strconv.FormatBool(p.IsPromoActive),
			p.UpdatedAt,
		})
		return true
	})
	table.Render()
}

var listPOsStatus string

var listPOsCmd = &cobra.Command{
	Use:   "list-pos",
	Short: "List purchase orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			pos, err := s.ListPurchaseOrders(listPOsStatus)
			if err != nil {
				return err
			}
			if pos.Len() == 0 {
				fmt.Println("No purchase orders found.")
				return nil
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "SKU", "Qty", "Status", "Created", "Updated"})
			pos.All(func(_ int, po store.PurchaseOrder) bool {
				table.Append([]string{
					strconv.FormatInt(po.ID, 10),
					po.SKU,
					strconv.Itoa(po.Quantity),
					po.Status,
					po.CreatedAt,
					po.UpdatedAt,
				})
				return true
			})
			table.Render()
			return nil
		})
	},
}

// skuQtyCmd builds the shape shared by set-qty, sale, and return: a SKU plus
// a quantity.
func skuQtyCmd(use, short, done string, fn func(s *store.Store, sku string, qty int) error) *cobra.Command {
	var sku string
	var qty int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := fn(s, sku, qty); err != nil {
					return err
				}
				fmt.Println(done)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().IntVar(&qty, "qty", 0, "quantity")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

var setQtyCmd = skuQtyCmd("set-qty", "Set product quantity", "Quantity set.",
	func(s *store.Store, sku string, qty int) error {
		return s.SetQuantity(actor, sku, qty)
	})

var saleCmd = skuQtyCmd("sale", "Record a sale", "Sale recorded.",
	func(s *store.Store, sku string, qty int) error {
		return s.RecordSale(actor, sku, qty)
	})

var returnCmd = skuQtyCmd("return", "Record a return", "Return recorded.",
	func(s *store.Store, sku string, qty int) error {
		return s.RecordReturn(actor, sku, qty)
	})

// fieldCmd builds a command that sets one product field by SKU.
func fieldCmd(use, short, flagName, field string) *cobra.Command {
	var sku, value string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.UpdateProductField(actor, sku, field, value); err != nil {
					return err
				}
				fmt.Printf("%s updated.\n", field)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().StringVar(&value, flagName, "", short)
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired(flagName)
	return cmd
}

var setPriceCmd = func() *cobra.Command {
	var sku string
	var price float64
	cmd := &cobra.Command{
		Use:   "set-price",
		Short: "Set product price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.UpdateProductField(actor, sku, "price", price); err != nil {
					return err
				}
				fmt.Println("Price updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().Float64Var(&price, "price", 0, "new price")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}()

var setCategoryCmd = fieldCmd("set-category", "Set product category", "category", "category")

var setReviewsCmd = func() *cobra.Command {
	var sku string
	var count int
	cmd := &cobra.Command{
		Use:   "set-reviews",
		Short: "Set reviews_count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.SetReviewsCount(actor, sku, count); err != nil {
					return err
				}
				fmt.Println("reviews_count updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().IntVar(&count, "count", 0, "review count")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}()

var setSoldCmd = func() *cobra.Command {
	var sku string
	var count int
	cmd := &cobra.Command{
		Use:   "set-sold",
		Short: "Set items_sold_count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.SetItemsSoldCount(actor, sku, count); err != nil {
					return err
				}
				fmt.Println("items_sold_count updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().IntVar(&count, "count", 0, "sold count")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}()

var setDiscountCmd = func() *cobra.Command {
	var sku string
	var rate float64
	cmd := &cobra.Command{
		Use:   "set-discount",
		Short: "Set discount_rate (0-1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.SetDiscountRate(actor, sku, rate); err != nil {
					return err
				}
				fmt.Println("discount_rate updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().Float64Var(&rate, "rate", 0, "discount rate")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}()

var receivePOCmd = func() *cobra.Command {
	var poID int64
	var qty int
	cmd := &cobra.Command{
		Use:   "receive-po",
		Short: "Receive a purchase order into stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.ReceivePurchaseOrder(actor, poID, qty); err != nil {
					return err
				}
				fmt.Println("Purchase order received.")
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&poID, "id", 0, "purchase order id")
	cmd.Flags().IntVar(&qty, "qty", 0, "quantity received (0 receives the full order)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}()

var exportCSVPath string

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export the product table to CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			products, err := s.ListProducts()
			if err != nil {
				return err
			}
			if err := exportProductsCSV(exportCSVPath, products); err != nil {
				return err
			}
			fmt.Printf("Exported %d products to %s\n", products.Len(), exportCSVPath)
			return nil
		})
	},
}

func exportProductsCSV(path string, products *container.Array[store.Product]) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %q", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "sku", "name", "category", "price", "min_price", "max_price",
		"quantity", "reorder_level", "is_active", "is_promo_active",
		"items_sold_count", "reviews_count", "discount_rate",
		"created_at", "updated_at",
	}); err != nil {
		return errors.Wrap(err, "write header")
	}

	var loopErr error
	products.All(func(_ int, p store.Product) bool {
		loopErr = w.Write([]string{
			strconv.FormatInt(p.ID, 10),
			p.SKU,
			p.Name,
			p.Category,
			strconv.FormatFloat(p.Price, 'g', -1, 64),
			strconv.FormatFloat(p.MinPrice, 'g', -1, 64),
			strconv.FormatFloat(p.MaxPrice, 'g', -1, 64),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.ReorderLevel),
			boolCol(p.IsActive),
			boolCol(p.IsPromoActive),
			strconv.Itoa(p.ItemsSoldCount),
			strconv.Itoa(p.ReviewsCount),
			strconv.FormatFloat(p.DiscountRate, 'g', -1, 64),
			p.CreatedAt,
			p.UpdatedAt,
		})
		return loopErr == nil
	})
	if loopErr != nil {
		return errors.Wrap(loopErr, "write record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return errors.Wrapf(f.Close(), "close %q", path)
}

func boolCol(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func init() {
	f := addProductCmd.Flags()
	f.StringVar(&addProductFlags.sku, "sku", "", "product SKU")
	f.StringVar(&addProductFlags.name, "name", "", "product name")
	f.StringVar(&addProductFlags.category, "category", "", "product category")
	f.Float64Var(&addProductFlags.price, "price", 0, "current price")
	f.Float64Var(&addProductFlags.minPrice, "min-price", 0, "price floor")
	f.Float64Var(&addProductFlags.maxPrice, "max-price", 0, "price ceiling")
	f.IntVar(&addProductFlags.quantity, "quantity", 0, "initial stock")
	f.IntVar(&addProductFlags.reorderLevel, "reorder-level", 0, "reorder threshold")
	for _, name := range []string{"sku", "name", "category", "price", "min-price", "max-price"} {
		_ = addProductCmd.MarkFlagRequired(name)
	}

	listPOsCmd.Flags().StringVar(&listPOsStatus, "status", "",
		"filter by status (draft, submitted, received)")

	exportCSVCmd.Flags().StringVar(&exportCSVPath, "path", "", "output file path")
	_ = exportCSVCmd.MarkFlagRequired("path")
}
