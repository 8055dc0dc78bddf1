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

// Command stockpile administers the inventory database: product CRUD, sales
// and returns, purchase order receiving, the automated reorder and pricing
// rules, and CSV exports.
package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/stockpile/stockpile/internal/store"
)

// actor tags audit trail rows written on behalf of CLI invocations.
const actor = "cli"

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "stockpile",
	Short:         "Inventory management CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// withStore opens the database, runs fn, and closes it again. Every
// subcommand goes through here.
func withStore(fn func(s *store.Store) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func setupLogging() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		"%{time:15:04:05.000} %{level:.4s} %{module} %{message}")
	logging.SetBackend(logging.NewBackendFormatter(backend, format))
	logging.SetLevel(logging.INFO, "")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "stockpile.db",
		"path to the SQLite database")

	rootCmd.AddCommand(
		initCmd,
		addProductCmd,
		listCmd,
		listPOsCmd,
		setQtyCmd,
		saleCmd,
		returnCmd,
		setPriceCmd,
		setCategoryCmd,
		setReviewsCmd,
		setSoldCmd,
		setDiscountCmd,
		receivePOCmd,
		runRulesCmd,
		exportCSVCmd,
		reportCmd,
		queuesCmd,
	)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and apply the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			fmt.Println("Database initialized.")
			return nil
		})
	},
}

func main() {
	setupLogging()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
