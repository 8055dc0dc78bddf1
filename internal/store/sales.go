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
	"time"

	"github.com/cockroachdb/errors"
)

// SalesTotalSince returns the total number of units of a product sold at or
// after the cutoff. Timestamps are compared as strings, which is sound
// because the stored format sorts chronologically.
func (s *Store) SalesTotalSince(productID int64, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(quantity), 0) FROM sales WHERE product_id = ? AND created_at >= ?",
		productID, timeStr(cutoff)).Scan(&total)
	return total, errors.Wrap(err, "sum sales")
}

// BackdateSale shifts a sale's timestamp, keyed by rowid order of insertion.
// It exists for tests that need sales outside the velocity window.
func (s *Store) BackdateSale(saleID int64, to time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("UPDATE sales SET created_at = ? WHERE id = ?", timeStr(to), saleID)
	return errors.Wrap(err, "backdate sale")
}
