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

package container

// Converter is implemented by containers (and, opt-in, by element types) that
// can materialize themselves into plain Go collections for handoff to
// serialization. Array, Dict, and Heap implement it; conversion recurses into
// element values that implement it themselves.
type Converter interface {
	Convert() any
}

// convertValue converts v through its Converter implementation if it has one,
// and returns v unchanged otherwise.
func convertValue(v any) any {
	if c, ok := v.(Converter); ok {
		return c.Convert()
	}
	return v
}
