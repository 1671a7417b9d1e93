// Copyright 2025 Tom Barlow
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

package formula

// Identifier is a name referenced somewhere in a composite program, paired
// with the Definition that backs it when the name is itself a defined
// formula. Definition is nil for names the adapter resolved to a context
// member or a built-in instead.
type Identifier struct {
	Name       string
	Definition *Definition
}
