// Copyright 2025 Poiesic Systems
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

// Package search finds exam questions by identifier, facet and keyword.
//
// The Searcher type evaluates a Query in stages:
//   - Full identifiers ("112-B-48") select exactly that question
//   - Text equal to a question ID selects that question
//   - Partial identifiers ("112B", "112", "11") select whole exams
//   - Otherwise facets and synonym-expanded keywords filter the corpus
//
// Identifier stages ignore facets. Keyword matching is substring based over
// folded text (see package normalize), so hiragana and katakana, full-width
// and half-width, and letter case are all interchangeable.
//
// Results are always ordered most recent exam first, then by session and
// question number.
package search
