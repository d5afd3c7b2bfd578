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

// Package storage provides the storage abstraction layer for an imported
// question corpus.
//
// The search engine works on an in-memory corpus; this package persists what
// the importer wrote so that later runs can rebuild that corpus without
// re-reading the static assets:
//
//   - QuestionRepository: questions keyed by ID
//   - SynonymRepository: the synonym dictionary, in dictionary order
//   - MetaRepository: corpus metadata and the fingerprint of the import
//
// Records are encoded with the mus codecs from package core.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	questions, synonyms, meta, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
