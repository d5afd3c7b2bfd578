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

package storage

import (
	"fmt"

	"github.com/poiesic/kokushi/core"
)

// MarshalQuestion serializes a Question to bytes.
func MarshalQuestion(q *core.Question) []byte {
	buf := make([]byte, core.QuestionMUS.Size(*q))
	core.QuestionMUS.Marshal(*q, buf)
	return buf
}

// UnmarshalQuestion deserializes a Question from bytes.
func UnmarshalQuestion(data []byte) (*core.Question, error) {
	q, _, err := core.QuestionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: question: %w", ErrSerializationFailed, err)
	}
	return &q, nil
}

// MarshalSynonymGroup serializes a SynonymGroup to bytes.
func MarshalSynonymGroup(g core.SynonymGroup) []byte {
	buf := make([]byte, core.SynonymGroupMUS.Size(g))
	core.SynonymGroupMUS.Marshal(g, buf)
	return buf
}

// UnmarshalSynonymGroup deserializes a SynonymGroup from bytes.
func UnmarshalSynonymGroup(data []byte) (core.SynonymGroup, error) {
	g, _, err := core.SynonymGroupMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: synonym group: %w", ErrSerializationFailed, err)
	}
	return g, nil
}

// MarshalMeta serializes a CorpusMeta to bytes.
func MarshalMeta(meta *core.CorpusMeta) []byte {
	buf := make([]byte, core.CorpusMetaMUS.Size(*meta))
	core.CorpusMetaMUS.Marshal(*meta, buf)
	return buf
}

// UnmarshalMeta deserializes a CorpusMeta from bytes.
func UnmarshalMeta(data []byte) (*core.CorpusMeta, error) {
	meta, _, err := core.CorpusMetaMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus meta: %w", ErrSerializationFailed, err)
	}
	return &meta, nil
}
