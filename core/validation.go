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


package core

import (
	"fmt"
	"strings"
)

// ValidateQuestion validates a Question according to domain rules.
//
// Validation rules:
//   - QuestionText must not be empty
//   - at least one choice must be present
//   - Answer must not be empty unless IsExcluded is set
//   - Session must be one of A-D
//   - ID must equal FormatID(Year, Session, Number), compared case-insensitively
//
// NOT validated (optional classification):
//   - Category, Subcategory, Keywords, Explanation
func ValidateQuestion(q *Question) error {
	if q == nil {
		return fmt.Errorf("%w: question is nil", ErrInvalidQuestion)
	}

	if q.QuestionText == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuestion, q.ID, ErrEmptyQuestionText)
	}

	if len(q.Choices) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuestion, q.ID, ErrNoChoices)
	}

	if q.Answer == "" && !q.IsExcluded {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuestion, q.ID, ErrMissingAnswer)
	}

	if !q.Session.Valid() {
		return fmt.Errorf("%w: %s: %w: %q", ErrInvalidQuestion, q.ID, ErrInvalidSession, q.Session)
	}

	if !strings.EqualFold(q.ID, FormatID(q.Year, q.Session, q.Number)) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuestion, q.ID, ErrInconsistentID)
	}

	return nil
}
