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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuestion indicates a Question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrEmptyQuestionText indicates the QuestionText field is empty.
	ErrEmptyQuestionText = errors.New("question text cannot be empty")

	// ErrNoChoices indicates the question has no choices.
	ErrNoChoices = errors.New("question must have at least one choice")

	// ErrMissingAnswer indicates the answer is empty and the question is not excluded.
	ErrMissingAnswer = errors.New("answer cannot be empty unless the question is excluded")

	// ErrInvalidSession indicates an unrecognized session code.
	ErrInvalidSession = errors.New("invalid session")

	// ErrInconsistentID indicates the ID does not match (year, session, number).
	ErrInconsistentID = errors.New("id does not match year, session and number")

	// ErrTruncatedData indicates an encoded record ended early.
	ErrTruncatedData = errors.New("truncated data")
)
