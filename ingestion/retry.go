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

package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// Backoff controls how a failed storage write is retried. The wait before
// retry n (counting from zero) is BaseDelay << n.
type Backoff struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultBackoff is used by importers created without WithRetry.
var DefaultBackoff = Backoff{Attempts: 3, BaseDelay: 100 * time.Millisecond}

// Retry calls op until it returns nil, the attempts are used up, or ctx is
// done. It returns op's last error, or ctx.Err() when cancelled.
func (b Backoff) Retry(ctx context.Context, logger *slog.Logger, op func() error) error {
	if b.Attempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	for n := range b.Attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		switch {
		case err == nil:
			if n > 0 {
				logger.Debug("write recovered", "attempt", n+1)
			}
			return nil
		case n == b.Attempts-1:
			logger.Debug("write failed, giving up", "attempts", b.Attempts, "err", err)
			return err
		}

		wait := b.BaseDelay << n
		logger.Debug("write failed, retrying", "attempt", n+1, "wait", wait, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}
