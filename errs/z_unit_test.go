// Copyright 2025 Zintix Labs
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

package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatchesThroughWrap(t *testing.T) {
	base := Insufficientf("need %d", 10)
	wrapped := fmt.Errorf("round 3: %w", Wrap(base, "debit failed"))

	if !errors.Is(wrapped, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance through wrap chain")
	}
	if errors.Is(wrapped, ErrExecutorFailure) {
		t.Fatalf("kind must not match a different sentinel")
	}
	if got := KindOf(wrapped); got != KindInsufficientBalance {
		t.Fatalf("KindOf got %v", got)
	}
}

func TestWrapForeignErrorIsFatal(t *testing.T) {
	e := Wrap(errors.New("io"), "read")
	if e.ErrLv != Fatal {
		t.Fatalf("foreign cause must be fatal, got %s", ErrLv(e.ErrLv))
	}
	if e.Kind != KindNone {
		t.Fatalf("foreign cause must have no kind")
	}
	k := WrapKind(errors.New("boom"), KindExecutorFailure, "round")
	if !errors.Is(k, ErrExecutorFailure) {
		t.Fatalf("WrapKind must set kind")
	}
}

func TestPlainErrorNeverMatchesSentinel(t *testing.T) {
	if errors.Is(NewWarn("x"), ErrInvalidConfig) {
		t.Fatalf("kind-less error must not match")
	}
	if got := Invalidf("bad %s", "cfg").Error(); got != "errlv=warn kind=invalid_config bad cfg" {
		t.Fatalf("unexpected message %q", got)
	}
}
