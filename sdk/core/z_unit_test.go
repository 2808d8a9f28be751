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

package core

import (
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.Roll() != c2.Roll() {
		t.Fatalf("Roll mismatch")
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(3))
	c.Uint64()
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	want := c.Uint64()

	r := New(Default().New(99))
	if err := r.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if got := r.Uint64(); got != want {
		t.Fatalf("restore mismatch: %d vs %d", got, want)
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal([]int{1, 2, 3, 4}, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}

func TestChanceBounds(t *testing.T) {
	c := New(Default().New(5))
	for i := 0; i < 100; i++ {
		if c.Chance(0) {
			t.Fatalf("p=0 must be false")
		}
		if !c.Chance(1) {
			t.Fatalf("p=1 must be true")
		}
	}
	hits := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if c.Chance(0.25) {
			hits++
		}
	}
	if r := float64(hits) / n; r < 0.23 || r > 0.27 {
		t.Fatalf("chance rate %.4f far from 0.25", r)
	}
}

func TestRollAndCrashPointRange(t *testing.T) {
	c := New(Default().New(11))
	above2 := 0
	const n = 20000
	for i := 0; i < n; i++ {
		r := c.Roll()
		if r < 0 || r >= 100 {
			t.Fatalf("roll out of range: %v", r)
		}
		p := c.CrashPoint(0.01)
		if p < 1 {
			t.Fatalf("crash point < 1: %v", p)
		}
		if p >= 2 {
			above2++
		}
	}
	// P(point >= 2) = 0.495
	if r := float64(above2) / n; r < 0.47 || r > 0.52 {
		t.Fatalf("crash >= 2 rate %.4f", r)
	}
}

func TestPCG64Bounds(t *testing.T) {
	p := Default().New(21)
	if p.IntN(0) != -1 || p.IntN(-3) != -1 {
		t.Fatalf("IntN on non-positive max should be -1")
	}
	if p.UintN(0) != 0 {
		t.Fatalf("UintN(0) should be 0")
	}
	seen := make([]bool, 13)
	for i := 0; i < 2000; i++ {
		n := p.IntN(13)
		if n < 0 || n >= 13 {
			t.Fatalf("IntN out of range: %d", n)
		}
		seen[n] = true
		if f := p.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
	if slices.Contains(seen, false) {
		t.Fatalf("IntN(13) missed a value: %v", seen)
	}
}
