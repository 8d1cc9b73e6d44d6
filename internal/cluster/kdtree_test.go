// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

import (
	"math/rand"
	"sort"
	"testing"
)

func randomTree(t *testing.T, n, nodeSize int) (*kdTree, []float64, []float64) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	ids := make([]int, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		ids[i] = i
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}
	return newKDTree(ids, xs, ys, nodeSize), xs, ys
}

func TestKDTreeRangeMatchesBruteForce(t *testing.T) {
	tree, xs, ys := randomTree(t, 2000, 16)

	boxes := [][4]float64{
		{0.1, 0.1, 0.3, 0.4},
		{0, 0, 1, 1},
		{0.5, 0.5, 0.5001, 0.5001},
		{0.9, 0.0, 1.0, 0.2},
	}
	for _, b := range boxes {
		got := tree.rangeQuery(b[0], b[1], b[2], b[3])
		sort.Ints(got)

		var want []int
		for i := range xs {
			if xs[i] >= b[0] && xs[i] <= b[2] && ys[i] >= b[1] && ys[i] <= b[3] {
				want = append(want, i)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("box %v: got %d ids, want %d", b, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("box %v: id %d = %d, want %d", b, i, got[i], want[i])
			}
		}
	}
}

func TestKDTreeWithinMatchesBruteForce(t *testing.T) {
	tree, xs, ys := randomTree(t, 1500, 8)

	for _, q := range [][3]float64{{0.5, 0.5, 0.05}, {0.01, 0.99, 0.2}, {0.3, 0.7, 0}} {
		positions := tree.within(q[0], q[1], q[2])
		got := make([]int, len(positions))
		for i, pos := range positions {
			got[i] = tree.ids[pos]
		}
		sort.Ints(got)

		var want []int
		for i := range xs {
			if sqDist(xs[i], ys[i], q[0], q[1]) <= q[2]*q[2] {
				want = append(want, i)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("query %v: got %d, want %d", q, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("query %v: id %d = %d, want %d", q, i, got[i], want[i])
			}
		}
	}
}

func TestKDTreeEmpty(t *testing.T) {
	tree := newKDTree(nil, nil, nil, 64)
	if got := tree.rangeQuery(0, 0, 1, 1); len(got) != 0 {
		t.Errorf("range on empty tree = %v", got)
	}
	if got := tree.within(0.5, 0.5, 1); len(got) != 0 {
		t.Errorf("within on empty tree = %v", got)
	}
}
