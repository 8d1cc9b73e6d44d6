// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

// kdTree is a static 2-d tree over projected points. Items are stored in
// place and partitioned around medians; buckets of nodeSize or fewer items
// are scanned linearly.
type kdTree struct {
	nodeSize int
	ids      []int
	coords   []float64 // x0, y0, x1, y1, ...
}

func newKDTree(ids []int, xs, ys []float64, nodeSize int) *kdTree {
	if nodeSize < 1 {
		nodeSize = 64
	}
	t := &kdTree{
		nodeSize: nodeSize,
		ids:      append([]int(nil), ids...),
		coords:   make([]float64, 2*len(ids)),
	}
	for i := range ids {
		t.coords[2*i] = xs[i]
		t.coords[2*i+1] = ys[i]
	}
	t.build(0, len(ids)-1, 0)
	return t
}

func (t *kdTree) build(left, right, axis int) {
	if right-left <= t.nodeSize {
		return
	}
	m := (left + right) >> 1
	t.selectK(m, left, right, axis)
	t.build(left, m-1, 1-axis)
	t.build(m+1, right, 1-axis)
}

// selectK rearranges [left, right] so that item k is in its sorted position
// along axis, with smaller items before it and larger after.
func (t *kdTree) selectK(k, left, right, axis int) {
	for right > left {
		pivot := t.coords[2*((left+right)>>1)+axis]
		i, j := left, right
		for i <= j {
			for t.coords[2*i+axis] < pivot {
				i++
			}
			for t.coords[2*j+axis] > pivot {
				j--
			}
			if i <= j {
				t.swap(i, j)
				i++
				j--
			}
		}
		switch {
		case k <= j:
			right = j
		case k >= i:
			left = i
		default:
			return
		}
	}
}

func (t *kdTree) swap(i, j int) {
	t.ids[i], t.ids[j] = t.ids[j], t.ids[i]
	t.coords[2*i], t.coords[2*j] = t.coords[2*j], t.coords[2*i]
	t.coords[2*i+1], t.coords[2*j+1] = t.coords[2*j+1], t.coords[2*i+1]
}

// rangeQuery returns ids inside the axis-aligned box.
func (t *kdTree) rangeQuery(minX, minY, maxX, maxY float64) []int {
	var out []int
	if len(t.ids) == 0 {
		return out
	}
	stack := []int{0, len(t.ids) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= t.nodeSize {
			for i := left; i <= right; i++ {
				x, y := t.coords[2*i], t.coords[2*i+1]
				if x >= minX && x <= maxX && y >= minY && y <= maxY {
					out = append(out, t.ids[i])
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := t.coords[2*m], t.coords[2*m+1]
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			out = append(out, t.ids[m])
		}
		if (axis == 0 && minX <= x) || (axis == 1 && minY <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && maxX >= x) || (axis == 1 && maxY >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return out
}

// within returns the positions (not ids) of items within r of (qx, qy).
func (t *kdTree) within(qx, qy, r float64) []int {
	var out []int
	if len(t.ids) == 0 {
		return out
	}
	r2 := r * r
	stack := []int{0, len(t.ids) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= t.nodeSize {
			for i := left; i <= right; i++ {
				if sqDist(t.coords[2*i], t.coords[2*i+1], qx, qy) <= r2 {
					out = append(out, i)
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := t.coords[2*m], t.coords[2*m+1]
		if sqDist(x, y, qx, qy) <= r2 {
			out = append(out, m)
		}
		if (axis == 0 && qx-r <= x) || (axis == 1 && qy-r <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && qx+r >= x) || (axis == 1 && qy+r >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return out
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
