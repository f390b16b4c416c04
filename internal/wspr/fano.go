package wspr

import "container/heap"

/*
 * Sequential decoder (C7). This substitutes the stack/Jelinek variant that
 * spec.md §4.7 explicitly allows in place of the threshold-based Fano
 * algorithm: a best-first search over the code trellis, ordered by a
 * running Fano-style path metric (branch correlation minus a fixed bias per
 * bit), expanding the two children of the best partial path each step. The
 * 31-bit flush tail is known to be zero (spec.md §4.1), so the search only
 * ever branches over the 50 payload bits; the tail is appended
 * deterministically once a path reaches that depth. See DESIGN.md for why
 * this variant was chosen over literal Fano backtracking.
 */

// MetricBias is the per-bit metric bias subtracted at every trellis step,
// following spec.md §4.7's guidance of bias ≈ 0.45·metric_range.
const MetricBias = 0.45 * 2 * MetricClamp

type fanoNode struct {
	parent int
	bit    uint8
	state  uint32 // encoder shift register contents after this bit
	depth  int
	metric float64
}

type nodeHeap struct {
	pool  []fanoNode
	items []int
}

func (h *nodeHeap) Len() int { return len(h.items) }
func (h *nodeHeap) Less(i, j int) bool {
	return h.pool[h.items[i]].metric > h.pool[h.items[j]].metric
}
func (h *nodeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *nodeHeap) Push(x interface{}) {
	h.items = append(h.items, x.(int))
}
func (h *nodeHeap) Pop() interface{} {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}

func branchMetric(expectedBit uint8, metric float64) float64 {
	if expectedBit == 1 {
		return metric
	}
	return -metric
}

func (h *nodeHeap) expand(parentIdx int, bit uint8, metrics [NumSymbols]float64) int {
	parent := h.pool[parentIdx]
	sr := (parent.state << 1) | uint32(bit)
	b0 := parity32(sr & Poly0)
	b1 := parity32(sr & Poly1)

	k := parent.depth
	m0 := metrics[2*k]
	m1 := metrics[2*k+1]
	inc := branchMetric(b0, m0) + branchMetric(b1, m1) - MetricBias

	h.pool = append(h.pool, fanoNode{
		parent: parentIdx,
		bit:    bit,
		state:  sr,
		depth:  k + 1,
		metric: parent.metric + inc,
	})
	return len(h.pool) - 1
}

// extendTail appends the 31 known-zero tail bits deterministically,
// returning the index of the resulting depth-InfoBits node.
func (h *nodeHeap) extendTail(idx int, metrics [NumSymbols]float64) int {
	cur := idx
	for h.pool[cur].depth < InfoBits {
		cur = h.expand(cur, 0, metrics)
	}
	return cur
}

// reconstruct walks the parent chain from a depth-InfoBits node back to the
// root, producing the 81 recovered information+tail bits packed into an
// 88-bit buffer (the trailing 7 bits are left zero).
func reconstruct(pool []fanoNode, idx int) [BufferBytes]byte {
	var bits [InfoBits]uint8
	for i := idx; pool[i].parent != -1; i = pool[i].parent {
		bits[pool[i].depth-1] = pool[i].bit
	}

	var buf [BufferBytes]byte
	for i, b := range bits {
		if b == 1 {
			byteIdx := i / 8
			bitIdx := uint(7 - i%8)
			buf[byteIdx] |= 1 << bitIdx
		}
	}
	return buf
}

// hammingDistance returns the number of positions at which the symbol
// arrays a and b differ.
func hammingDistance(a, b [NumSymbols]uint8) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// maxHammingDistance is the tight tolerance spec.md §4.7 allows between the
// re-encoded parity stream and the receiver's hard-decision metrics before a
// candidate decode is rejected (roughly 10% of the 162 symbol positions).
const maxHammingDistance = 16

// FanoDecode implements C7: runs the best-first sequential decoder against
// the soft metrics produced by C6 (in encoder encounter order), returning
// the recovered 88-bit buffer (50 payload bits valid) on success.
func FanoDecode(metrics [NumSymbols]float64) ([BufferBytes]byte, bool) {
	h := &nodeHeap{pool: []fanoNode{{parent: -1, bit: 0, state: 0, depth: 0, metric: 0}}}
	h.items = append(h.items, 0)
	heap.Init(h)

	var hardBits [NumSymbols]uint8
	for i, m := range metrics {
		if m > 0 {
			hardBits[i] = 1
		}
	}

	cycles := 0
	for h.Len() > 0 {
		cycles++
		if cycles > FanoCycleLimit {
			return [BufferBytes]byte{}, false
		}

		idx := heap.Pop(h).(int)
		node := h.pool[idx]

		if node.depth == InfoBits {
			buf := reconstruct(h.pool, idx)
			reEncoded := convolutionalEncode(buf)
			if hammingDistance(reEncoded, hardBits) <= maxHammingDistance {
				return buf, true
			}
			continue
		}

		if node.depth == PayloadBits {
			terminal := h.extendTail(idx, metrics)
			heap.Push(h, terminal)
			continue
		}

		c0 := h.expand(idx, 0, metrics)
		c1 := h.expand(idx, 1, metrics)
		heap.Push(h, c0)
		heap.Push(h, c1)
	}

	return [BufferBytes]byte{}, false
}
