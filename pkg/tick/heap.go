package tick

// regHeap orders registrations by fire time; registrations that become
// ready at the same instant keep registration (sequence) order. Implements
// container/heap so Cancel can remove by index in O(log n).
type regHeap []*registration

func (h regHeap) Len() int { return len(h) }

func (h regHeap) Less(i, j int) bool {
	if !h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].fireAt.Before(h[j].fireAt)
	}
	return h[i].seq < h[j].seq
}

func (h regHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *regHeap) Push(x any) {
	r := x.(*registration)
	r.index = len(*h)
	*h = append(*h, r)
}

func (h *regHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*h = old[:n-1]
	return r
}
