package jpool

// Used returns the number of allocated nodes.
func (p *Pool[I, O]) Used() int {
	return p.used
}

// Cap returns the number of nodes the pool can hold without growing.
func (p *Pool[I, O]) Cap() int {
	return len(p.nodes)
}

// NodeSize returns the size of one node in bytes.
func (p *Pool[I, O]) NodeSize() int {
	return p.lay.nodeSize
}

// Grows returns how many times the pool has reallocated its storage.
func (p *Pool[I, O]) Grows() int {
	return p.grows
}

// Utilization returns the ratio of used to total capacity (0.0 to 1.0).
// Returns 0.0 if the pool has no capacity.
func (p *Pool[I, O]) Utilization() float64 {
	if len(p.nodes) == 0 {
		return 0
	}
	return float64(p.used) / float64(len(p.nodes))
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool[I, O]) Metrics() PoolMetrics {
	return PoolMetrics{
		Used:          p.used,
		Capacity:      len(p.nodes),
		NodeSize:      p.lay.nodeSize,
		BytesInUse:    p.used * p.lay.nodeSize,
		BytesReserved: len(p.nodes) * p.lay.nodeSize,
		InputBytes:    len(p.data),
		Grows:         p.grows,
		Managed:       p.managed,
		Utilization:   p.Utilization(),
	}
}

// PoolMetrics contains statistical information about a pool.
type PoolMetrics struct {
	Used          int     `json:"used"`           // Nodes allocated
	Capacity      int     `json:"capacity"`       // Nodes available without growing
	NodeSize      int     `json:"node_size"`      // Bytes per node
	BytesInUse    int     `json:"bytes_in_use"`   // Used * NodeSize
	BytesReserved int     `json:"bytes_reserved"` // Capacity * NodeSize
	InputBytes    int     `json:"input_bytes"`    // Length of the decoded input
	Grows         int     `json:"grows"`          // Reallocations so far
	Managed       bool    `json:"managed"`        // Pool owns and grows its storage
	Utilization   float64 `json:"utilization"`    // Used / Capacity (0.0-1.0)
}
