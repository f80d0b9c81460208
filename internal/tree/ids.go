package tree

// NodeID is a stable handle to a node inside one Tree's arena.
// Handles are 1-based; the zero value is never a live node.
type NodeID uint32

// NoNode is the invalid handle.
const NoNode NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNode }
