package tree

// arena is append-only node storage. Indices are 1-based so that the
// zero NodeID stays invalid.
type arena[T any] struct {
	data []T
}

func newArena[T any](capHint uint) *arena[T] {
	return &arena[T]{data: make([]T, 0, capHint)}
}

func (a *arena[T]) alloc(value T) uint32 {
	a.data = append(a.data, value)
	return uint32(len(a.data))
}

func (a *arena[T]) get(index uint32) *T {
	if index == 0 || index > uint32(len(a.data)) {
		return nil
	}
	return &a.data[index-1]
}

func (a *arena[T]) len() uint32 {
	return uint32(len(a.data))
}
