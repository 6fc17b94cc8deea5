package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBuffers issues each write through the queue in order and stops at the first failure.
//
// Parameters:
//   - queue: the queue used for the writes
//   - writes: the writes to apply
//
// Returns:
//   - error: error if a binding has no buffer or the queue rejects a write
func WriteBuffers(queue gpu.Queue, writes ...BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("%w %d in %q", ErrMissingResource, w.Binding, w.Provider.Label())
		}
		if err := queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("failed to write %q binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}
