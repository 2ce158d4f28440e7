// Package workers hands out process-wide worker pools, one per worker count.
// Pools are created on first use and never stopped, so the number of worker
// goroutines is bounded by the distinct sizes requested, however many
// populations and scenes come and go.
package workers

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// QueueSize bounds the tasks queued on a shared pool before SubmitTask blocks.
const QueueSize = 256

var (
	mu    sync.Mutex
	pools = make(map[int]worker.DynamicWorkerPool)
)

// Shared returns the pool with n workers, creating it on first use. Callers
// must not stop it. Tasks from different callers interleave, so callers wait
// on their own sync.WaitGroup rather than on the pool.
//
// Parameters:
//   - n: the number of workers, at least 1
//
// Returns:
//   - worker.DynamicWorkerPool: the shared pool
func Shared(n int) worker.DynamicWorkerPool {
	n = max(n, 1)
	mu.Lock()
	defer mu.Unlock()
	if p, ok := pools[n]; ok {
		return p
	}
	p := worker.NewDynamicWorkerPool(n, QueueSize, 1*time.Second)
	pools[n] = p
	return p
}

// Count returns the number of pools created so far.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return len(pools)
}
