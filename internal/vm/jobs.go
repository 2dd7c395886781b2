package vm

// Job is a queued microtask (a Promise reaction, an async function's
// resumption continuation, ...). Queued in FIFO order and drained between
// turns of the host's event loop (spec.md §4.7 "job queue").
type Job func() error

// JobQueue is a simple FIFO microtask queue. Unlike the teacher's
// goroutine-per-module-instance model, this engine's jobs run
// synchronously on the same goroutine that calls RunJobs, mirroring how a
// single-threaded JS engine drains its microtask checkpoint.
type JobQueue struct {
	pending []Job
}

func NewJobQueue() *JobQueue { return &JobQueue{} }

func (q *JobQueue) Enqueue(j Job) { q.pending = append(q.pending, j) }

func (q *JobQueue) Len() int { return len(q.pending) }

// RunJobs drains the queue, including any jobs newly enqueued while
// running earlier ones, stopping at the first error (surfaced to the host
// as an unhandled-rejection-equivalent condition).
func (vm *VM) RunJobs() error {
	for vm.Jobs.Len() > 0 {
		j := vm.Jobs.pending[0]
		vm.Jobs.pending = vm.Jobs.pending[1:]
		if err := j(); err != nil {
			return err
		}
	}
	return nil
}
