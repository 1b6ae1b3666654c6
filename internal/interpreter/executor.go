package interpreter

import "pawscript/internal/object"

// Executor is the single-threaded cooperative scheduler spec.md §5
// requires for async/await: an `async` call enqueues its body as a
// pending task instead of running it immediately, and `await` drains
// the FIFO queue head-to-tail until the future it is waiting on
// resolves. Tasks run to completion once started — the only
// suspension point is `await` itself (spec.md §5 "Suspension points").
//
// Grounded on the teacher's internal/evaluator/scheduler.go
// (Scheduler.runQueue) for the FIFO-dispatch shape, but deliberately
// not wired to goroutines: the teacher's Run spawns `go process.run()`
// per task, which is exactly the OS-thread parallelism spec.md's
// Non-goals exclude (see DESIGN.md).
type Executor struct {
	queue []func()
}

func NewExecutor() *Executor {
	return &Executor{}
}

// Enqueue appends task to the FIFO queue. Called when an async
// function is invoked; task runs the function body and resolves its
// Future when eventually dequeued.
func (e *Executor) Enqueue(task func()) {
	e.queue = append(e.queue, task)
}

// Drain runs queued tasks in FIFO order until fut resolves or the
// queue is exhausted (a deadlock, which the caller turns into a bark).
func (e *Executor) Drain(fut *object.Future) {
	for {
		if _, _, done := fut.Poll(); done {
			return
		}
		if len(e.queue) == 0 {
			return
		}
		task := e.queue[0]
		e.queue = e.queue[1:]
		task()
	}
}
