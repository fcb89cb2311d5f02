package importer

import "context"

// task is one unit of import work bound to its data row.
type task struct {
	row int
	run func(ctx context.Context)
}

// taskQueue runs tasks strictly one after another in push order. A task is
// awaited before the next starts; tasks never overlap.
type taskQueue struct {
	tasks []task
}

func (q *taskQueue) push(row int, run func(ctx context.Context)) {
	q.tasks = append(q.tasks, task{row: row, run: run})
}

// drain runs the queued tasks. Cancellation is checked between tasks; the
// rows of tasks that never started are returned.
func (q *taskQueue) drain(ctx context.Context) []int {
	for i, t := range q.tasks {
		if ctx.Err() != nil {
			pending := make([]int, 0, len(q.tasks)-i)
			for _, rest := range q.tasks[i:] {
				pending = append(pending, rest.row)
			}
			q.tasks = nil
			return pending
		}
		t.run(ctx)
	}
	q.tasks = nil
	return nil
}
