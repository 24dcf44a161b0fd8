// internal/tasks/task.go
//
// Task registry for background jobs.
//
// A **Task** is a named function run by a Worker when a Message with the
// same name arrives on the queue.  Tasks register on a Registry at start-up;
// NewRegistry pre-registers the built-ins (currently only "dummy").
//
// Args are the JSON-decoded positional arguments carried by the message.
// Tasks must treat them defensively: a missing index is a task error, not a
// panic.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Args are positional task arguments.
type Args []any

// At returns the i-th argument or nil.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Task does the work for one message.  Returning an error marks the run as
// failed; the message is not retried.
type Task func(ctx context.Context, args Args) error

// Registry maps task names to implementations.  Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry returns a registry holding the built-in tasks.
func NewRegistry() *Registry {
	r := &Registry{tasks: map[string]Task{}}
	r.Register(DummyName, Dummy)
	return r
}

// Register adds or replaces name.
func (r *Registry) Register(name string, t Task) {
	r.mu.Lock()
	r.tasks[name] = t
	r.mu.Unlock()
}

// Lookup returns the task or (nil, false).
func (r *Registry) Lookup(name string) (Task, bool) {
	r.mu.RLock()
	t, ok := r.tasks[name]
	r.mu.RUnlock()
	return t, ok
}

// Names lists registered tasks in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DummyName is the registry key of Dummy.
const DummyName = "dummy"

// Dummy logs its two arguments.  Used to check the queue end to end.
func Dummy(_ context.Context, args Args) error {
	if len(args) < 2 {
		return fmt.Errorf("dummy: want 2 args, got %d", len(args))
	}
	zap.S().Infow("dummy task", "arg1", args.At(0), "arg2", args.At(1))
	return nil
}
