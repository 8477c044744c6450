// Package tasks owns the authoritative in-memory task list of a session. The list only
// changes after the remote service confirms a mutation.
package tasks

import (
	"context"
	"sync"

	"taskpad/internal/api"
	"taskpad/internal/logging"
	"taskpad/internal/model"

	"github.com/sirupsen/logrus"
)

// Remote is the subset of the api client the collection needs.
type Remote interface {
	ListTasks(ctx context.Context) api.Result[[]model.Task]
	GetTask(ctx context.Context, id string) api.Result[model.Task]
	CreateTask(ctx context.Context, in model.TaskInput) api.Result[model.Task]
	UpdateTask(ctx context.Context, id string, in model.TaskInput) api.Result[model.Task]
	DeleteTask(ctx context.Context, id string) api.Result[api.Ack]
}

// Collection is safe for concurrent use. Tasks are replaced copy-on-write, so a snapshot
// returned by Tasks never changes underneath the caller. Mutations on the same task id
// run one at a time, in the order they were issued.
type Collection struct {
	remote Remote
	log    logrus.FieldLogger

	loadMu sync.Mutex

	mu     sync.RWMutex
	tasks  []*model.Task
	stats  model.Stats
	loaded bool

	locksMu sync.Mutex
	locks   map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func NewCollection(remote Remote, log logrus.FieldLogger) *Collection {
	if log == nil {
		log = logging.Discard()
	}
	return &Collection{
		remote: remote,
		log:    log,
		stats:  ComputeStats(nil),
		locks:  map[string]*idLock{},
	}
}

// lockID serializes mutations per task id. Entries are dropped when unused.
func (c *Collection) lockID(id string) func() {
	c.locksMu.Lock()
	l := c.locks[id]
	if l == nil {
		l = &idLock{}
		c.locks[id] = l
	}
	l.refs++
	c.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.locksMu.Unlock()
	}
}

func (c *Collection) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Load fetches the list once. Later calls are no-ops; use Reload to refetch.
func (c *Collection) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.Loaded() {
		return nil
	}
	return c.fetch(ctx)
}

// Reload refetches the full list. On failure the previous list is kept.
func (c *Collection) Reload(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.fetch(ctx)
}

func (c *Collection) fetch(ctx context.Context) error {
	res := c.remote.ListTasks(ctx)
	if !res.OK() {
		c.log.WithError(res.Err()).Warn("load tasks failed")
		return res.Err()
	}
	data := res.Data()
	next := make([]*model.Task, 0, len(data))
	seen := make(map[string]bool, len(data))
	for i := range data {
		t := data[i]
		if t.ID != "" && seen[t.ID] {
			c.log.WithField("task", t.ID).Warn("server returned duplicate task id")
		}
		seen[t.ID] = true
		next = append(next, &t)
	}
	c.mu.Lock()
	c.tasks = next
	c.stats = ComputeStats(next)
	c.loaded = true
	c.mu.Unlock()
	c.log.WithField("count", len(next)).Debug("tasks loaded")
	return nil
}

// Reset drops the list, e.g. after logout.
func (c *Collection) Reset() {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.mu.Lock()
	c.tasks = nil
	c.stats = ComputeStats(nil)
	c.loaded = false
	c.mu.Unlock()
}

// Tasks returns a snapshot of the list in server order.
func (c *Collection) Tasks() []*model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Collection) Stats() model.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.stats
	st.Categories = make(map[model.Category]int, len(c.stats.Categories))
	for k, v := range c.stats.Categories {
		st.Categories[k] = v
	}
	return st
}

// Find returns the local task with id.
func (c *Collection) Find(id string) (*model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Get fetches one task from the remote service; the local list is not touched.
func (c *Collection) Get(ctx context.Context, id string) (model.Task, error) {
	return c.remote.GetTask(ctx, id).Unwrap()
}

// replace swaps the task with t.ID for t; it reports whether a local match existed.
func (c *Collection) replace(t model.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(t.ID)
	if idx < 0 {
		return false
	}
	next := make([]*model.Task, len(c.tasks))
	copy(next, c.tasks)
	next[idx] = &t
	c.tasks = next
	c.stats = ComputeStats(next)
	return true
}

// patchStatus sets the status on the current local copy of id; the lookup and the swap
// happen under one lock so a concurrent Reload is never overwritten by a stale copy.
func (c *Collection) patchStatus(id string, status model.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return false
	}
	t := *c.tasks[idx]
	t.Status = status
	next := make([]*model.Task, len(c.tasks))
	copy(next, c.tasks)
	next[idx] = &t
	c.tasks = next
	c.stats = ComputeStats(next)
	return true
}

func (c *Collection) indexLocked(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// SetStatus sends a status-only update and applies it locally once confirmed.
func (c *Collection) SetStatus(ctx context.Context, id string, status model.Status) error {
	unlock := c.lockID(id)
	defer unlock()

	res := c.remote.UpdateTask(ctx, id, model.TaskInput{Status: &status})
	entry := c.log.WithFields(logrus.Fields{"task": id, "status": string(status)})
	if !res.OK() {
		entry.WithError(res.Err()).Warn("set status failed")
		return res.Err()
	}
	c.patchStatus(id, status)
	entry.Info("task status changed")
	return nil
}

// Delete removes the task remotely, then locally.
func (c *Collection) Delete(ctx context.Context, id string) error {
	unlock := c.lockID(id)
	defer unlock()

	res := c.remote.DeleteTask(ctx, id)
	if !res.OK() {
		c.log.WithError(res.Err()).WithField("task", id).Warn("delete task failed")
		return res.Err()
	}
	c.mu.Lock()
	if idx := c.indexLocked(id); idx >= 0 {
		next := make([]*model.Task, 0, len(c.tasks)-1)
		next = append(next, c.tasks[:idx]...)
		next = append(next, c.tasks[idx+1:]...)
		c.tasks = next
		c.stats = ComputeStats(next)
	}
	c.mu.Unlock()
	c.log.WithField("task", id).Info("task deleted")
	return nil
}

// Create appends the server's copy of the new task.
func (c *Collection) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	res := c.remote.CreateTask(ctx, in)
	if !res.OK() {
		c.log.WithError(res.Err()).Warn("create task failed")
		return model.Task{}, res.Err()
	}
	t := res.Data()
	if !c.replace(t) {
		c.mu.Lock()
		next := make([]*model.Task, len(c.tasks), len(c.tasks)+1)
		copy(next, c.tasks)
		cp := t
		c.tasks = append(next, &cp)
		c.stats = ComputeStats(c.tasks)
		c.mu.Unlock()
	}
	c.log.WithField("task", t.ID).Info("task created")
	return t, nil
}

// Update sends a partial update and replaces the local task with the server's copy.
func (c *Collection) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	unlock := c.lockID(id)
	defer unlock()

	res := c.remote.UpdateTask(ctx, id, in)
	if !res.OK() {
		c.log.WithError(res.Err()).WithField("task", id).Warn("update task failed")
		return model.Task{}, res.Err()
	}
	t := res.Data()
	if t.ID == "" {
		// Server acknowledged without echoing the task.
		if cur, ok := c.Find(id); ok {
			t = in.Apply(*cur)
		} else {
			t = in.Apply(model.Task{ID: id})
		}
	}
	c.replace(t)
	c.log.WithField("task", id).Info("task updated")
	return t, nil
}
