package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/iter"
)

// AllSources selects every registered source.
const AllSources = "all"

// ErrUnknownSource is returned when a source name is not registered.
var ErrUnknownSource = errors.New("unknown task source")

// Repository aggregates tasks from named sources.
type Repository struct {
	mu      sync.RWMutex
	sources []Source
}

// NewRepository returns a repository over the given sources.
func NewRepository(sources ...Source) *Repository {
	r := &Repository{}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source, replacing any source with the same name in place.
func (r *Repository) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sources {
		if existing.Name() == s.Name() {
			r.sources[i] = s
			return
		}
	}
	r.sources = append(r.sources, s)
}

// Names lists registered source names in registration order.
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Tasks returns the tasks of the named source, or of every source in
// registration order when name is "all". Sources are read concurrently.
func (r *Repository) Tasks(ctx context.Context, name string) ([]Task, error) {
	r.mu.RLock()
	var selected []Source
	for _, s := range r.sources {
		if name == AllSources || s.Name() == name {
			selected = append(selected, s)
		}
	}
	r.mu.RUnlock()

	if len(selected) == 0 {
		if name == AllSources {
			return []Task{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}

	perSource, err := iter.MapErr(selected, func(s *Source) ([]Task, error) {
		tasks, err := (*s).Tasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", (*s).Name(), err)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	out := []Task{}
	for _, tasks := range perSource {
		out = append(out, tasks...)
	}
	return out, nil
}

// StaticSource serves a fixed task list.
type StaticSource struct {
	name  string
	tasks []Task
}

// NewStaticSource returns a source over tasks.
func NewStaticSource(name string, tasks []Task) *StaticSource {
	return &StaticSource{name: name, tasks: tasks}
}

// Name returns the source name.
func (s *StaticSource) Name() string {
	return s.name
}

// Tasks returns a copy of the fixed list.
func (s *StaticSource) Tasks(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

var _ Source = (*StaticSource)(nil)
