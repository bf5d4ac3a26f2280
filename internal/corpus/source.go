package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds a corpus file.
const MaxFileSize = 10 * 1024 * 1024

// ErrInvalidCorpus is returned when a corpus file cannot be decoded.
var ErrInvalidCorpus = errors.New("invalid corpus")

// Source supplies the tasks of one tracker.
type Source interface {
	// Name identifies the tracker, e.g. "jira" or "github".
	Name() string
	// Tasks returns the tracker's tasks in a stable order.
	Tasks(ctx context.Context) ([]Task, error)
}

// FileSource reads tasks from a YAML, JSON or TOML file. A YAML or JSON file
// holds either a list of tasks or a mapping with a "tasks" list; a TOML file
// holds a [[tasks]] array of tables.
type FileSource struct {
	name string
	path string
}

// NewFileSource returns a source named name backed by path.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return s.name
}

// Tasks reads and decodes the file on every call. Tasks without a source are
// attributed to this source.
func (s *FileSource) Tasks(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes", ErrInvalidCorpus, s.path, MaxFileSize)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	decode := DecodeTasks
	if strings.EqualFold(filepath.Ext(s.path), ".toml") {
		decode = DecodeTOMLTasks
	}
	tasks, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	for i := range tasks {
		if tasks[i].Source == UnknownSource && s.name != "" {
			tasks[i].Source = s.name
		}
	}
	return tasks, nil
}

// DecodeTasks decodes a YAML or JSON document holding tasks. JSON is read as
// YAML, which is a superset.
func DecodeTasks(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Task{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var tasks []Task
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
		}
	case yaml.MappingNode:
		var doc struct {
			Tasks []Task `yaml:"tasks"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
		}
		tasks = doc.Tasks
	default:
		return nil, fmt.Errorf("%w: expected a list of tasks or a tasks mapping", ErrInvalidCorpus)
	}

	return checkTasks(tasks)
}

// DecodeTOMLTasks decodes a TOML document holding a [[tasks]] array.
func DecodeTOMLTasks(data []byte) ([]Task, error) {
	var doc struct {
		Tasks []Task `toml:"tasks"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
	}
	for i := range doc.Tasks {
		doc.Tasks[i].normalize()
	}
	return checkTasks(doc.Tasks)
}

func checkTasks(tasks []Task) ([]Task, error) {
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrInvalidCorpus, i)
		}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

var _ Source = (*FileSource)(nil)
