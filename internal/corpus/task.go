// Package corpus holds the work items that activity statements are matched
// against, and the sources they are loaded from.
package corpus

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// UnknownSource is the source recorded for tasks that do not name one.
const UnknownSource = "unknown"

// Task is a known work item from a tracker.
type Task struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Status      string   `json:"status" yaml:"status" toml:"status"`
	Project     string   `json:"project" yaml:"project" toml:"project"`
	Assignee    string   `json:"assignee,omitempty" yaml:"assignee,omitempty" toml:"assignee"`
	Tags        []string `json:"tags" yaml:"tags" toml:"tags"`
	Source      string   `json:"source" yaml:"source" toml:"source"`
}

// NewTask builds a task with no tags and an unknown source.
func NewTask(id, title, description, status, project string) Task {
	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		Project:     project,
	}
	t.normalize()
	return t
}

// Text is the title and description joined, the text compared semantically.
func (t Task) Text() string {
	if t.Description == "" {
		return t.Title
	}
	return t.Title + " " + t.Description
}

func (t *Task) normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Source == "" {
		t.Source = UnknownSource
	}
}

// taskFields has Task's fields without its methods so decoding does not recurse.
type taskFields Task

// UnmarshalJSON decodes a task and fills in empty tags and source.
func (t *Task) UnmarshalJSON(data []byte) error {
	var f taskFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = Task(f)
	t.normalize()
	return nil
}

// UnmarshalYAML decodes a task and fills in empty tags and source.
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	var f taskFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*t = Task(f)
	t.normalize()
	return nil
}
