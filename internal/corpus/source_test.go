package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeTasks(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "yaml list",
			input:   "- id: A-1\n  title: one\n- id: A-2\n  title: two\n",
			wantIDs: []string{"A-1", "A-2"},
		},
		{
			name:    "yaml mapping",
			input:   "tasks:\n  - id: B-1\n    title: one\n",
			wantIDs: []string{"B-1"},
		},
		{
			name:    "json list",
			input:   `[{"id":"C-1","title":"one","tags":["x"]}]`,
			wantIDs: []string{"C-1"},
		},
		{
			name:    "json mapping",
			input:   `{"tasks":[{"id":"D-1"},{"id":"D-2"}]}`,
			wantIDs: []string{"D-1", "D-2"},
		},
		{name: "empty document", input: "  \n", wantIDs: []string{}},
		{name: "scalar document", input: "hello", wantErr: true},
		{name: "missing id", input: "- title: orphan\n", wantErr: true},
		{name: "malformed yaml", input: "- id: [unclosed\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := DecodeTasks([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCorpus)
				return
			}
			require.NoError(t, err)
			ids := make([]string, len(tasks))
			for i, task := range tasks {
				ids[i] = task.ID
				assert.NotNil(t, task.Tags)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFileSource_Tasks(t *testing.T) {
	path := writeFile(t, "jira.yaml", "- id: PROJ-1\n  title: one\n- id: PROJ-2\n  title: two\n  source: github\n")
	src := NewFileSource("jira", path)

	tasks, err := src.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "jira", src.Name())
	assert.Equal(t, "jira", tasks[0].Source)
	assert.Equal(t, "github", tasks[1].Source)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource("x", filepath.Join(t.TempDir(), "missing.yaml")).Tasks(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileSource("x", writeFile(t, "ok.yaml", "[]")).Tasks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeTOMLTasks(t *testing.T) {
	tasks, err := DecodeTOMLTasks([]byte(`
[[tasks]]
id = "AUTH-1"
title = "Fix login authentication bug"
status = "In Progress"
tags = ["auth", "sso"]

[[tasks]]
id = "AUTH-2"
title = "Add OAuth2 support"
source = "azure"
`))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "AUTH-1", tasks[0].ID)
	assert.Equal(t, []string{"auth", "sso"}, tasks[0].Tags)
	assert.Equal(t, UnknownSource, tasks[0].Source)
	assert.Equal(t, []string{}, tasks[1].Tags)
	assert.Equal(t, "azure", tasks[1].Source)

	empty, err := DecodeTOMLTasks(nil)
	require.NoError(t, err)
	assert.Equal(t, []Task{}, empty)

	_, err = DecodeTOMLTasks([]byte("[[tasks]]\ntitle = \"no id\"\n"))
	assert.ErrorIs(t, err, ErrInvalidCorpus)

	_, err = DecodeTOMLTasks([]byte("[[tasks]\n"))
	assert.ErrorIs(t, err, ErrInvalidCorpus)
}

func TestFileSource_TOML(t *testing.T) {
	path := writeFile(t, "azure.TOML", "[[tasks]]\nid = \"AB#42\"\ntitle = \"Update user profile page\"\n")

	tasks, err := NewFileSource("azure", path).Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "AB#42", tasks[0].ID)
	assert.Equal(t, "azure", tasks[0].Source)
}
