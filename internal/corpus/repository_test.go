package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ name string }

func (f failingSource) Name() string { return f.name }

func (f failingSource) Tasks(context.Context) ([]Task, error) {
	return nil, errors.New("tracker offline")
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestRepository_Tasks(t *testing.T) {
	repo := NewRepository(
		NewStaticSource("azure", []Task{NewTask("AZ-1", "a", "", "", "")}),
		NewStaticSource("github", []Task{NewTask("#7", "g", "", "", ""), NewTask("#8", "h", "", "", "")}),
		NewStaticSource("jira", []Task{NewTask("PROJ-1", "j", "", "", "")}),
	)
	ctx := context.Background()

	tests := []struct {
		source  string
		wantIDs []string
		wantErr error
	}{
		{source: "azure", wantIDs: []string{"AZ-1"}},
		{source: "github", wantIDs: []string{"#7", "#8"}},
		{source: AllSources, wantIDs: []string{"AZ-1", "#7", "#8", "PROJ-1"}},
		{source: "gitlab", wantErr: ErrUnknownSource},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tasks, err := repo.Tasks(ctx, tt.source)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(tasks))
		})
	}
}

func TestRepository_RegisterReplacesByName(t *testing.T) {
	repo := NewRepository(NewStaticSource("jira", []Task{NewTask("OLD-1", "", "", "", "")}))
	repo.Register(NewStaticSource("github", nil))
	repo.Register(NewStaticSource("jira", []Task{NewTask("NEW-1", "", "", "", "")}))

	assert.Equal(t, []string{"jira", "github"}, repo.Names())
	tasks, err := repo.Tasks(context.Background(), "jira")
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW-1"}, ids(tasks))
}

func TestRepository_EmptyAndFailing(t *testing.T) {
	tasks, err := NewRepository().Tasks(context.Background(), AllSources)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	repo := NewRepository(NewStaticSource("jira", nil), failingSource{name: "azure"})
	_, err = repo.Tasks(context.Background(), AllSources)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source azure")
}
