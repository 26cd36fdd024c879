package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/types"
)

type fakeStatusStore struct {
	statuses    []types.JobStatus
	completed   bool
	templateKey string
	contextKey  string
}

func (s *fakeStatusStore) Create(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	return &types.JobStatusRecord{JobId: jobId, Status: types.JobStatusPending}, nil
}
func (s *fakeStatusStore) UpdateStatus(ctx context.Context, jobId string, status types.JobStatus, message string) error {
	s.statuses = append(s.statuses, status)
	return nil
}
func (s *fakeStatusStore) UpdateCompletion(ctx context.Context, jobId, templateKey, contextKey string) error {
	s.completed = true
	s.templateKey = templateKey
	s.contextKey = contextKey
	return nil
}
func (s *fakeStatusStore) UpdateError(ctx context.Context, jobId, errorMessage string) error {
	s.statuses = append(s.statuses, types.JobStatusFailed)
	return nil
}
func (s *fakeStatusStore) Get(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	return nil, nil
}

func TestWorkerHandle_ProducesTemplateAndContext(t *testing.T) {
	store := &fakeObjectStore{files: map[string][]byte{}}
	statusStore := &fakeStatusStore{}
	w := &Worker{Store: store, StatusStore: statusStore}

	parseResult := types.ParseResult{
		TemplateJson: types.TemplateJson{
			SectionHierarchy: types.SectionHierarchy{Sections: []types.Section{{SectionTitle: "Intro", PlaceholderId: "p1"}}},
		},
		ContentSections: []types.ContentSection{
			{PlaceholderId: "p1", SectionTitle: "Intro", SampleText: "This is a wonderful, formal introduction.", WordCount: 6},
		},
	}
	data, err := json.Marshal(parseResult)
	require.NoError(t, err)
	store.files["parsed/job-1/parse-result.json"] = data

	job := types.AnalysisJob{JobId: "job-1", ParseResultKey: "parsed/job-1/parse-result.json", DocumentType: types.DocumentTypeDocx}
	body, _ := json.Marshal(job)

	err = w.Handle(context.Background(), "job-1", body)
	require.NoError(t, err)

	assert.True(t, statusStore.completed)
	assert.Equal(t, "results/job-1/template.json", statusStore.templateKey)
	assert.Equal(t, "results/job-1/context.json", statusStore.contextKey)
	assert.Contains(t, statusStore.statuses, types.JobStatusAnalysisInProgress)

	var context types.ContextJson
	require.NoError(t, json.Unmarshal(store.files["results/job-1/context.json"], &context))
	require.Len(t, context.ContentBlocks, 1)
	assert.Equal(t, 6, context.ContentBlocks[0].WordCount)
	assert.NotEmpty(t, context.LinguisticStyle.OverallFormality)
}

func TestWorkerHandle_MissingParseResult(t *testing.T) {
	store := &fakeObjectStore{files: map[string][]byte{}}
	statusStore := &fakeStatusStore{}
	w := &Worker{Store: store, StatusStore: statusStore}

	job := types.AnalysisJob{JobId: "job-2", ParseResultKey: "parsed/job-2/parse-result.json"}
	body, _ := json.Marshal(job)

	err := w.Handle(context.Background(), "job-2", body)
	require.Error(t, err)
	assert.False(t, statusStore.completed)
}
