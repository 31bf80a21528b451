package batch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"xorm.io/xorm"

	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
	cachepkg "mail_trans_engine/pkg/cache"
)

type fakeProvider struct {
	submitted   [][]ProviderLine
	submitErr   error
	status      *ProviderStatus
	statusCalls int
	results     []ProviderResult
}

func (f *fakeProvider) Submit(ctx context.Context, lines []ProviderLine) (string, error) {
	f.submitted = append(f.submitted, lines)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "prov-1", nil
}

func (f *fakeProvider) Status(ctx context.Context, providerJobId string) (*ProviderStatus, error) {
	f.statusCalls++
	return f.status, nil
}

func (f *fakeProvider) Results(ctx context.Context, outputFileId string) ([]ProviderResult, error) {
	return f.results, nil
}

type fakeCache struct {
	entries map[string]string
}

func (f *fakeCache) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	v, ok := f.entries[fingerprint]
	return v, ok, nil
}

func (f *fakeCache) Put(ctx context.Context, entry cachepkg.Entry, translated string) error {
	f.entries[entry.Fingerprint] = translated
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(blackhole{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type blackhole struct{}

func (blackhole) Write(p []byte) (int, error) { return len(p), nil }

func testManager(t *testing.T) (*Manager, *xorm.Engine, *fakeProvider, *fakeCache) {
	t.Helper()
	db, err := xorm.NewEngine("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Sync(
		new(tables.BatchJob), new(tables.BatchItem), new(tables.TranslationUnit)))

	provider := &fakeProvider{}
	c := &fakeCache{entries: map[string]string{}}
	return NewManager(db, provider, c, quiet()), db, provider, c
}

func TestCorrelationIdRoundTrip(t *testing.T) {
	jobId := "4f1c2a9e-0000-0000-0000-000000000001"
	itemId := "4f1c2a9e-0000-0000-0000-000000000002"

	jobOut, itemOut, err := parseCorrelationId(correlationId(jobId, itemId))
	require.NoError(t, err)
	assert.Equal(t, jobId, jobOut)
	assert.Equal(t, itemId, itemOut)
}

func TestParseCorrelationIdMalformed(t *testing.T) {
	for _, customId := range []string{"", "no-separator", ":missing-job", "missing-item:"} {
		_, _, err := parseCorrelationId(customId)
		assert.Error(t, err, "custom id %q", customId)
	}
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"validating", tables.BatchStatusInProgress},
		{"in_progress", tables.BatchStatusInProgress},
		{"finalizing", tables.BatchStatusInProgress},
		{"completed", tables.BatchStatusEnded},
		{"failed", tables.BatchStatusFailed},
		{"expired", tables.BatchStatusExpired},
		{"cancelled", tables.BatchStatusCanceled},
		{"cancelling", tables.BatchStatusCanceled},
		{"something-new", tables.BatchStatusInProgress},
	}
	for _, tt := range tests {
		if got := mapProviderStatus(tt.provider); got != tt.want {
			t.Errorf("mapProviderStatus(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, status := range []string{
		tables.BatchStatusEnded, tables.BatchStatusFailed,
		tables.BatchStatusExpired, tables.BatchStatusCanceled,
	} {
		assert.True(t, terminal(status), status)
	}
	for _, status := range []string{
		tables.BatchStatusPending, tables.BatchStatusSubmitted, tables.BatchStatusInProgress,
	} {
		assert.False(t, terminal(status), status)
	}
}

func TestParseResults(t *testing.T) {
	jsonl := strings.Join([]string{
		`{"custom_id":"job-1:item-1","response":{"status_code":200,"body":{"choices":[{"message":{"role":"assistant","content":"Hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}}}`,
		``,
		`{"custom_id":"job-1:item-2","error":{"code":"rate_limited","message":"too many requests"}}`,
		`{"custom_id":"job-1:item-3","response":{"status_code":500,"body":{}}}`,
	}, "\n")

	results, err := parseResults(strings.NewReader(jsonl))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "job-1:item-1", results[0].CustomId)
	assert.Equal(t, "Hello", results[0].Translated)
	assert.Equal(t, 12, results[0].PromptTokens)
	assert.Equal(t, 3, results[0].CompletionTokens)
	assert.Empty(t, results[0].Err)

	assert.Equal(t, "too many requests", results[1].Err)
	assert.Empty(t, results[1].Translated)

	assert.NotEmpty(t, results[2].Err)
}

func TestParseResultsMalformedLineIsIsolated(t *testing.T) {
	jsonl := "{not json}\n" +
		`{"custom_id":"job-1:item-2","response":{"status_code":200,"body":{"choices":[{"message":{"content":"Danke"}}]}}}`

	results, err := parseResults(strings.NewReader(jsonl))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Err)
	assert.Equal(t, "Danke", results[1].Translated)
}

func TestSubmitFailureMarksJobFailed(t *testing.T) {
	m, _, provider, _ := testManager(t)
	provider.submitErr = errors.New("rate limited")

	_, err := m.Submit(context.Background(), []models.BatchUnit{
		{Text: "hola", TargetLang: "en"},
	})
	require.Error(t, err)

	jobIds, err := m.OpenJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobIds, "a failed submit must not leave an open job behind")
}

func TestSubmitPollHarvestFlow(t *testing.T) {
	m, db, provider, c := testManager(t)
	ctx := context.Background()

	unitId := "unit-1"
	_, err := db.Insert(&tables.TranslationUnit{
		Id: unitId, Body: "hola", TargetLang: "en",
		Status: tables.UnitStatusPending,
	})
	require.NoError(t, err)

	jobId, err := m.Submit(ctx, []models.BatchUnit{
		{UnitId: unitId, Text: "hola", SourceLang: "es", TargetLang: "en"},
	})
	require.NoError(t, err)
	require.Len(t, provider.submitted, 1)

	provider.status = &ProviderStatus{Status: "completed", OutputFileId: "file-1"}
	provider.results = []ProviderResult{{
		CustomId:   provider.submitted[0][0].CustomId,
		Translated: "hello",
	}}

	status, err := m.Poll(ctx, jobId)
	require.NoError(t, err)
	assert.Equal(t, tables.BatchStatusEnded, status.Status)
	assert.Equal(t, 1, status.Completed)
	assert.Zero(t, status.Failed)

	unit := tables.TranslationUnit{}
	found, err := db.Where("id = ?", unitId).Get(&unit)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, tables.UnitStatusCompleted, unit.Status)
	assert.Equal(t, "hello", unit.BodyResult)

	fp := cachepkg.Fingerprint("hola", "es", "en", "")
	assert.Equal(t, "hello", c.entries[fp], "harvest seeds the shared cache")
}

func TestPollFailsJobOrphanedMidSubmit(t *testing.T) {
	m, db, provider, _ := testManager(t)
	ctx := context.Background()

	_, err := db.Insert(&tables.BatchJob{
		Id: "job-orphan", Status: tables.BatchStatusPending, TotalItems: 1,
	})
	require.NoError(t, err)
	_, err = db.Exec("UPDATE batch_jobs SET created_at = ? WHERE id = ?",
		time.Now().Add(-time.Hour), "job-orphan")
	require.NoError(t, err)

	jobIds, err := m.OpenJobs(ctx)
	require.NoError(t, err)
	assert.Contains(t, jobIds, "job-orphan", "pending jobs must be reconciled by the poller")

	status, err := m.Poll(ctx, "job-orphan")
	require.NoError(t, err)
	assert.Equal(t, tables.BatchStatusFailed, status.Status)
	assert.Zero(t, provider.statusCalls, "there is no provider job to ask about")
}

func TestPollLeavesFreshPendingJobAlone(t *testing.T) {
	m, db, provider, _ := testManager(t)
	ctx := context.Background()

	_, err := db.Insert(&tables.BatchJob{
		Id: "job-fresh", Status: tables.BatchStatusPending, TotalItems: 1,
	})
	require.NoError(t, err)

	status, err := m.Poll(ctx, "job-fresh")
	require.NoError(t, err)
	assert.Equal(t, tables.BatchStatusPending, status.Status,
		"a submit still in flight must not be failed")
	assert.Zero(t, provider.statusCalls)
}
