package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAudit(t *testing.T, dir string) []AuditEvent {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, time.Now().Format("2006-01-02")+"_audit.log"))
	require.NoError(t, err)
	defer f.Close()

	var events []AuditEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e AuditEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e), sc.Text())
		events = append(events, e)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestAudit_WritesJSONLines(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, DebugMode: true}))
	SetRequestID("req-1")
	t.Cleanup(CloseAudit)

	AuditFor(CategoryClone).CloneRun("a.yaml", 3, 1, 2, nil)
	AuditFor(CategoryClone).CloneRun("b.yaml", 0, 0, 1, errors.New("boom"))
	AuditFor(CategoryCache).CacheOp(AuditCacheSet, "profile", nil)
	Audit().PerfMetric("DeepClone a.yaml", 30, 10)
	CloseAudit()

	events := readAudit(t, dir)
	require.Len(t, events, 4)

	assert.Equal(t, AuditCloneRun, events[0].EventType)
	assert.Equal(t, "clone", events[0].Category)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "a.yaml", events[0].Target)
	assert.True(t, events[0].Success)
	assert.Equal(t, float64(3), events[0].Fields["composites"])
	assert.NotZero(t, events[0].Timestamp)

	assert.Equal(t, AuditCloneError, events[1].EventType)
	assert.False(t, events[1].Success)
	assert.Equal(t, "boom", events[1].Error)

	assert.Equal(t, AuditCacheSet, events[2].EventType)
	assert.Equal(t, "cache", events[2].Category)

	assert.Equal(t, AuditPerfSlow, events[3].EventType)
	assert.Empty(t, events[3].Category)
}

func TestAudit_PerfUnderThreshold(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, DebugMode: true}))
	t.Cleanup(CloseAudit)

	Audit().PerfMetric("fast", 1, 10)
	Audit().PerfMetric("unbounded", 500, 0)
	CloseAudit()

	events := readAudit(t, dir)
	require.Len(t, events, 2)
	assert.Equal(t, AuditPerfMetric, events[0].EventType)
	assert.True(t, events[0].Success)
	assert.Equal(t, AuditPerfMetric, events[1].EventType)
}

func TestAudit_NoopOutsideDebugMode(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir}))

	Audit().CacheOp(AuditCacheClear, "", nil)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func BenchmarkAuditLog(b *testing.B) {
	dir := b.TempDir()
	if err := Initialize(Options{Dir: dir, DebugMode: true}); err != nil {
		b.Fatal(err)
	}
	defer func() {
		CloseAudit()
		_ = Initialize(Options{})
	}()

	a := AuditFor(CategoryCache)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.CacheOp(AuditCacheGet, "profile", nil)
	}
}
