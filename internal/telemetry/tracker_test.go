package telemetry

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ifruncillo/llmsandbox/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUpdatesRunningTotals(t *testing.T) {
	tr, err := NewTracker(t.TempDir())
	require.NoError(t, err)

	fuel := uint64(500)
	require.NoError(t, tr.Record(ExecutionRecord{
		Runtime: result.Python, Success: true, DurationMs: 120,
		FuelConsumed: &fuel, UtilizationPercent: 50,
	}))
	require.NoError(t, tr.Record(ExecutionRecord{
		Runtime: result.Python, Success: false, DurationMs: 80,
	}))

	stats := tr.GetStats()
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, uint64(500), stats.TotalFuelConsumed)
	assert.Equal(t, 200*time.Millisecond, stats.TotalDuration)
}

func TestRecordAppendsToDailyJSONLFile(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir)
	require.NoError(t, err)

	require.NoError(t, tr.Record(ExecutionRecord{Runtime: result.JavaScript, Success: true}))
	require.NoError(t, tr.Record(ExecutionRecord{Runtime: result.JavaScript, Success: true}))

	filename := "executions_" + time.Now().Format("2006-01-02") + ".jsonl"
	f, err := os.Open(filepath.Join(dir, filename))
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestAverageFuelUtilizationTracksRecordedSamples(t *testing.T) {
	tr, err := NewTracker(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, tr.Record(ExecutionRecord{UtilizationPercent: 40}))
	require.NoError(t, tr.Record(ExecutionRecord{UtilizationPercent: 60}))

	assert.Equal(t, 50.0, tr.AverageFuelUtilization())
}
