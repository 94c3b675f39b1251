package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type record struct {
	TS     int64  `json:"ts"`
	Symbol string `json:"symbol"`
}

func readLines(t *testing.T, path string) []record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var out []record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestJournalRotatesByUTCDate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "out")
	j, err := OpenJournal(root)
	require.NoError(t, err)

	day1 := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	// 01:30 in UTC+2 is still 23:30 on the 15th in UTC.
	sameDay := time.Date(2026, 10, 16, 1, 30, 0, 0, time.FixedZone("EET", 2*3600))
	day2 := time.Date(2026, 10, 16, 0, 0, 1, 0, time.UTC)

	require.NoError(t, j.Append(day1, record{TS: 1, Symbol: "A"}))
	require.NoError(t, j.Append(sameDay, record{TS: 2, Symbol: "B"}))
	require.NoError(t, j.Append(day2, record{TS: 3, Symbol: "C"}))
	require.NoError(t, j.Close())
	require.EqualValues(t, 3, j.Lines())

	require.Equal(t, []record{{1, "A"}, {2, "B"}}, readLines(t, filepath.Join(root, "2026-10-15.jsonl")))
	require.Equal(t, []record{{3, "C"}}, readLines(t, j.Path(day2)))

	var latest record
	data, err := os.ReadFile(filepath.Join(root, latestName))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &latest))
	require.Equal(t, record{3, "C"}, latest)
}

func TestJournalAppendsAcrossReopen(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	j, err := OpenJournal(root)
	require.NoError(t, err)
	require.NoError(t, j.Append(at, record{TS: 1}))
	require.NoError(t, j.Close())

	j, err = OpenJournal(root)
	require.NoError(t, err)
	require.NoError(t, j.Append(at, record{TS: 2}))
	require.NoError(t, j.Close())

	require.Len(t, readLines(t, j.Path(at)), 2)
}

func TestJournalRejectsUnencodableValue(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	require.NoError(t, err)
	defer j.Close()
	require.Error(t, j.Append(time.Now(), func() {}))
	require.Zero(t, j.Lines())

	_, err = OpenJournal("")
	require.Error(t, err)
}
