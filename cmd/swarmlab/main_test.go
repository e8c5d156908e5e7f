package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewBufferString(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records
}

func TestRunWritesCSV(t *testing.T) {
	out, err := execute(t, "run", "-a", "pso", "--landscape", "sphere", "--pop", "10", "-n", "5", "--seed", "7")
	require.NoError(t, err)

	records := readCSV(t, out)
	assert.Equal(t, "RunID", records[0][0])
	require.Len(t, records, 6)
	for i, rec := range records[1:] {
		assert.Equal(t, "1", rec[0])
		assert.Equal(t, "pso", rec[1])
		assert.Equal(t, "sphere", rec[2])
		assert.Equal(t, "10", rec[3])
		assert.Equal(t, "7", rec[5])
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}[i], rec[7])
	}
}

func TestRunIsDeterministic(t *testing.T) {
	args := []string{"run", "-a", "cuckoo", "--landscape", "rastrigin", "--pop", "15", "-n", "10"}
	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	out, err := execute(t, "run", "-a", "sa", "-n", "3", "--pop", "5", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, string(data)), 4)
}

func TestRunWithSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"algorithm":"ga","landscape":"schwefel","seed":99,"algorithms":{"pop_size":8}}`), 0o600))

	out, err := execute(t, "run", "--settings", path, "-n", "2", "--seed", "3")
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 3)
	assert.Equal(t, "ga", records[1][1])
	assert.Equal(t, "schwefel", records[1][2])
	assert.Equal(t, "8", records[1][3])
	assert.Equal(t, "3", records[1][5], "explicit flag overrides the file")
}

func TestRunStopsAtGenerationLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"algorithm":"pso","landscape":"sphere","max_generations":3,"algorithms":{"pop_size":5}}`), 0o600))

	out, err := execute(t, "run", "--settings", path, "-n", "10")
	require.NoError(t, err)
	assert.Len(t, readCSV(t, out), 1+3)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		kind error
	}{
		{"unknown algorithm", []string{"run", "-a", "hill-climb"}, optimization.ErrNotFound},
		{"unknown landscape", []string{"run", "--landscape", "himmelblau"}, optimization.ErrNotFound},
		{"zero generations", []string{"run", "-n", "0"}, optimization.ErrInvalidArgument},
		{"negative epsilon", []string{"run", "--epsilon=-1"}, optimization.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Empty(t, out)
		})
	}
}

func TestRunMissingSettingsFile(t *testing.T) {
	_, err := execute(t, "run", "--settings", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompareWritesOneRunPerAlgorithm(t *testing.T) {
	out, err := execute(t, "compare", "-a", "pso,random,sa", "--landscape", "ackley", "--pop", "10", "-n", "4")
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 1+3*4)

	want := map[string]string{"1": "pso", "2": "random", "3": "sa"}
	for _, rec := range records[1:] {
		assert.Equal(t, want[rec[0]], rec[1])
		assert.Equal(t, "ackley", rec[2])
		assert.Equal(t, "12345", rec[5])
	}
}

func TestCompareDefaultsToEveryAlgorithm(t *testing.T) {
	out, err := execute(t, "compare", "--pop", "6", "-n", "1")
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 6)
	seen := map[string]bool{}
	for _, rec := range records[1:] {
		seen[rec[1]] = true
	}
	assert.Len(t, seen, 5)
}

func TestCompareMatchesIndividualRuns(t *testing.T) {
	cmp, err := execute(t, "compare", "-a", "cuckoo,ga", "--pop", "12", "-n", "6")
	require.NoError(t, err)
	single, err := execute(t, "run", "-a", "ga", "--pop", "12", "-n", "6")
	require.NoError(t, err)

	var gaRows [][]string
	for _, rec := range readCSV(t, cmp)[1:] {
		if rec[1] == "ga" {
			gaRows = append(gaRows, rec[1:])
		}
	}
	var singleRows [][]string
	for _, rec := range readCSV(t, single)[1:] {
		singleRows = append(singleRows, rec[1:])
	}
	assert.Equal(t, singleRows, gaRows)
}

func TestCompareUnknownAlgorithm(t *testing.T) {
	_, err := execute(t, "compare", "-a", "pso,bees", "-n", "2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, optimization.ErrNotFound))
}
