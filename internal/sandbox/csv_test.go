package sandbox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

func TestWriteCSV(t *testing.T) {
	runs := []Run{
		{
			ID: 1,
			Meta: RunMeta{
				Algorithm: "cuckoo",
				Landscape: "ackley",
				PopSize:   50,
				Epsilon:   0.1,
				Seed:      12345,
				AlgoParams: []optimization.Param{
					{Name: "pa", Value: "0.25"},
					{Name: "levyScale", Value: "0.2"},
				},
			},
			History: []GenerationStats{
				{Generation: 1, Best: 1.5, Avg: 2.5, StdDev: 0.5, SuccessRate: 10},
				{Generation: 2, Best: 0.25, Avg: 2, StdDev: 0.75, SuccessRate: 12.5},
			},
		},
		{
			ID:      2,
			Meta:    RunMeta{Algorithm: "random", Landscape: "ackley", PopSize: 50, Epsilon: 0.1, Seed: 12345},
			History: []GenerationStats{{Generation: 1, Best: 3, Avg: 4, StdDev: 1, SuccessRate: 0}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, runs))

	want := "RunID,Algorithm,Landscape,PopSize,Epsilon,Seed,AlgoParams,Generation,BestFitness,AvgFitness,StdDev,SuccessRate\n" +
		"1,cuckoo,ackley,50,0.1,12345,pa=0.25;levyScale=0.2,1,1.5,2.5,0.5,10\n" +
		"1,cuckoo,ackley,50,0.1,12345,pa=0.25;levyScale=0.2,2,0.25,2,0.75,12.5\n" +
		"2,random,ackley,50,0.1,12345,none,1,3,4,1,0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}
