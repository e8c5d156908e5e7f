package sandbox

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

var csvHeader = []string{
	"RunID", "Algorithm", "Landscape", "PopSize", "Epsilon", "Seed", "AlgoParams",
	"Generation", "BestFitness", "AvgFitness", "StdDev", "SuccessRate",
}

// ExportCSV writes one row per recorded generation of every run, archived
// runs first. Nothing is written when no generation has been recorded.
func (s *Session) ExportCSV(w io.Writer) error {
	return WriteCSV(w, s.Runs())
}

// WriteCSV writes runs in the export format.
func WriteCSV(w io.Writer, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range runs {
		m := r.Meta
		params := formatParams(m.AlgoParams)
		for _, g := range r.History {
			record := []string{
				strconv.Itoa(r.ID),
				string(m.Algorithm),
				string(m.Landscape),
				strconv.Itoa(m.PopSize),
				formatFloat(m.Epsilon),
				strconv.FormatUint(uint64(m.Seed), 10),
				params,
				strconv.Itoa(g.Generation),
				formatFloat(g.Best),
				formatFloat(g.Avg),
				formatFloat(g.StdDev),
				formatFloat(g.SuccessRate),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatParams renders parameters as k=v pairs joined by ';', or "none".
func formatParams(params []optimization.Param) string {
	if len(params) == 0 {
		return "none"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + "=" + p.Value
	}
	return strings.Join(parts, ";")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
