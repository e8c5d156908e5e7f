package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/swarmlab/internal/logging"
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/sandbox"
)

const (
	defaultGridSize = 64
	maxGridSize     = 512
	maxBodyBytes    = 1 << 20
)

type landscapeInfo struct {
	ID          landscape.ID `json:"id"`
	Bounds      float64      `json:"bounds"`
	Optimum     [2]float64   `json:"optimum"`
	Description string       `json:"description"`
}

type gaOperators struct {
	Selection []algorithm.Selection `json:"selection"`
	Crossover []algorithm.Crossover `json:"crossover"`
	Mutation  []algorithm.Mutation  `json:"mutation"`
}

type catalog struct {
	Algorithms []algorithm.ID   `json:"algorithms"`
	Landscapes []landscapeInfo  `json:"landscapes"`
	Defaults   sandbox.Settings `json:"defaults"`
	Operators  gaOperators      `json:"ga_operators"`
}

// handleCatalog lists the algorithms, the landscapes and the defaults new
// sessions start from.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	defaults := s.cfg.SandboxSettings()
	c := catalog{
		Algorithms: algorithm.IDs(),
		Defaults:   defaults,
		Operators: gaOperators{
			Selection: []algorithm.Selection{
				algorithm.TournamentSelection, algorithm.RouletteSelection,
				algorithm.RankSelection, algorithm.RandomSelection,
			},
			Crossover: []algorithm.Crossover{
				algorithm.BlendCrossover, algorithm.SinglePointCrossover,
				algorithm.UniformCrossover, algorithm.SBXCrossover,
			},
			Mutation: []algorithm.Mutation{
				algorithm.UniformMutation, algorithm.GaussianMutation,
				algorithm.PolynomialMutation, algorithm.SwapMutation,
			},
		},
	}
	for _, id := range landscape.IDs() {
		l, err := landscape.New(id, &defaults.Landscapes)
		if err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		x, z := l.Optimum()
		c.Landscapes = append(c.Landscapes, landscapeInfo{
			ID:          id,
			Bounds:      l.Bounds(),
			Optimum:     [2]float64{x, z},
			Description: l.Description(),
		})
	}
	respondJSON(w, http.StatusOK, c)
}

// handleLandscapeGrid samples a landscape with default parameters on an
// n×n grid, for rendering the terrain.
func (s *Server) handleLandscapeGrid(w http.ResponseWriter, r *http.Request) {
	n, err := intQuery(r, "n", defaultGridSize)
	if err != nil {
		s.respondWithHTTPError(w, r, err)
		return
	}
	if n < 2 || n > maxGridSize {
		s.respondWithHTTPError(w, r, optimization.InvalidArgumentf("n must be in 2..%d, got %d", maxGridSize, n))
		return
	}

	params := landscape.DefaultParams()
	l, err := landscape.New(landscape.ID(chi.URLParam(r, "id")), &params)
	if err != nil {
		s.respondWithHTTPError(w, r, err)
		return
	}

	grid := landscape.Sample(l, n)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, grid)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     l.ID(),
		"bounds": l.Bounds(),
		"n":      n,
		"values": rows,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.respondWithHTTPError(w, r, optimization.InvalidArgumentf("reading body: %v", err))
		return
	}

	state, err := s.createSession(body)
	if err != nil {
		s.respondWithHTTPError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       state.ID,
		"snapshot": state.Session.Snapshot(),
	})
}

// withSession resolves the {id} URL parameter before calling fn.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*SessionState)) {
	state, err := s.session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithHTTPError(w, r, err)
		return
	}
	fn(state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteSession(chi.URLParam(r, "id")); err != nil {
		s.respondWithHTTPError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStep runs ?n= generations (default 1).
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		n, err := intQuery(r, "n", 1)
		if err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		stats, limitReached, err := s.step(r.Context(), state, n)
		if err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"generation":    state.Session.Generation(),
			"stats":         stats,
			"limit_reached": limitReached,
		})
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		var req struct {
			KeepPrevious bool `json:"keep_previous"`
		}
		if !s.decodeBody(w, r, true, &req) {
			return
		}
		if err := state.Session.Reset(req.KeepPrevious); err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if !s.decodeBody(w, r, false, &req) {
			return
		}
		state.Session.SetComparison(req.Enabled)
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

func (s *Server) handleSwitchAlgorithm(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		var req struct {
			ID algorithm.ID `json:"id"`
		}
		if !s.decodeBody(w, r, false, &req) {
			return
		}
		if err := state.Session.SwitchAlgorithm(req.ID); err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

func (s *Server) handleSwitchLandscape(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		var req struct {
			ID landscape.ID `json:"id"`
		}
		if !s.decodeBody(w, r, false, &req) {
			return
		}
		if err := state.Session.SwitchLandscape(req.ID); err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

// handleUpdateParams merges a partial settings document into the live
// settings.
func (s *Server) handleUpdateParams(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			s.respondWithHTTPError(w, r, optimization.InvalidArgumentf("reading body: %v", err))
			return
		}

		var decodeErr error
		err = state.Session.UpdateParams(func(st *sandbox.Settings) {
			next := *st
			if decodeErr = json.Unmarshal(body, &next); decodeErr == nil {
				*st = next
			}
		})
		if decodeErr != nil {
			s.respondWithHTTPError(w, r, optimization.InvalidArgumentf("invalid params: %v", decodeErr))
			return
		}
		if err != nil {
			s.respondWithHTTPError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, state.Session.Settings())
	})
}

// handleConfigure merges a partial settings document into the current
// settings and resets.
func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		settings := state.Session.Settings()
		if !s.decodeBody(w, r, false, &settings) {
			return
		}
		if err := state.Session.Configure(settings); err != nil {
			s.respondWithHTTPError(w, r, invalidSettings(err))
			return
		}
		respondJSON(w, http.StatusOK, state.Session.Snapshot())
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		respondJSON(w, http.StatusOK, state.Session.Runs())
	})
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		h := state.Session.Heatmap()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"size":   sandbox.HeatmapSize,
			"max":    h.Max(),
			"values": h.Rows(),
		})
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(state *SessionState) {
		runs := state.Session.Runs()
		if len(runs) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "swarmlab_"+state.ID+".csv"))
		if err := sandbox.WriteCSV(w, runs); err != nil {
			logging.FromContext(r.Context()).WithError(err).Error("CSV export failed")
		}
	})
}

// decodeBody decodes a JSON body into v, answering 400 on failure. An
// empty body is accepted when optional is set.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, optional bool, v interface{}) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == io.EOF && optional {
		return true
	}
	if err != nil {
		s.respondWithHTTPError(w, r, optimization.InvalidArgumentf("invalid request body: %v", err))
		return false
	}
	return true
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, optimization.InvalidArgumentf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
