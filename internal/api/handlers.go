package api

import (
	"net/http"

	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/events"
	"github.com/MJE43/powerball-superposition/internal/store"
)

// handleGenerate draws one number set. Ranges missing from the body fall back
// to the configured defaults; an empty body is a default request.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", err.Error())
		return
	}
	if req.Save && s.db == nil {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "storage is not configured").Build())
		return
	}

	genReq := s.defaults
	if req.Main != nil {
		genReq.Main = *req.Main
	}
	if req.Special != nil {
		genReq.Special = *req.Special
	}
	genReq.Ambient = req.Ambient

	res, err := s.engine.Generate(r.Context(), genReq)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.metrics.generations.WithLabelValues(string(res.Quality.Source)).Inc()
	if res.Quality.Degraded {
		s.metrics.degraded.Inc()
	}
	if res.Stats.UsedFallback {
		s.metrics.fallbacks.Inc()
	}
	if err := s.publisher.Generated(res); err != nil {
		s.logger.Warn("publish generation event failed", "generation_id", res.GenerationID, "error", err)
	}

	resp := GenerateResponse{Result: res, EngineVersion: EngineVersion}
	if req.Save {
		c := &store.Combination{
			Main:      res.Numbers.Main,
			Powerball: res.Numbers.Special,
			Entropy:   string(res.Quality.Source),
			Quality:   res.Quality.Score,
		}
		if err := s.saveCombination(c); err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.Saved = c
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Engine:        s.engine.Status(),
		EngineVersion: EngineVersion,
	}
	if s.analyzer != nil {
		resp.Analysis = s.analyzer.Stats()
	}
	if s.db != nil {
		n, err := s.db.Count()
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.SavedCount = n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent := s.engine.Recent()
	writeJSON(w, http.StatusOK, RecentResponse{Results: recent, Count: len(recent)})
}

// handleReset clears engine history and the analysis cache.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset()
	if s.analyzer != nil {
		s.analyzer.ClearCache()
	}
	s.logger.Info("engine reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetVersionInfo())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "analysis is not configured").Build())
		return
	}
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", err.Error())
		return
	}
	if len(req.Main) == 0 {
		s.errorHandler.HandleValidationError(w, r, "main", "main numbers are required")
		return
	}
	top := req.Top
	if top <= 0 {
		top = s.top
	}

	report, err := s.analyzer.Analyze(req.Main, req.Special, top)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.metrics.analyses.Inc()
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", err.Error())
		return
	}
	if len(req.Left) == 0 || len(req.Right) == 0 {
		s.errorHandler.HandleValidationError(w, r, "left/right", "both sets are required")
		return
	}
	s.metrics.analyses.Inc()
	writeJSON(w, http.StatusOK, analysis.CompareSets(req.Left, req.Right))
}

func (s *Server) handleDraws(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "analysis is not configured").Build())
		return
	}
	draws := s.analyzer.Draws()
	writeJSON(w, http.StatusOK, DrawsResponse{Draws: draws, Total: len(draws)})
}

// saveCombination stores c, refreshes the saved gauge and announces the save.
func (s *Server) saveCombination(c *store.Combination) error {
	if err := s.db.Save(c); err != nil {
		return err
	}
	s.refreshSaved()
	if err := s.publisher.Emit(events.Event{Type: events.TypeSaved, Data: c}); err != nil {
		s.logger.Warn("publish save event failed", "id", c.ID, "error", err)
	}
	s.logger.Info("combination saved", "id", c.ID)
	return nil
}

func (s *Server) refreshSaved() {
	if n, err := s.db.Count(); err == nil {
		s.metrics.saved.Set(float64(n))
	}
}
