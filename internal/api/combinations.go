package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/powerball-superposition/internal/store"
)

// storageRequired writes a service_unavailable error when no store is wired.
func (s *Server) storageRequired(w http.ResponseWriter, r *http.Request) bool {
	if s.db != nil {
		return true
	}
	s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "storage is not configured").Build())
	return false
}

func (s *Server) handleListCombinations(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	list, err := s.db.List()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Combination{}
	}
	writeJSON(w, http.StatusOK, CombinationsResponse{Combinations: list, Total: len(list)})
}

func (s *Server) handleSaveCombination(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	var req SaveRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", err.Error())
		return
	}

	c := &store.Combination{Main: req.Main, Powerball: req.Powerball, Entropy: req.Entropy}
	if err := s.saveCombination(c); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleClearCombinations(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	if err := s.db.Clear(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.refreshSaved()
	s.logger.Info("combinations cleared")
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: true})
}

func (s *Server) handleGetCombination(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	c, err := s.db.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCombination(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	ok, err := s.db.Delete(id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if !ok {
		s.errorHandler.HandleError(w, r, fmt.Errorf("%w: %s", store.ErrNotFound, id))
		return
	}
	s.refreshSaved()
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: true, ID: id})
}

// handleExport returns the saved list as a downloadable export document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	now := s.now()
	doc, err := store.Export(s.db, now)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if doc.Combinations == nil {
		doc.Combinations = []store.Combination{}
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="lottery-combinations-%s.json"`, now.UTC().Format("2006-01-02")))
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	var doc store.ExportDocument
	if err := decodeJSON(w, r, &doc, false); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", err.Error())
		return
	}
	n, err := s.db.Import(doc)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	total, err := s.db.Count()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.metrics.saved.Set(float64(total))
	s.logger.Info("combinations imported", "imported", n, "total", total)
	writeJSON(w, http.StatusOK, ImportResponse{Imported: n, Total: total})
}

func (s *Server) handleStorageInfo(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w, r) {
		return
	}
	info, err := store.StorageInfo(s.db)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
