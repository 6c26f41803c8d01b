package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	secomposer "github.com/sameashark/se-composer"
	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/preset"
)

const maxBodySize = 4 << 20

type stateResponse struct {
	Params   params.Parameters `json:"params"`
	Notes    []params.Note     `json:"notes"`
	Presets  []string          `json:"presets"`
	CanUndo  bool              `json:"canUndo"`
	CanRedo  bool              `json:"canRedo"`
	Playing  bool              `json:"playing"`
	Position float64           `json:"position"` // live stream clock, seconds
}

// state must be called with s.mu held.
func (s *Server) state() stateResponse {
	c := s.composer
	names := []string{}
	for _, p := range c.Presets() {
		names = append(names, p.Name)
	}
	notes := c.Notes()
	if notes == nil {
		notes = []params.Note{}
	}
	return stateResponse{
		Params:   c.Params(),
		Notes:    notes,
		Presets:  names,
		CanUndo:  c.CanUndo(),
		CanRedo:  c.CanRedo(),
		Playing:  c.IsPlaying(),
		Position: c.Player().PlaybackPosition(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, s.state())
}

// command runs fn under the lock and answers with the resulting state.
func (s *Server) command(w http.ResponseWriter, fn func(c *secomposer.Composer) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.composer); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSetParam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value any `json:"value"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	key := chi.URLParam(r, "key")
	s.command(w, func(c *secomposer.Composer) error {
		return c.SetParameter(key, body.Value)
	})
}

func (s *Server) handleSetParams(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if !s.decode(w, r, &partial) {
		return
	}
	s.command(w, func(c *secomposer.Composer) error {
		return c.SetAllParameters(partial)
	})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var n params.Note
	if !s.decode(w, r, &n) {
		return
	}
	s.command(w, func(c *secomposer.Composer) error {
		return c.AddNote(n)
	})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch params.NotePatch
	if !s.decode(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	s.command(w, func(c *secomposer.Composer) error {
		return c.UpdateNote(id, patch)
	})
}

func (s *Server) handleRemoveNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.command(w, func(c *secomposer.Composer) error {
		return c.RemoveNote(id)
	})
}

func (s *Server) handleClearNotes(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		c.ClearNotes()
		return nil
	})
}

func (s *Server) handlePushHistory(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		c.PushHistory()
		return nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		c.Undo()
		return nil
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		c.Redo()
		return nil
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		return c.Play()
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.command(w, func(c *secomposer.Composer) error {
		c.Stop()
		return nil
	})
}

func (s *Server) handleExportWAV(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.composer.ExportWAV()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="se.wav"`)
	w.Write(data)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.composer.Export()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.composer.Presets()
	s.mu.Unlock()
	if list == nil {
		list = []preset.Preset{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.command(w, func(c *secomposer.Composer) error {
		return c.Import(data)
	})
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.command(w, func(c *secomposer.Composer) error {
		_, err := c.SavePreset(name)
		return err
	})
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.command(w, func(c *secomposer.Composer) error {
		return c.LoadPreset(name)
	})
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.command(w, func(c *secomposer.Composer) error {
		return c.DeletePreset(name)
	})
}

func (s *Server) handleApplySample(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	s.command(w, func(c *secomposer.Composer) error {
		return c.ApplySample(kind)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, params.ErrNoteNotFound), errors.Is(err, secomposer.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, params.ErrDuplicateNote):
		return http.StatusConflict
	case errors.Is(err, params.ErrUnknownParameter),
		errors.Is(err, params.ErrInvalidValue),
		errors.Is(err, params.ErrInvalidPitch),
		errors.Is(err, secomposer.ErrInvalidFormat),
		errors.Is(err, secomposer.ErrEmptyName),
		errors.Is(err, preset.ErrUnknownSample):
		return http.StatusBadRequest
	case errors.Is(err, secomposer.ErrExportFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("command failed", slog.Any("error", err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", slog.Any("error", err))
	}
}
