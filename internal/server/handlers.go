package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DavideDeMarchi/geodash/pkg/catalog"
	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/fetch"
	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
	"github.com/DavideDeMarchi/geodash/pkg/pipeline"
	"github.com/DavideDeMarchi/geodash/pkg/render"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a pipeline or storage error onto an HTTP status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError

	switch code {
	case errors.ErrCodeInvalidBBox, errors.ErrCodeInvalidZoom,
		errors.ErrCodeInvalidLayer, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeFetchFailed:
		status = http.StatusBadGateway
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	// Tile fetch failures surface as fetch errors rather than coded ones.
	var fetchErr *fetch.Error
	if status == http.StatusInternalServerError && stderrors.As(err, &fetchErr) {
		status = http.StatusBadGateway
		code = errors.ErrCodeFetchFailed
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

// snapshotRequest is the body of POST /v1/snapshots.
type snapshotRequest struct {
	pipeline.Options
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	snap := catalog.New()
	snap.Name = req.Name
	snap.BBox = req.BBox
	snap.Zoom = req.Zoom
	snap.Layers = req.Layers
	snap.Format = req.Format
	if snap.Format == "" {
		snap.Format = pipeline.DefaultFormat
	}
	snap.Width = result.Width
	snap.Height = result.Height
	snap.Size = len(result.Image)
	snap.Hash = result.Hash
	snap.Image = result.Image

	if err := s.store.Put(r.Context(), snap); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store snapshot"))
		return
	}

	s.logger.Info("snapshot created",
		"id", snap.ID,
		"zoom", snap.Zoom,
		"layers", len(snap.Layers),
		"bytes", snap.Size,
		"cached", result.CacheInfo.ArtifactHit)

	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list snapshots"))
		return
	}
	if list == nil {
		list = []*catalog.Snapshot{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) *catalog.Snapshot {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, catalog.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id))
		return nil
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load snapshot"))
		return nil
	}
	return snap
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.getSnapshot(w, r)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSnapshotImage(w http.ResponseWriter, r *http.Request) {
	snap := s.getSnapshot(w, r)
	if snap == nil {
		return
	}
	contentType := "image/png"
	if snap.Format == render.FormatJPEG {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.Image)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if stderrors.Is(err, catalog.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "delete snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// treeRequest is the body of POST /v1/trees.
type treeRequest struct {
	Names     []string           `json:"names"`
	Root      string             `json:"root,omitempty"`
	Separator *string            `json:"separator,omitempty"`
	Values    map[string]float64 `json:"values,omitempty"`
}

// treeResponse pairs the flat chart arrays with the node count.
type treeResponse struct {
	Chart hierarchy.Chart `json:"chart"`
	Nodes int             `json:"nodes"`
}

func (s *Server) handleBuildTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	opts := []hierarchy.Option{}
	if req.Root != "" {
		opts = append(opts, hierarchy.WithRoot(req.Root))
	}
	if req.Separator != nil {
		opts = append(opts, hierarchy.WithSeparator(*req.Separator))
	}
	if req.Values != nil {
		opts = append(opts, hierarchy.WithValues(req.Values))
	}

	tree := hierarchy.Build(req.Names, opts...)
	writeJSON(w, http.StatusOK, treeResponse{Chart: tree.Chart(), Nodes: tree.Len()})
}
