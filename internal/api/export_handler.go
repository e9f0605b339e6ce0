package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cutdesk/cutdesk-agent/internal/export"
)

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		req.ProjectID = projectID
		req.Format = strings.ToLower(req.Format)

		if req.Format != export.FormatEDL && req.Format != export.FormatMP4 {
			WriteError(w, http.StatusBadRequest, "format must be edl or mp4", "BAD_REQUEST")
			return
		}

		p, err := cfg.Projects.Get(r.Context(), projectID)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		cuts, err := cfg.Projects.CutList(r.Context(), projectID)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		resp, err := cfg.Exporter.Export(r.Context(), req, p.Name, cuts)
		if err != nil {
			if errors.Is(err, export.ErrEmptyTimeline) {
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), "EMPTY_TIMELINE")
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
