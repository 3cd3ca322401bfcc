package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lemu/seamless-sea-sub003/pkg/buildinfo"
	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleBreakpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bps)
}

type layoutsResponse struct {
	Board   string       `json:"board"`
	Layouts grid.Layouts `json:"layouts"`
}

func (s *Server) handleGetLayouts(w http.ResponseWriter, r *http.Request) {
	board, err := boardParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ls, err := s.repo.ReadLayouts(r.Context(), board)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutsResponse{Board: board, Layouts: ls})
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	board, err := boardParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bp, err := s.breakpointParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var layout grid.Layout
	if err := decodeBody(w, r, &layout); err != nil {
		writeError(w, err)
		return
	}
	if err := layout.ValidateWithin(bp.Columns, grid.SnapshotRowLimit(s.sync.RowCeiling)); err != nil {
		writeError(w, err)
		return
	}

	if err := s.repo.WriteLayout(r.Context(), board, bp.Name, layout); err != nil {
		s.logger.Warn("layout write failed", "board", board, "breakpoint", bp.Name, "err", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncRequest struct {
	Widgets []string `json:"widgets"`
	MaxRows int      `json:"max_rows"`
}

type syncResponse struct {
	Breakpoint string      `json:"breakpoint"`
	Layout     grid.Layout `json:"layout"`
	Placed     []string    `json:"placed"`
	MaxRows    int         `json:"max_rows"`
	Exhausted  bool        `json:"exhausted"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	board, err := boardParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bp, err := s.breakpointParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req syncRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	for _, id := range req.Widgets {
		if err := errors.ValidateWidgetID(id); err != nil {
			writeError(w, err)
			return
		}
	}

	ls, err := s.repo.ReadLayouts(r.Context(), board)
	if err != nil {
		writeError(w, err)
		return
	}
	res := s.sync.Sync(ls[bp.Name], req.Widgets, bp, req.MaxRows)
	if res.Layout == nil {
		res.Layout = grid.Layout{}
	}
	if res.Placed == nil {
		res.Placed = []string{}
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Breakpoint: bp.Name,
		Layout:     res.Layout,
		Placed:     res.Placed,
		MaxRows:    res.MaxRows,
		Exhausted:  res.Exhausted,
	})
}

// handleEvents streams the board's layout set as server-sent events, one
// "layouts" event per change, until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	board, err := boardParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	updates, err := s.repo.Subscribe(r.Context(), board)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ls := range updates {
		data, err := marshalLayouts(board, ls)
		if err != nil {
			s.logger.Error("encode layout event", "board", board, "err", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: layouts\ndata: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

func marshalLayouts(board string, ls grid.Layouts) ([]byte, error) {
	return json.Marshal(layoutsResponse{Board: board, Layouts: ls})
}
