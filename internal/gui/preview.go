package gui

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mittoalb/tomolog-cli/internal/render"
	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// handlePreview renders one reconstruction slice of the configured scan
// as a windowed JPEG: /api/preview?file=...&slice=400&min=0&max=0.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	defaultFile := s.cfg.Scan.FileName
	recType := s.cfg.Scan.RecType
	scale := s.cfg.Scan.Scale
	s.mu.Unlock()

	q := r.URL.Query()
	fileName := q.Get("file")
	if fileName == "" {
		fileName = defaultFile
	}
	if fileName == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}

	st, err := scan.FindStack(fileName, recType)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	idz := st.NumSlices() / 2
	if v, err := strconv.Atoi(q.Get("slice")); err == nil {
		idz = v
	}
	if idz < 0 || idz >= st.NumSlices() {
		writeError(w, http.StatusBadRequest, "slice out of range")
		return
	}

	frame, err := scan.ReadTIFF(st.SlicePath(st.ZStart + idz))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	win := render.Window{
		Min: parseFloatDefault(q.Get("min"), 0),
		Max: parseFloatDefault(q.Get("max"), 0),
	}
	if win.Min == win.Max {
		win = render.FindMinMax(frame.Data, scale)
	}

	tmp, err := os.CreateTemp("", "tomolog-preview-*.jpg")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := render.Projection(frame, 1, win, tmp.Name()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, filepath.Clean(tmp.Name()))
}
