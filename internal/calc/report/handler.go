package report

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

type Handler struct {
	Clock clockwork.Clock
}

func (h *Handler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "application/pdf", "report.pdf", RenderPDF)
}

func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "report.xlsx", RenderXLSX)
}

// render buffers the document so a failure can still be reported as a 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, contentType, filename string, fn func(io.Writer, Input, time.Time) error) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := fn(&buf, input, h.now()); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Write(buf.Bytes())
}
