package importer

import (
	"encoding/json"
	"net/http"

	"Ductolator/internal/calc/demand"
)

type Handler struct {
	Resolver demand.Resolver
}

type FixturesImportResult struct {
	Rows []demand.FixtureRow `json:"rows"`
	demand.FixturesResult
}

// Fixtures accepts a multipart upload with a "file" workbook and an optional
// "profile" field, and returns the parsed rows with their demand roll-up.
func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, parseWarnings, err := ParseSchedule(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reg, p, ws := h.Resolver.TablesFor(r.FormValue("profile"))
	res := demand.Fixtures(reg, p, demand.FixturesInput{Profile: p.ID, Rows: rows})
	warnings := append(ws, parseWarnings...)
	res.Warnings = append(warnings, res.Warnings...)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FixturesImportResult{Rows: rows, FixturesResult: res})
}
