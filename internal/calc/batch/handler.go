package batch

import (
	"encoding/json"
	"net/http"

	"Ductolator/internal/catalog"
)

type Handler struct {
	Catalog *catalog.Store
}

func (h *Handler) Pipe(w http.ResponseWriter, r *http.Request) {
	var input PipeBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := SizePipes(input, h.Catalog.Current())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
