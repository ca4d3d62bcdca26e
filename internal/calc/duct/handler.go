package duct

import (
	"encoding/json"
	"errors"
	"net/http"

	"Ductolator/internal/calc/props"
	"Ductolator/internal/catalog"
)

type Handler struct {
	Catalog *catalog.Store
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input, h.Catalog.Current())
	if err != nil {
		var perr *props.PropertyResolutionError
		if errors.As(err, &perr) || errors.Is(err, ErrInsufficientInputs) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Calculation error", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Presets())
}
