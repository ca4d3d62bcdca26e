package catalog

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	Store *Store
	// Dir is the configured catalog folder. Reload is refused when empty.
	Dir string
}

type catalogView struct {
	Summary
	LastLoad Report `json:"lastLoad"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view := catalogView{Summary: h.Store.Current().Summary(), LastLoad: h.Store.LastReport()}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.Dir == "" {
		http.Error(w, "No catalog folder configured", http.StatusConflict)
		return
	}
	rep := h.Store.Reload(h.Dir)
	w.Header().Set("Content-Type", "application/json")
	if !rep.Applied {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(rep)
}
