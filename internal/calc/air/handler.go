package air

import (
	"encoding/json"
	"net/http"
)

type MixInput struct {
	Streams []Stream `json:"streams"`
}

type Handler struct{}

func (h *Handler) Mix(w http.ResponseWriter, r *http.Request) {
	var input MixInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Mix(input.Streams)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
