package demand

import (
	"encoding/json"
	"net/http"

	"Ductolator/internal/codes"
)

// Resolver supplies the active tables and code profile for a request.
type Resolver interface {
	TablesFor(profileID string) (*Registry, codes.Profile, []string)
	NominalFor(material string, requiredIn float64) (nominal string, insideIn float64, ok bool)
}

type Handler struct {
	Resolver Resolver
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

func encode(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	var input FixturesInput
	if !decode(w, r, &input) {
		return
	}
	reg, p, ws := h.Resolver.TablesFor(input.Profile)
	res := Fixtures(reg, p, input)
	res.Warnings = append(ws, res.Warnings...)
	encode(w, res)
}

func (h *Handler) Sanitary(w http.ResponseWriter, r *http.Request) {
	var input SanitaryInput
	if !decode(w, r, &input) {
		return
	}
	reg, p, ws := h.Resolver.TablesFor(input.Profile)
	res := Sanitary(reg, p, input)
	res.Warnings = append(ws, res.Warnings...)
	encode(w, res)
}

func (h *Handler) Vent(w http.ResponseWriter, r *http.Request) {
	var input VentInput
	if !decode(w, r, &input) {
		return
	}
	reg, p, ws := h.Resolver.TablesFor(input.Profile)
	res := Vent(reg, p, input)
	res.Warnings = append(ws, res.Warnings...)
	encode(w, res)
}

func (h *Handler) Storm(w http.ResponseWriter, r *http.Request) {
	var input StormInput
	if !decode(w, r, &input) {
		return
	}
	reg, p, ws := h.Resolver.TablesFor(input.Profile)
	res := Storm(reg, p, input)
	res.Warnings = append(ws, res.Warnings...)
	encode(w, res)
}

func (h *Handler) Gas(w http.ResponseWriter, r *http.Request) {
	var input GasRequest
	if !decode(w, r, &input) {
		return
	}
	reg, p, ws := h.Resolver.TablesFor(input.Profile)
	res := Gas(reg, p, input, h.Resolver.NominalFor)
	res.Warnings = append(ws, res.Warnings...)
	encode(w, res)
}
