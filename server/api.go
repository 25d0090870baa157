package server

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/solver"
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
	"github.com/lrnselfreliance/wrolpi-sub001/store"
)

// slotPayload is one proportion slot on the wire. Value is null when the
// magnitude is not a finite number; Display always carries the formatted
// text, so infinities still render.
type slotPayload struct {
	Value   *float64 `json:"value"`
	Unit    string   `json:"unit"`
	Display string   `json:"display"`
}

// statePayload is a calculator state on the wire.
type statePayload struct {
	ID          string                 `json:"id"`
	Base        string                 `json:"base"`
	Slots       map[string]slotPayload `json:"slots"`
	LastUpdated []string               `json:"lastUpdated"`
	Solved      *string                `json:"solved"`
	RecentUnits map[string]string      `json:"recentUnits"`
}

type unitPayload struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Display  string  `json:"display"`
	Factor   float64 `json:"factor"`
	Decimals int     `json:"decimals"`
}

type dimensionPayload struct {
	Dimension string        `json:"dimension"`
	Canonical string        `json:"canonical"`
	Units     []unitPayload `json:"units"`
}

type createRequest struct {
	Base string `json:"base"`
}

// eventRequest is one edit as the calculator's inputs send it: the field
// being a slot letter, a slot letter plus "Unit", or "base".
type eventRequest struct {
	Field string    `json:"field"`
	Value rawString `json:"value"`
}

// rawString decodes a JSON string or a bare number as text, so clients can
// send {"value": 4} and {"value": "4"} interchangeably.
type rawString string

func (s *rawString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = rawString(v)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = rawString(data)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	dims := units.Dimensions()

	if filter := r.URL.Query().Get("dimension"); filter != "" {
		dim, ok := units.ParseDimension(filter)
		if !ok || dim == units.None {
			writeFieldError(w, http.StatusBadRequest, "invalid-dimension",
				fmt.Sprintf("unknown dimension '%s' (valid: %s)", filter, strings.Join(dimensionNames(), ", ")),
				"dimension")
			return
		}
		dims = []units.Dimension{dim}
	}

	payload := make([]dimensionPayload, 0, len(dims))
	for _, dim := range dims {
		set := units.UnitsOf(dim)
		ups := make([]unitPayload, 0, len(set))
		for _, u := range set {
			ups = append(ups, unitPayload{
				Symbol:   u.Symbol,
				Name:     u.Name,
				Display:  u.Pretty(),
				Factor:   u.Factor,
				Decimals: u.Decimals,
			})
		}
		payload = append(payload, dimensionPayload{
			Dimension: string(dim),
			Canonical: units.Default(dim).Symbol,
			Units:     ups,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]dimensionPayload{"dimensions": payload})
}

func (s *Server) handleCreateCalculator(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r) {
		writeError(w, http.StatusTooManyRequests, "rate-limited", "too many requests")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "bad-request", "request body is not valid JSON")
		return
	}

	st := solver.New(s.seedUnits())
	if req.Base != "" {
		dim, ok := units.ParseDimension(req.Base)
		if !ok {
			writeFieldError(w, http.StatusBadRequest, "invalid-dimension",
				fmt.Sprintf("unknown dimension '%s' (valid: %s)", req.Base, strings.Join(dimensionNames(), ", ")),
				"base")
			return
		}
		st = solver.Apply(st, solver.SwitchBase{Dim: dim})
	}

	id := s.sessions.Create(st)
	writeJSON(w, http.StatusCreated, s.renderState(id, st))
}

func (s *Server) handleGetCalculator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not-found", fmt.Sprintf("no calculator with id '%s'", id))
		return
	}
	writeJSON(w, http.StatusOK, s.renderState(id, st))
}

func (s *Server) handleDeleteCalculator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "not-found", fmt.Sprintf("no calculator with id '%s'", id))
		return
	}
	writeNoContent(w)
}

func (s *Server) handleCalculatorEvent(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r) {
		writeError(w, http.StatusTooManyRequests, "rate-limited", "too many requests")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad-request", "request body is not valid JSON")
		return
	}

	ev, derr := decodeEvent(req)
	if derr != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: *derr})
		return
	}

	id := r.PathValue("id")
	prev, next, ok := s.sessions.Apply(id, ev)
	if !ok {
		writeError(w, http.StatusNotFound, "not-found", fmt.Sprintf("no calculator with id '%s'", id))
		return
	}

	// A unit outside the active dimension applies as a no-op; report it
	// instead of returning an unchanged state without comment.
	if e, isUnit := ev.(solver.EditUnit); isUnit {
		if _, known := units.LookupIn(prev.Base, e.Symbol); !known {
			msg := fmt.Sprintf("unknown unit '%s' for %s", e.Symbol, prev.Base)
			// A correctly spelled symbol from another dimension is not a typo.
			if hint := units.Suggest(e.Symbol); hint != "" && hint != e.Symbol {
				msg += fmt.Sprintf(". Did you mean '%s'?", hint)
			}
			writeFieldError(w, http.StatusBadRequest, "invalid-unit", msg, req.Field)
			return
		}
	}

	s.persistRecentUnits(prev, next)
	writeJSON(w, http.StatusOK, s.renderState(id, next))
}

// decodeEvent maps a wire edit onto a solver event.
func decodeEvent(req eventRequest) (solver.Event, *apiError) {
	field := strings.TrimSpace(req.Field)
	value := string(req.Value)

	if field == "base" {
		dim, ok := units.ParseDimension(value)
		if !ok {
			return nil, &apiError{
				Code:    "invalid-dimension",
				Message: fmt.Sprintf("unknown dimension '%s' (valid: none, %s)", value, strings.Join(dimensionNames(), ", ")),
				Field:   "value",
			}
		}
		return solver.SwitchBase{Dim: dim}, nil
	}

	if name, isUnit := strings.CutSuffix(field, "Unit"); isUnit {
		sl, ok := solver.ParseSlot(name)
		if !ok {
			return nil, unknownField(field)
		}
		return solver.EditUnit{Slot: sl, Symbol: strings.TrimSpace(value)}, nil
	}

	sl, ok := solver.ParseSlot(field)
	if !ok {
		return nil, unknownField(field)
	}
	return solver.EditValue{Slot: sl, Raw: value}, nil
}

func unknownField(field string) *apiError {
	return &apiError{
		Code:    "invalid-field",
		Message: fmt.Sprintf("unknown field '%s' (valid: a, b, c, d, aUnit, bUnit, cUnit, dUnit, base)", field),
		Field:   "field",
	}
}

func dimensionNames() []string {
	dims := units.Dimensions()
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return names
}

// renderState builds the wire form of a calculator state.
func (s *Server) renderState(id string, st solver.State) statePayload {
	slots := make(map[string]slotPayload, 4)
	for _, sl := range []solver.Slot{solver.A, solver.B, solver.C, solver.D} {
		q := st.Quantity(sl)
		p := slotPayload{
			Unit:    q.Unit.Symbol,
			Display: s.format.Quantity(q),
		}
		if !math.IsInf(q.Value, 0) && !math.IsNaN(q.Value) {
			v := q.Value
			p.Value = &v
		}
		slots[sl.String()] = p
	}

	last := make([]string, 0, 3)
	for _, sl := range st.Recent.Slots() {
		last = append(last, sl.String())
	}

	var solved *string
	if sl, ok := st.Solved(); ok {
		name := sl.String()
		solved = &name
	}

	recent := make(map[string]string, len(st.RecentUnits))
	for dim, sym := range st.RecentUnits {
		recent[dim.String()] = sym
	}

	return statePayload{
		ID:          id,
		Base:        st.Base.String(),
		Slots:       slots,
		LastUpdated: last,
		Solved:      solved,
		RecentUnits: recent,
	}
}

// seedUnits loads the persisted unit preferences. Without a store the
// calculator starts with no memory, which is fine.
func (s *Server) seedUnits() map[units.Dimension]string {
	if s.store == nil {
		return nil
	}
	seed, err := s.store.RecentUnits(store.RatioCache)
	if err != nil {
		s.logError("loading recent units: %v", err)
		return nil
	}
	return seed
}

// persistRecentUnits writes remembered-unit changes through to the store.
// Persistence is advisory: failures are logged, never surfaced.
func (s *Server) persistRecentUnits(prev, next solver.State) {
	if s.store == nil {
		return
	}
	for dim, sym := range next.RecentUnits {
		if prev.RecentUnits[dim] == sym {
			continue
		}
		if err := s.store.SaveRecentUnit(store.RatioCache, dim, sym); err != nil {
			s.logError("saving recent unit %s=%s: %v", dim, sym, err)
		}
	}
}

// rateLimitKey buckets clients by IP.
func rateLimitKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// allow checks the mutating-request rate limit for this client.
func (s *Server) allow(r *http.Request) bool {
	return s.rateLimiter.Allow(rateLimitKey(r))
}
