package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog lists the node specs a process can run.
type Catalog interface {
	flow.SpecSource
	Names() []string
}

// Server serves the operational endpoints of a flo process.
type Server struct {
	Version  string
	Catalog  Catalog
	Gatherer prometheus.Gatherer
}

// PortInfo describes one port of a spec.
type PortInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SpecInfo is the JSON form of a spec.
type SpecInfo struct {
	Name    string            `json:"name"`
	Inputs  []PortInfo        `json:"inputs"`
	Outputs []PortInfo        `json:"outputs"`
	Params  map[string]string `json:"params,omitempty"`
}

// NewHandler routes:
//
//	GET /health      liveness
//	GET /info        app and version
//	GET /specs       every spec of the catalog
//	GET /specs/{name}
//	POST /specs/{name}/check  validates a JSON object of params
//	GET /metrics     Prometheus exposition, when a gatherer is set
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Catalog != nil {
		r.Get("/specs", s.ListSpecs)
		r.Get("/specs/{name}", s.GetSpec)
		r.Post("/specs/{name}/check", s.CheckParams)
	}
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "flo",
		"version": s.Version,
	})
}

// ListSpecs handles the GET /specs request.
func (s *Server) ListSpecs(w http.ResponseWriter, r *http.Request) {
	names := s.Catalog.Names()
	specs := make([]SpecInfo, 0, len(names))
	for _, name := range names {
		spec, err := s.Catalog.Get(name)
		if err != nil {
			continue
		}
		specs = append(specs, describe(spec))
	}
	writeJSON(w, http.StatusOK, specs)
}

// GetSpec handles the GET /specs/{name} request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := s.Catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, describe(spec))
}

// CheckResult is the response of CheckParams.
type CheckResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// CheckParams handles the POST /specs/{name}/check request. Every declared
// param must be present with a value of its type.
func (s *Server) CheckParams(w http.ResponseWriter, r *http.Request) {
	spec, err := s.Catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var params map[string]any
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid params: "+err.Error(), http.StatusBadRequest)
		return
	}

	err = schema.Validate(spec.Params, params)
	if err == nil {
		writeJSON(w, http.StatusOK, CheckResult{Valid: true})
		return
	}
	res := CheckResult{}
	var agg *schema.AggregateError
	if errors.As(err, &agg) {
		for _, e := range agg.Errors {
			res.Errors = append(res.Errors, e.Error())
		}
	} else {
		res.Errors = []string{err.Error()}
	}
	writeJSON(w, http.StatusUnprocessableEntity, res)
}

func describe(spec *flow.Spec) SpecInfo {
	ports := func(ps []flow.PortSpec) []PortInfo {
		out := make([]PortInfo, 0, len(ps))
		for _, p := range ps {
			typ := "any"
			if p.Type != nil {
				typ = p.Type.Name()
			}
			out = append(out, PortInfo{Name: p.Name, Type: typ})
		}
		return out
	}
	info := SpecInfo{
		Name:    spec.Name,
		Inputs:  ports(spec.Inputs),
		Outputs: ports(spec.Outputs),
	}
	if len(spec.Params) > 0 {
		info.Params = make(map[string]string, len(spec.Params))
		for k, t := range spec.Params {
			info.Params[k] = t.Name()
		}
	}
	return info
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
