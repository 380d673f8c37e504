// Package server exposes the optimization engines over HTTP: fuel-mix
// solving, kiln tuning sessions, process scoring, clinker chemistry and
// sustainability accounting.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/copyleftdev/clinkerline/internal/chemistry"
	"github.com/copyleftdev/clinkerline/internal/config"
	"github.com/copyleftdev/clinkerline/internal/fuels"
	"github.com/copyleftdev/clinkerline/internal/logging"
	"github.com/copyleftdev/clinkerline/internal/mix"
	"github.com/copyleftdev/clinkerline/internal/process"
	"github.com/copyleftdev/clinkerline/internal/surrogate"
	"github.com/copyleftdev/clinkerline/internal/sustain"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server wires the optimization engines to their HTTP routes and owns
// the tuning-session registry.
type Server struct {
	cfg    *config.Config
	logger Logger
	zlog   *zap.Logger

	catalog   *fuels.Catalog
	mixer     *mix.Optimizer
	objective *process.Objective
	scorer    *sustain.Scorer

	sessions *sessionRegistry
	metrics  *Metrics
}

// NewServer creates a server backed by the given catalog. A nil catalog
// selects the built-in one; a nil zap logger disables engine logging.
func NewServer(cfg *config.Config, logger Logger, zlog *zap.Logger, catalog *fuels.Catalog, metrics *Metrics) *Server {
	if catalog == nil {
		catalog = fuels.Default()
	}
	if zlog == nil {
		zlog = zap.NewNop()
	}

	return &Server{
		cfg:       cfg,
		logger:    logger,
		zlog:      zlog,
		catalog:   catalog,
		mixer:     mix.NewOptimizer(catalog, zlog),
		objective: process.NewObjective(),
		scorer:    sustain.NewScorer(),
		sessions:  newSessionRegistry(),
		metrics:   metrics,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/fuel", func(r chi.Router) {
			r.Post("/optimize", s.handleFuelOptimize)
			r.Get("/database", s.handleFuelDatabase)
			r.Get("/savings", s.handleFuelSavings)
		})
		r.Route("/process", func(r chi.Router) {
			r.Post("/sessions", s.handleSessionCreate)
			r.Delete("/sessions/{id}", s.handleSessionDelete)
			r.Post("/sessions/{id}/suggest", s.handleSessionSuggest)
			r.Post("/sessions/{id}/observe", s.handleSessionObserve)
			r.Post("/score", s.handleProcessScore)
		})
		r.Route("/chemistry", func(r chi.Router) {
			r.Post("/validate", s.handleChemistryValidate)
			r.Post("/phases", s.handleChemistryPhases)
		})
		r.Route("/carbon", func(r chi.Router) {
			r.Post("/sustainability-score", s.handleSustainabilityScore)
			r.Get("/benchmarks", s.handleCarbonBenchmarks)
		})
	})
}

// handleFuelOptimize solves one alternative-fuel blend.
func (s *Server) handleFuelOptimize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EnergyGJ       float64            `json:"energy_gj"`
		Availability   map[string]float64 `json:"availability"`
		MaxAsh         *float64           `json:"max_ash"`
		MaxMoisture    *float64           `json:"max_moisture"`
		MaxCO2PerGJ    *float64           `json:"max_co2_per_gj"`
		MaxAltFuelRate *float64           `json:"max_alt_fuel_rate"`
		CostPriority   *float64           `json:"cost_priority"`
		Month          int                `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req := mix.NewRequest(body.EnergyGJ)
	if body.Availability != nil {
		req.Availability = body.Availability
	}
	if body.MaxAsh != nil {
		req.MaxAsh = *body.MaxAsh
	}
	if body.MaxMoisture != nil {
		req.MaxMoisture = *body.MaxMoisture
	}
	if body.MaxCO2PerGJ != nil {
		req.MaxCO2PerGJ = *body.MaxCO2PerGJ
	}
	if body.MaxAltFuelRate != nil {
		req.MaxAltFuelRate = *body.MaxAltFuelRate
	}
	if body.CostPriority != nil {
		req.CostPriority = *body.CostPriority
	}
	req.Month = time.Month(body.Month)

	res, err := s.mixer.Optimize(req)
	if err != nil {
		s.metrics.FuelOptimizations.WithLabelValues(outcomeInvalid).Inc()
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if res.Success {
		s.metrics.FuelOptimizations.WithLabelValues(outcomeSuccess).Inc()
	} else {
		s.metrics.FuelOptimizations.WithLabelValues(outcomeInfeasible).Inc()
	}
	s.respondJSON(w, http.StatusOK, mixResultPayload(res))
}

// handleFuelDatabase lists the fuel catalog with this month's caps.
func (s *Server) handleFuelDatabase(w http.ResponseWriter, r *http.Request) {
	month := time.Now().Month()

	profiles := s.catalog.Fuels()
	entries := make([]map[string]interface{}, len(profiles))
	for i, p := range profiles {
		entries[i] = map[string]interface{}{
			"name":                  p.Name,
			"calorific_value_mj_kg": p.CalorificValue,
			"ash":                   p.Ash,
			"moisture":              p.Moisture,
			"cost_per_gj":           p.CostPerGJ,
			"handling_cost_per_gj":  p.Handling.CostPerGJ(),
			"total_cost_per_gj":     p.TotalCostPerGJ(),
			"co2_per_gj":            p.CO2PerGJ,
			"handling":              p.Handling,
			"availability":          p.Availability,
			"effective_cap":         p.EffectiveCap(month),
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"month": month.String(),
		"fuels": entries,
	})
}

// handleFuelSavings projects the monthly and annual savings of the
// default blend against the all-coal baseline.
func (s *Server) handleFuelSavings(w http.ResponseWriter, r *http.Request) {
	production := s.cfg.Plant.MonthlyProductionTonnes
	heatRate := s.cfg.Plant.HeatRateGJPerTonne

	if v := r.URL.Query().Get("production_tonnes"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "production_tonnes must be a positive number")
			return
		}
		production = parsed
	}
	if v := r.URL.Query().Get("heat_rate_gj_per_tonne"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "heat_rate_gj_per_tonne must be a positive number")
			return
		}
		heatRate = parsed
	}

	res, err := s.mixer.Optimize(mix.NewRequest(production * heatRate))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !res.Success {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  res.Reason,
		})
		return
	}

	savings, err := s.mixer.MonthlySavings(res, production, heatRate)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"mix":     res.Mix,
		"savings": map[string]interface{}{
			"monthly_energy_gj":  savings.MonthlyEnergyGJ,
			"monthly_cost_usd":   savings.MonthlyCost,
			"monthly_co2_tonnes": savings.MonthlyCO2Tonnes,
			"annual_cost_usd":    savings.AnnualCost,
			"annual_co2_tonnes":  savings.AnnualCO2Tonnes,
			"production_tonnes":  production,
			"heat_rate_gj_tonne": heatRate,
		},
	})
}

// handleSessionCreate opens a tuning session over the kiln operating
// space. The body is optional; zero fields fall back to configuration.
func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seed          int64 `json:"seed"`
		WarmupSamples int   `json:"warmup_samples"`
		Restarts      int   `json:"restarts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	seed := body.Seed
	if seed == 0 {
		seed = s.cfg.Search.Seed
	}
	warmup := body.WarmupSamples
	if warmup == 0 {
		warmup = s.cfg.Search.WarmupSamples
	}
	restarts := body.Restarts
	if restarts == 0 {
		restarts = s.cfg.Search.Restarts
	}

	search, err := surrogate.New(surrogate.Config{
		Bounds:        process.SearchBounds(),
		WarmupSamples: warmup,
		Restarts:      restarts,
		Seed:          seed,
		Logger:        s.zlog,
	})
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := s.sessions.add(search)
	s.metrics.ActiveSessions.Inc()

	s.logger.Info("Tuning session created", map[string]interface{}{
		"session_id": id,
		"warmup":     search.Warmup(),
	})

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id":     id,
		"warmup_samples": search.Warmup(),
		"bounds":         boundsPayload(),
	})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.remove(id) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.metrics.ActiveSessions.Dec()

	s.logger.Info("Tuning session deleted", map[string]interface{}{
		"session_id": id,
	})
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "deleted",
	})
}

// handleSessionSuggest proposes the next kiln operating point for the
// session.
func (s *Server) handleSessionSuggest(w http.ResponseWriter, r *http.Request) {
	search, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	start := time.Now()
	point := search.SuggestNext()
	s.metrics.SuggestSeconds.Observe(time.Since(start).Seconds())
	s.metrics.Suggestions.Inc()

	n := search.Observations()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"parameters":   process.VectorToMap(point),
		"vector":       point,
		"observations": n,
		"confidence":   process.Confidence(n),
		"warmup":       n < search.Warmup(),
	})
}

// handleSessionObserve records an evaluated operating point. The point
// may arrive as a named-parameter map or a raw vector.
func (s *Server) handleSessionObserve(w http.ResponseWriter, r *http.Request) {
	search, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var body struct {
		Parameters map[string]float64 `json:"parameters"`
		Vector     []float64          `json:"vector"`
		Value      *float64           `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if body.Value == nil {
		s.respondError(w, http.StatusBadRequest, "value is required")
		return
	}

	vector := body.Vector
	if len(vector) == 0 {
		if body.Parameters == nil {
			s.respondError(w, http.StatusBadRequest, "parameters or vector is required")
			return
		}
		mapped, err := process.MapToVector(body.Parameters)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		vector = mapped
	}

	if err := search.Update(vector, *body.Value); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.Observations.Inc()

	best, _ := search.Best()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"observations": search.Observations(),
		"best": map[string]interface{}{
			"parameters": process.VectorToMap(best.Params),
			"value":      best.Value,
		},
	})
}

// handleProcessScore rates one operating point without a session.
func (s *Server) handleProcessScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Parameters         map[string]float64 `json:"parameters"`
		AmbientTemperature *float64           `json:"ambient_temperature"`
		FuelAvailability   map[string]float64 `json:"fuel_availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	vector, err := process.MapToVector(body.Parameters)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	score := s.objective.Score(vector, process.ScoreContext{
		AmbientTemperature: body.AmbientTemperature,
		FuelAvailability:   body.FuelAvailability,
	})

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":      score,
		"parameters": body.Parameters,
	})
}

func (s *Server) handleChemistryValidate(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.decodeComposition(w, r)
	if !ok {
		return
	}

	v := chemistry.Validate(comp)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"lsf":       v.LSF,
		"sm":        v.SM,
		"am":        v.AM,
		"lsf_valid": v.LSFValid,
		"sm_valid":  v.SMValid,
		"am_valid":  v.AMValid,
		"valid":     v.Valid,
		"undefined": v.Undefined,
	})
}

func (s *Server) handleChemistryPhases(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.decodeComposition(w, r)
	if !ok {
		return
	}

	phases, defined := chemistry.ClinkerPhases(comp)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"c3s":     phases.C3S,
		"c2s":     phases.C2S,
		"c3a":     phases.C3A,
		"c4af":    phases.C4AF,
		"defined": defined,
	})
}

func (s *Server) decodeComposition(w http.ResponseWriter, r *http.Request) (chemistry.Composition, bool) {
	var body struct {
		CaO   float64 `json:"cao"`
		SiO2  float64 `json:"sio2"`
		Al2O3 float64 `json:"al2o3"`
		Fe2O3 float64 `json:"fe2o3"`
		SO3   float64 `json:"so3"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return chemistry.Composition{}, false
	}
	return chemistry.Composition{
		CaO:   body.CaO,
		SiO2:  body.SiO2,
		Al2O3: body.Al2O3,
		Fe2O3: body.Fe2O3,
		SO3:   body.SO3,
	}, true
}

// handleSustainabilityScore rates the plant and prices its emissions.
func (s *Server) handleSustainabilityScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CarbonIntensity   float64 `json:"carbon_intensity"`
		AltFuelRatePct    float64 `json:"alt_fuel_rate_percent"`
		SpecificPower     float64 `json:"specific_power_kwh_t"`
		WasteHeatRecovery float64 `json:"waste_heat_recovery"`
		CircularEconomy   float64 `json:"circular_economy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	score := s.scorer.Score(sustain.Input{
		CarbonIntensity:   body.CarbonIntensity,
		AltFuelRate:       body.AltFuelRatePct,
		SpecificPower:     body.SpecificPower,
		WasteHeatRecovery: body.WasteHeatRecovery,
		CircularEconomy:   body.CircularEconomy,
	})

	annualTonnes := sustain.AnnualEmissionsTonnes(body.CarbonIntensity)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":                   score,
		"benchmark_comparison":    sustain.CompareToBenchmarks(body.CarbonIntensity),
		"annual_emissions_tonnes": annualTonnes,
		"carbon_cost":             sustain.CarbonCost(annualTonnes),
	})
}

func (s *Server) handleCarbonBenchmarks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"benchmarks": sustain.Benchmarks(),
		"emission_factors": map[string]float64{
			"electricity":         sustain.ElectricityFactor,
			"coal":                sustain.CoalFactor,
			"diesel":              sustain.DieselFactor,
			"clinker_calcination": sustain.CalcinationFactor,
			"transport":           sustain.TransportFactor,
		},
	})
}

// Close releases session state.
func (s *Server) Close() error {
	s.sessions.clear()
	return nil
}

func mixResultPayload(res mix.Result) map[string]interface{} {
	payload := map[string]interface{}{
		"success": res.Success,
	}
	if !res.Success {
		payload["reason"] = res.Reason
		return payload
	}

	payload["fractions"] = res.Fractions
	payload["mix"] = res.Mix
	payload["properties"] = map[string]interface{}{
		"calorific_value_mj_kg": res.Properties.CalorificValue,
		"ash":                   res.Properties.Ash,
		"moisture":              res.Properties.Moisture,
		"co2_per_gj":            res.Properties.CO2PerGJ,
		"alt_fuel_rate":         res.Properties.AltFuelRate,
	}
	payload["economics"] = map[string]interface{}{
		"cost_per_gj":           res.Economics.CostPerGJ,
		"baseline_cost_per_gj":  res.Economics.BaselineCostPerGJ,
		"cost_delta_per_gj":     res.Economics.CostDeltaPerGJ,
		"savings_percent":       res.Economics.SavingsPercent,
		"baseline_co2_per_gj":   res.Economics.BaselineCO2PerGJ,
		"co2_delta_per_gj":      res.Economics.CO2DeltaPerGJ,
		"co2_reduction_percent": res.Economics.CO2ReductionPercent,
	}
	return payload
}

func boundsPayload() []map[string]interface{} {
	bounds := process.Bounds()
	out := make([]map[string]interface{}, len(bounds))
	for i, b := range bounds {
		out[i] = map[string]interface{}{
			"name": b.Name,
			"min":  b.Min,
			"max":  b.Max,
		}
	}
	return out
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{
			"status":  status,
			"message": message,
		})
	} else {
		s.logger.Warn("Request rejected", map[string]interface{}{
			"status":  status,
			"message": message,
		})
	}

	s.respondJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
