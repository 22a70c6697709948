package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"geopuzzle/internal/coords"
	"geopuzzle/internal/detect"
	"geopuzzle/internal/formula"
	"geopuzzle/internal/fragments"
	formulaplugin "geopuzzle/internal/plugins/formula"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
)

// DetectRequest is the body of POST /coordinates/detect.
type DetectRequest struct {
	Text  string `json:"text"`
	Trace bool   `json:"trace,omitempty"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) error {
	var req DetectRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if req.Text == "" {
		return badRequest("text is required")
	}

	if req.Trace {
		writeJSON(w, http.StatusOK, detect.DetectWithTrace(req.Text))
		return nil
	}

	res := detect.Detect(req.Text)
	out := map[string]any{
		"result": res,
	}
	if d := res.Decimal(); d.Complete() {
		out["decimal"] = d
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// ConvertRequest converts in either direction: decimal degrees to DDM when
// latitude/longitude are set, DDM to decimal when ddm_lat/ddm_lon are.
type ConvertRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	DDMLat    string   `json:"ddm_lat,omitempty"`
	DDMLon    string   `json:"ddm_lon,omitempty"`
}

// ConvertResponse carries both forms.
type ConvertResponse struct {
	DDMLat  string         `json:"ddm_lat"`
	DDMLon  string         `json:"ddm_lon"`
	DDM     string         `json:"ddm"`
	Decimal coords.Decimal `json:"decimal"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) error {
	var req ConvertRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	var out ConvertResponse
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		lat, lon := *req.Latitude, *req.Longitude
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return badRequest(coords.ErrInvalidCoordinate.Error())
		}
		out.DDMLat, out.DDMLon = coords.FormatLatitude(lat), coords.FormatLongitude(lon)
		out.Decimal = coords.Decimal{Latitude: &lat, Longitude: &lon}
	case req.DDMLat != "" && req.DDMLon != "":
		out.Decimal = coords.ToDecimal(req.DDMLat, req.DDMLon)
		if !out.Decimal.Complete() {
			return badRequest(coords.ErrInvalidCoordinate.Error())
		}
		out.DDMLat = coords.FormatLatitude(*out.Decimal.Latitude)
		out.DDMLon = coords.FormatLongitude(*out.Decimal.Longitude)
	default:
		return badRequest("latitude/longitude or ddm_lat/ddm_lon are required")
	}
	out.DDM = out.DDMLat + " " + out.DDMLon

	writeJSON(w, http.StatusOK, out)
	return nil
}

// DistanceRequest is the body of POST /coordinates/distance.
type DistanceRequest struct {
	OriginLat string `json:"origin_lat"`
	OriginLon string `json:"origin_lon"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) error {
	var req DistanceRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	res, err := coords.Distance(req.OriginLat, req.OriginLon, req.Lat, req.Lon)
	if err != nil {
		if errors.Is(err, coords.ErrInvalidCoordinate) {
			return badRequest(err.Error())
		}
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// FormulaRequest is the body of POST /formula.
type FormulaRequest struct {
	Formula   string `json:"formula"`
	Variables any    `json:"variables,omitempty"` // object or "A=1,B=2"
	OriginLat string `json:"origin_lat,omitempty"`
	OriginLon string `json:"origin_lon,omitempty"`
}

func (s *Server) handleFormula(w http.ResponseWriter, r *http.Request) error {
	var req FormulaRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	vars, err := formulaplugin.Variables(req.Variables)
	if err != nil {
		return badRequest("variables: " + err.Error())
	}

	var opts []formula.Option
	if req.OriginLat != "" && req.OriginLon != "" {
		opts = append(opts, formula.WithOrigin(req.OriginLat, req.OriginLon))
	}

	res, err := formula.Resolve(req.Formula, vars, opts...)
	if err != nil {
		if errors.Is(err, formula.ErrMalformedFormula) {
			return badRequest(err.Error())
		}
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// PluginInfo is one entry of GET /plugins.
type PluginInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Scannable   bool   `json:"scannable"`
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	var out []PluginInfo
	for _, p := range s.registry.Plugins() {
		_, scannable := p.(registry.Checker)
		out = append(out, PluginInfo{
			Name:        p.Name(),
			Description: p.Description(),
			Priority:    p.Priority(),
			Scannable:   scannable,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExecutePlugin(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")

	var inputs registry.Inputs
	if err := decode(r, &inputs); err != nil {
		return err
	}

	resp, err := s.registry.Execute(name, inputs)
	if errors.Is(err, registry.ErrUnknownPlugin) {
		writeJSON(w, http.StatusNotFound, resp)
		return nil
	}

	if s.archive != nil {
		run, err := storage.Save(r.Context(), s.archive, resp)
		if err != nil {
			s.logger.Warn("archive run failed", zap.String("plugin", name), zap.Error(err))
		} else {
			w.Header().Set("X-Run-ID", run.ID)
		}
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// handleScan runs every scannable plugin over "text". The extraction options
// use the same keys as plugin inputs: strict, embedded, allowed_chars.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) error {
	var in registry.Inputs
	if err := decode(r, &in); err != nil {
		return err
	}
	text := in.String("text", "")
	if text == "" {
		return badRequest("text is required")
	}

	opts := fragments.ParseOptions(in, fragments.Options{Strict: true})
	matches := s.registry.Scan(text, opts)
	if matches == nil {
		matches = []registry.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
	return nil
}

func (s *Server) requireArchive() error {
	if s.archive == nil {
		return &apiError{Status: http.StatusServiceUnavailable, Message: "run archive is disabled"}
	}
	return nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireArchive(); err != nil {
		return err
	}

	q := r.URL.Query()
	p := storage.ListParams{
		Plugin: q.Get("plugin"),
		Status: q.Get("status"),
	}
	for key, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return badRequest("invalid " + key)
			}
			*dst = n
		}
	}
	if p.Limit > 1000 {
		return badRequest("Maximum 1000 runs per request")
	}

	runs, err := s.archive.ListRuns(r.Context(), p)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
	return nil
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireArchive(); err != nil {
		return err
	}

	run, err := s.archive.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound("No run found")
		}
		return err
	}
	writeJSON(w, http.StatusOK, run)
	return nil
}

func (s *Server) handleRunStats(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireArchive(); err != nil {
		return err
	}

	stats, err := s.archive.Stats(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, stats)
	return nil
}
