// Package coordinates exposes the coordinate detector as a plugin.
package coordinates

import (
	"geopuzzle/internal/coords"
	"geopuzzle/internal/detect"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Plugin detects, converts and traces coordinates.
type Plugin struct{}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string        { return "coordinates" }
func (p *Plugin) Description() string { return "Find GPS coordinates in text and measure the distance to an origin" }
func (p *Plugin) Priority() int       { return 1 }

// Execute supports three modes:
//
//	detect  (default) text -> canonical DDM, decimal position and distance
//	convert latitude/longitude in decimal degrees -> DDM
//	trace   text -> every detector's view of the text
func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	resp := registry.NewResponse(p.Name(), req.Inputs)

	switch mode := req.Inputs.Mode("detect"); mode {
	case "detect":
		text := req.Inputs.String("text", "")
		if text == "" {
			return resp.Fail("text is required")
		}
		meta := map[string]any{}
		if !pluginkit.Enrich(meta, text, req.Inputs) {
			resp.Summary.Message = "no coordinates found"
			return resp.Finish()
		}
		res := meta["coordinates"].(detect.Result)
		resp.AddResult(res.DDM, 1, map[string]any{"mode": mode}, meta)

	case "convert":
		lat, okLat := req.Inputs.Float("latitude")
		lon, okLon := req.Inputs.Float("longitude")
		if !okLat || !okLon {
			return resp.Fail("latitude and longitude are required")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return resp.Fail("%v", coords.ErrInvalidCoordinate)
		}
		ddmLat, ddmLon := coords.FormatLatitude(lat), coords.FormatLongitude(lon)
		meta := map[string]any{
			"ddm_lat": ddmLat,
			"ddm_lon": ddmLon,
		}
		if oLat, oLon, ok := pluginkit.Origin(req.Inputs); ok {
			if dist, err := coords.Distance(oLat, oLon, ddmLat, ddmLon); err == nil {
				meta["distance"] = dist
			} else {
				meta["distance_error"] = err.Error()
			}
		}
		resp.AddResult(ddmLat+" "+ddmLon, 1, map[string]any{"mode": mode}, meta)

	case "trace":
		text := req.Inputs.String("text", "")
		if text == "" {
			return resp.Fail("text is required")
		}
		trace := detect.DetectWithTrace(text)
		confidence := 0.0
		if trace.Result.Exist {
			confidence = 1
		}
		resp.AddResult(trace.Result.DDM, confidence, map[string]any{"mode": mode}, map[string]any{
			"trace": trace,
		})

	default:
		return resp.Fail("unsupported mode %q", mode)
	}

	return resp.Finish()
}
