// Package pluginkit holds the decode, detect and enrich steps shared by the
// codec plugins.
package pluginkit

import (
	"strings"

	"go.uber.org/zap"

	"geopuzzle/internal/coords"
	"geopuzzle/internal/detect"
	"geopuzzle/internal/fragments"
	"geopuzzle/internal/registry"
)

// Codec describes a plugin that converts located fragments of one alphabet.
type Codec struct {
	Name      string
	Extractor *fragments.Extractor
	Defaults  fragments.Options

	// DecodeFragment converts one fragment. Returning false leaves it untouched.
	DecodeFragment func(fragments.Fragment) (string, bool)

	// Encode converts plain text into the alphabet. Nil disables encode mode.
	Encode func(text string) (string, error)
}

// Check runs the codec's extractor.
func (c *Codec) Check(text string, opts fragments.Options) fragments.CheckResult {
	return c.Extractor.Check(text, opts)
}

// Run dispatches on the "mode" input: decode (default), encode or detect.
func (c *Codec) Run(req *registry.Request) *registry.Response {
	resp := registry.NewResponse(c.Name, req.Inputs)
	text := req.Inputs.String("text", "")
	if strings.TrimSpace(text) == "" {
		return resp.Fail("text is required")
	}

	opts := fragments.ParseOptions(req.Inputs, c.Defaults)
	params := map[string]any{
		"strict":   opts.Strict,
		"embedded": opts.Embedded,
	}

	switch mode := req.Inputs.Mode("decode"); mode {
	case "decode":
		params["mode"] = mode
		check := c.Extractor.Check(text, opts)
		if !check.IsMatch {
			resp.Summary.Message = "no " + c.Name + " content found"
			return resp.Finish()
		}
		out := fragments.Decode(text, check.Fragments, c.DecodeFragment)
		AddDecoded(resp, req, out, check, params)

	case "detect":
		params["mode"] = mode
		check := c.Extractor.Check(text, opts)
		if !check.IsMatch {
			resp.Summary.Message = "no " + c.Name + " content found"
			return resp.Finish()
		}
		values := make([]string, len(check.Fragments))
		for i, f := range check.Fragments {
			values[i] = f.Value
		}
		resp.AddResult(strings.Join(values, " "), check.Score, params, map[string]any{
			"fragments": check.Fragments,
		})

	case "encode":
		if c.Encode == nil {
			return resp.Fail("%s does not support encode mode", c.Name)
		}
		out, err := c.Encode(text)
		if err != nil {
			Logger(req).Debug("encode failed", zap.Error(err))
			return resp.Fail("encode: %v", err)
		}
		resp.AddResult(out, 1, map[string]any{"mode": mode}, nil)

	default:
		return resp.Fail("unsupported mode %q", mode)
	}

	return resp.Finish()
}

// AddDecoded appends a decoded candidate with fragment metadata and, when the
// output holds a coordinate, the detected position. Confidence is the
// fragment coverage, raised by the scorer's GPS weight on a detection.
func AddDecoded(resp *registry.Response, req *registry.Request, out string, check fragments.CheckResult, params map[string]any) {
	meta := map[string]any{
		"fragments":      check.Fragments,
		"fragment_score": check.Score,
	}
	confidence := check.Score
	if Enrich(meta, out, req.Inputs) {
		confidence += req.Scorer.Weights.GPS
	}
	resp.AddResult(out, confidence, params, meta)
}

// Logger returns the request logger, or a no-op logger for direct calls.
func Logger(req *registry.Request) *zap.Logger {
	if req.Logger == nil {
		return zap.NewNop()
	}
	return req.Logger
}

// Origin reads the optional origin_lat / origin_lon inputs.
func Origin(in registry.Inputs) (lat, lon string, ok bool) {
	lat = in.String("origin_lat", "")
	lon = in.String("origin_lon", "")
	return lat, lon, lat != "" && lon != ""
}

// Enrich runs coordinate detection over text and, on a hit, stores the
// detection, its decimal form and the distance to an optional origin in meta.
func Enrich(meta map[string]any, text string, in registry.Inputs) bool {
	res := detect.Detect(text)
	if !res.Exist {
		return false
	}
	meta["coordinates"] = res

	if d := res.Decimal(); d.Complete() {
		meta["decimal"] = d
	}

	if lat, lon, ok := Origin(in); ok {
		dist, err := coords.Distance(lat, lon, res.DDMLat, res.DDMLon)
		if err != nil {
			meta["distance_error"] = err.Error()
		} else {
			meta["distance"] = dist
		}
	}
	return true
}
