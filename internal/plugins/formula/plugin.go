// Package formula exposes the coordinate formula resolver as a plugin.
package formula

import (
	"fmt"

	"go.uber.org/zap"

	"geopuzzle/internal/formula"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Plugin resolves formulas such as "N 48° (A+1).(B*2)3 E 006° 11.C85".
type Plugin struct{}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string        { return "formula" }
func (p *Plugin) Description() string { return "Substitute variables into a coordinate formula and evaluate it" }
func (p *Plugin) Priority() int       { return 2 }

var confidence = map[formula.Status]float64{
	formula.StatusComplete: 1,
	formula.StatusPartial:  0.5,
	formula.StatusError:    0,
}

// Execute reads "formula" (or "text"), "variables" and the optional origin.
func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	resp := registry.NewResponse(p.Name(), req.Inputs)

	f := req.Inputs.String("formula", req.Inputs.String("text", ""))
	if f == "" {
		return resp.Fail("formula is required")
	}

	vars, err := Variables(req.Inputs["variables"])
	if err != nil {
		return resp.Fail("variables: %v", err)
	}

	var opts []formula.Option
	if lat, lon, ok := pluginkit.Origin(req.Inputs); ok {
		opts = append(opts, formula.WithOrigin(lat, lon))
	}

	res, err := formula.Resolve(f, vars, opts...)
	if err != nil {
		pluginkit.Logger(req).Debug("formula rejected", zap.String("formula", f), zap.Error(err))
		return resp.Fail("%v", err)
	}

	resp.AddResult(res.Coordinates, confidence[res.Status], map[string]any{
		"variables": vars,
	}, map[string]any{
		"formula": res,
		"status":  res.Status,
	})
	resp.Summary.Message = fmt.Sprintf("formula %s", res.Status)
	return resp.Finish()
}

// Variables accepts a JSON object of letter to number, or the "A=1,B=2" text form.
func Variables(v any) (map[string]int, error) {
	switch vv := v.(type) {
	case nil:
		return map[string]int{}, nil
	case string:
		return formula.ParseVariables(vv)
	case map[string]int:
		return vv, nil
	case map[string]any:
		in := registry.Inputs(vv)
		out := make(map[string]int, len(vv))
		for k := range vv {
			f, ok := in.Float(k)
			if !ok {
				return nil, fmt.Errorf("%s is not a number", k)
			}
			out[k] = int(f)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}
