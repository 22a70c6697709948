package registry

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Status of a plugin response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// PluginInfo identifies the plugin that produced a response.
type PluginInfo struct {
	Name            string  `json:"name"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
}

// Result is one candidate output of a plugin.
type Result struct {
	ID         string         `json:"id"`
	TextOutput string         `json:"text_output"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters"`
	Metadata   map[string]any `json:"metadata"`
}

// Summary describes the result set.
type Summary struct {
	BestResultID string `json:"best_result_id"`
	TotalResults int    `json:"total_results"`
	Message      string `json:"message"`
}

// Response is the envelope every plugin returns.
type Response struct {
	Status     Status     `json:"status"`
	PluginInfo PluginInfo `json:"plugin_info"`
	Inputs     Inputs     `json:"inputs"`
	Results    []Result   `json:"results"`
	Summary    Summary    `json:"summary"`

	started time.Time
}

// NewResponse starts a response and its execution clock.
func NewResponse(plugin string, inputs Inputs) *Response {
	if inputs == nil {
		inputs = Inputs{}
	}
	return &Response{
		Status:     StatusSuccess,
		PluginInfo: PluginInfo{Name: plugin},
		Inputs:     inputs,
		Results:    []Result{},
		started:    time.Now(),
	}
}

// AddResult appends a candidate. Nil maps are replaced by empty ones.
func (r *Response) AddResult(text string, confidence float64, params, meta map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	r.Results = append(r.Results, Result{
		TextOutput: text,
		Confidence: clamp01(confidence),
		Parameters: params,
		Metadata:   meta,
	})
}

// Fail marks the response as an error and finishes it.
func (r *Response) Fail(format string, args ...any) *Response {
	r.Status = StatusError
	r.Summary.Message = fmt.Sprintf(format, args...)
	return r.Finish()
}

// Finish orders results by descending confidence, assigns ids and fills the
// summary and the execution time. It is safe to call more than once.
func (r *Response) Finish() *Response {
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Confidence > r.Results[j].Confidence
	})
	for i := range r.Results {
		r.Results[i].ID = fmt.Sprintf("result_%d", i+1)
	}

	r.Summary.TotalResults = len(r.Results)
	r.Summary.BestResultID = ""
	if len(r.Results) > 0 {
		r.Summary.BestResultID = r.Results[0].ID
	}
	if r.Summary.Message == "" {
		switch len(r.Results) {
		case 0:
			r.Summary.Message = "no result"
		case 1:
			r.Summary.Message = "1 result"
		default:
			r.Summary.Message = fmt.Sprintf("%d results", len(r.Results))
		}
	}

	if !r.started.IsZero() {
		r.PluginInfo.ExecutionTimeMS = elapsedMS(r.started)
	}
	return r
}

// Best returns the highest-confidence result, if any.
func (r *Response) Best() (Result, bool) {
	if len(r.Results) == 0 {
		return Result{}, false
	}
	return r.Results[0], true
}

func elapsedMS(since time.Time) float64 {
	return math.Round(float64(time.Since(since).Microseconds())) / 1000
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
