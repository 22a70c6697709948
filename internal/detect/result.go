// Package detect recognises GPS coordinates written in the textual conventions
// found in geocache listings and in decoded puzzle output.
package detect

import (
	"encoding/json"

	"geopuzzle/internal/coords"
)

// Result is the outcome of a detection call. When Exist is false the three
// strings are empty and serialise as null.
type Result struct {
	Exist  bool
	DDMLat string
	DDMLon string
	DDM    string
}

type resultJSON struct {
	Exist  bool    `json:"exist"`
	DDMLat *string `json:"ddm_lat"`
	DDMLon *string `json:"ddm_lon"`
	DDM    *string `json:"ddm"`
}

// MarshalJSON emits null coordinate strings for a negative result.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Exist: r.Exist}
	if r.Exist {
		out.DDMLat, out.DDMLon, out.DDM = &r.DDMLat, &r.DDMLon, &r.DDM
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{Exist: in.Exist}
	if in.DDMLat != nil {
		r.DDMLat = *in.DDMLat
	}
	if in.DDMLon != nil {
		r.DDMLon = *in.DDMLon
	}
	if in.DDM != nil {
		r.DDM = *in.DDM
	}
	return nil
}

// Decimal converts the detected position to decimal degrees.
func (r Result) Decimal() coords.Decimal {
	if !r.Exist {
		return coords.Decimal{}
	}
	return coords.ToDecimal(r.DDMLat, r.DDMLon)
}

// found builds a positive result from two rendered halves.
func found(lat, lon string) *Result {
	return &Result{
		Exist:  true,
		DDMLat: lat,
		DDMLon: lon,
		DDM:    lat + " " + lon,
	}
}

// fromDDM validates both halves and renders them in canonical form.
func fromDDM(lat, lon coords.DDM) *Result {
	if !lat.IsLatitude() || lon.IsLatitude() {
		return nil
	}
	if !lat.Valid() || !lon.Valid() {
		return nil
	}
	return found(lat.String(), lon.String())
}
