package coords

import (
	"errors"
	"math"
	"testing"
)

// almostEqual checks if two floats are equal within a tolerance.
func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestParseDDM(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantDir string
		wantDeg int
		wantMin float64
		wantOK  bool
	}{
		{"canonical latitude", "N 48° 33.787'", "N", 48, 33.787, true},
		{"no spaces", "N48°40.123", "N", 48, 40.123, true},
		{"space after degree sign", "N48° 40.123", "N", 48, 40.123, true},
		{"two digit longitude", "E06°11.685", "E", 6, 11.685, true},
		{"padded longitude", "E 006° 38.803'", "E", 6, 38.803, true},
		{"comma decimal", "S 33° 51,500", "S", 33, 51.5, true},
		{"lowercase direction", "w 122 25.100", "W", 122, 25.1, true},
		{"minutes out of range", "N 48° 75.000", "", 0, 0, false},
		{"latitude out of range", "N 95° 10.000", "", 0, 0, false},
		{"missing direction", "48° 33.787", "", 0, 0, false},
		{"empty", "", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDDM(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDDM(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Direction != tt.wantDir {
				t.Errorf("Direction = %q, want %q", got.Direction, tt.wantDir)
			}
			if got.Degrees != tt.wantDeg {
				t.Errorf("Degrees = %d, want %d", got.Degrees, tt.wantDeg)
			}
			if !almostEqual(got.Minutes, tt.wantMin, 1e-9) {
				t.Errorf("Minutes = %f, want %f", got.Minutes, tt.wantMin)
			}
		})
	}
}

func TestToDecimal(t *testing.T) {
	got := ToDecimal("N 48° 33.787'", "E 006° 38.803'")
	if !got.Complete() {
		t.Fatalf("expected both halves, got %+v", got)
	}
	if !almostEqual(*got.Latitude, 48+33.787/60, 1e-9) {
		t.Errorf("Latitude = %f", *got.Latitude)
	}
	if !almostEqual(*got.Longitude, 6+38.803/60, 1e-9) {
		t.Errorf("Longitude = %f", *got.Longitude)
	}

	south := ToDecimal("S 33° 51.500'", "W 070° 40.000'")
	if !almostEqual(*south.Latitude, -(33 + 51.5/60), 1e-9) {
		t.Errorf("south Latitude = %f", *south.Latitude)
	}
	if !almostEqual(*south.Longitude, -(70 + 40.0/60), 1e-9) {
		t.Errorf("west Longitude = %f", *south.Longitude)
	}
}

func TestToDecimalHalfFailure(t *testing.T) {
	got := ToDecimal("N 48° 33.787'", "garbage")
	if got.Latitude == nil {
		t.Fatal("expected latitude to survive a bad longitude")
	}
	if got.Longitude != nil {
		t.Errorf("expected nil longitude, got %f", *got.Longitude)
	}
	if got.Complete() {
		t.Error("Complete() = true, want false")
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"N 48° 33.787'",
		"S 00° 00.001'",
		"N 89° 59.999'",
		"E 006° 38.803'",
		"W 179° 59.999'",
		"E 000° 30.000'",
	}

	for _, in := range inputs {
		d, ok := ParseDDM(in)
		if !ok {
			t.Fatalf("ParseDDM(%q) failed", in)
		}
		var formatted string
		if d.IsLatitude() {
			formatted = FormatLatitude(d.Decimal())
		} else {
			formatted = FormatLongitude(d.Decimal())
		}
		back, ok := ParseDDM(formatted)
		if !ok {
			t.Fatalf("ParseDDM(%q) failed after formatting %q", formatted, in)
		}
		if !almostEqual(back.Decimal(), d.Decimal(), 1e-3) {
			t.Errorf("round trip %q -> %q: %f vs %f", in, formatted, back.Decimal(), d.Decimal())
		}
		if formatted != in {
			t.Errorf("FormatX(%q) = %q", in, formatted)
		}
	}
}

func TestFromDecimalMinuteCarry(t *testing.T) {
	got := FromDecimal(47.9999999, true)
	if got.Degrees != 48 || got.Minutes != 0 {
		t.Errorf("FromDecimal carry = %+v, want 48° 0'", got)
	}
}

func TestParseDigitBlock(t *testing.T) {
	tests := []struct {
		name      string
		block     string
		degDigits int
		dir       string
		want      string
		wantErr   bool
	}{
		{"seven digit latitude", "4833787", 2, "N", "N 48° 33.787'", false},
		{"eight digit longitude", "00638803", 3, "E", "E 006° 38.803'", false},
		{"dotted latitude", "4833.787", 2, "N", "N 48° 33.787'", false},
		{"short decimals", "483378", 2, "N", "N 48° 33.780'", false},
		{"too short", "483", 2, "N", "", true},
		{"minutes out of range", "4875000", 2, "N", "", true},
		{"non digit", "48AB787", 2, "N", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDigitBlock(tt.block, tt.degDigits, tt.dir)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDigitBlock(%q) = %q, want %q", tt.block, got.String(), tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	got, err := Distance("N48° 40.123", "E06° 10.456", "N48° 39.286", "E06°11.685")
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	// Ellipsoidal inverse for these endpoints is about 2164 m.
	if !almostEqual(got.Meters, 2164.1, 3) {
		t.Errorf("Meters = %f, want ~2164.1", got.Meters)
	}
	if !almostEqual(got.Miles, got.Meters/MetersPerMile, 0.01) {
		t.Errorf("Miles = %f inconsistent with meters %f", got.Miles, got.Meters)
	}
	if got.Status != ProximityOK {
		t.Errorf("Status = %q, want %q", got.Status, ProximityOK)
	}
}

func TestDistanceZero(t *testing.T) {
	got, err := Distance("N 48° 33.787'", "E 006° 38.803'", "N 48° 33.787'", "E 006° 38.803'")
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if got.Meters != 0 || got.Status != ProximityOK {
		t.Errorf("got %+v, want zero ok", got)
	}
}

func TestDistanceInvalid(t *testing.T) {
	_, err := Distance("N 48° 33.787'", "nope", "N 48° 33.787'", "E 006° 38.803'")
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
	_, err = Distance("N 48° 33.787'", "E 006° 38.803'", "", "E 006° 38.803'")
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		miles float64
		want  Proximity
	}{
		{0, ProximityOK},
		{2.0, ProximityOK},
		{2.0001, ProximityWarning},
		{2.5, ProximityWarning},
		{2.5001, ProximityFar},
		{40, ProximityFar},
	}
	for _, tt := range tests {
		if got := Classify(tt.miles); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.miles, got, tt.want)
		}
	}
}

func TestDistanceFar(t *testing.T) {
	// Roughly 4.4 km due north: beyond the 2.5 mile threshold.
	got := DistanceDecimal(48.0, 6.0, 48.04, 6.0)
	if got.Status != ProximityFar {
		t.Errorf("Status = %q for %f miles, want far", got.Status, got.Miles)
	}
}
