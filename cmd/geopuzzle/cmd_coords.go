package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"geopuzzle/internal/coords"
	"geopuzzle/internal/detect"
	"geopuzzle/internal/formula"
	formulaplugin "geopuzzle/internal/plugins/formula"
)

var detectTrace bool

var detectCmd = &cobra.Command{
	Use:   "detect <text>",
	Short: "Find a GPS coordinate in text",
	Long: `Run the coordinate detectors over the text and print the normalised
DDM position. With --trace every detector's view is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if detectTrace {
			return printJSON(cmd, detect.DetectWithTrace(text))
		}
		return printJSON(cmd, detect.Detect(text))
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <latitude> <longitude>",
	Short: "Convert decimal degrees to DDM, or DDM halves to decimal",
	Long: `Convert between decimal degrees and degrees/decimal-minutes:

  geopuzzle convert 48.563117 6.646717
  geopuzzle convert "N 48° 33.787'" "E 006° 38.803'"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)

		if latErr == nil && lonErr == nil {
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return fmt.Errorf("%v, %v: %w", lat, lon, coords.ErrInvalidCoordinate)
			}
			latDDM, lonDDM := coords.FormatLatitude(lat), coords.FormatLongitude(lon)
			return printJSON(cmd, map[string]any{
				"ddm_lat": latDDM,
				"ddm_lon": lonDDM,
				"ddm":     latDDM + " " + lonDDM,
			})
		}

		d := coords.ToDecimal(args[0], args[1])
		if !d.Complete() {
			return fmt.Errorf("%q %q: %w", args[0], args[1], coords.ErrInvalidCoordinate)
		}
		return printJSON(cmd, d)
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance <origin_lat> <origin_lon> <lat> <lon>",
	Short: "Geodesic distance between two DDM positions",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := coords.Distance(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var (
	formulaVars      string
	formulaOriginLat string
	formulaOriginLon string
)

var formulaCmd = &cobra.Command{
	Use:   "formula <formula>",
	Short: "Resolve a coordinate formula",
	Long: `Substitute variables into a formula and evaluate its arithmetic groups:

  geopuzzle formula "N 48° (A+1).(B*2)3 E 006° 11.C85" --vars "A=3,B=4,C=2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := formulaplugin.Variables(formulaVars)
		if err != nil {
			return fmt.Errorf("--vars: %w", err)
		}

		var opts []formula.Option
		if formulaOriginLat != "" && formulaOriginLon != "" {
			opts = append(opts, formula.WithOrigin(formulaOriginLat, formulaOriginLon))
		}

		res, err := formula.Resolve(strings.Join(args, " "), vars, opts...)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectTrace, "trace", false, "Show every detector's result")

	formulaCmd.Flags().StringVar(&formulaVars, "vars", "", `Variables, e.g. "A=1,B=2"`)
	formulaCmd.Flags().StringVar(&formulaOriginLat, "origin-lat", "", "Listed latitude for the distance check")
	formulaCmd.Flags().StringVar(&formulaOriginLon, "origin-lon", "", "Listed longitude for the distance check")
}
