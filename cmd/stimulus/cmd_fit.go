package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sloria/stimulus/internal/psychfit"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit <data.csv>",
		Short: "Fit a psychometric function to intensity/response data",
		Long: `Fit reads CSV rows of stimulus intensity and response proportion and
fits the chosen psychometric model. A header row is skipped when its
first field is not numeric.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			chance, _ := cmd.Flags().GetFloat64("chance")
			at, _ := cmd.Flags().GetFloat64("threshold-at")

			levels, responses, err := readFitData(args[0])
			if err != nil {
				return err
			}

			var fit *psychfit.Fit
			switch model {
			case "cumnormal":
				fit, err = psychfit.FitCumNormal(levels, responses, chance)
			case "weibull":
				fit, err = psychfit.FitWeibull(levels, responses, chance)
			case "logistic":
				fit, err = psychfit.FitLogistic(levels, responses, chance)
			default:
				return fmt.Errorf("unknown model %q (want cumnormal, weibull or logistic)", model)
			}
			if err != nil {
				return err
			}

			fmt.Printf("model: %s (%d points, chance %g)\n", fit.Model, len(levels), chance)
			fmt.Printf("params: %.6g %.6g\n", fit.Params[0], fit.Params[1])
			fmt.Printf("sse: %.6g\n", fit.SSE)
			fmt.Printf("threshold @ %.2f: %.6g\n", at, fit.Threshold(at))
			return nil
		},
	}

	cmd.Flags().String("model", "cumnormal", "Model: cumnormal, weibull or logistic")
	cmd.Flags().Float64("chance", 0.5, "Chance response level (lower asymptote)")
	cmd.Flags().Float64("threshold-at", 0.75, "Response level to report the threshold for")

	return cmd
}

func readFitData(path string) (levels, responses []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, nil, fmt.Errorf("%s line %d: want intensity,response", path, i+1)
		}
		x, xerr := strconv.ParseFloat(rec[0], 64)
		y, yerr := strconv.ParseFloat(rec[1], 64)
		if xerr != nil || yerr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, nil, fmt.Errorf("%s line %d: non-numeric data", path, i+1)
		}
		levels = append(levels, x)
		responses = append(responses, y)
	}
	if len(levels) == 0 {
		return nil, nil, fmt.Errorf("%s: no data rows", path)
	}
	return levels, responses, nil
}
