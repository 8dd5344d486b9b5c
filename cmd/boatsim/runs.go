package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/boatsim/internal/analysis"
	"github.com/san-kum/boatsim/internal/export"
	"github.com/san-kum/boatsim/internal/storage"
	"github.com/san-kum/boatsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	listPreset string
	listLimit  int
	bestMetric string
	lowest     bool
	plotASCII  bool
	spectrumOf string
	svgOut     string
	svgWidth   int
	svgHeight  int
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	cmd.Flags().StringVar(&listPreset, "preset", "", "only runs of this preset (needs a catalog)")
	cmd.Flags().IntVar(&listLimit, "limit", 0, "show at most this many runs (needs a catalog)")
	cmd.Flags().StringVar(&bestMetric, "best", "", "show the best run by this metric (needs a catalog)")
	cmd.Flags().BoolVar(&lowest, "lowest", false, "with --best, lower is better")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, closeStore, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer closeStore()

	cat := st.Catalog()
	if cat == nil && (bestMetric != "" || listPreset != "" || listLimit > 0) {
		return errors.New("--best, --preset and --limit need a catalog; set catalog in the config")
	}

	if bestMetric != "" {
		rec, err := cat.Best(bestMetric, lowest)
		if err != nil {
			return err
		}
		m, err := rec.MetricMap()
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s=%s\n", rec.RunID, bestMetric, viz.FormatValue(m[bestMetric]))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tINTEG\tCTRL\tMAX SPEED")

	if cat != nil && (listPreset != "" || listLimit > 0) {
		recs, err := cat.Runs(listPreset, listLimit)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			m, _ := rec.MetricMap()
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.3f\n",
				rec.RunID, rec.Preset, rec.RanAt.Format("2006-01-02 15:04:05"),
				rec.Duration, rec.Dt, rec.Integrator, rec.Controller, m["max_speed"])
		}
		return w.Flush()
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.3f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.Metrics["max_speed"],
		)
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().BoolVar(&plotASCII, "ascii", false, "draw the track with plain characters")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, closeStore, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer closeStore()

	meta, result, v, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	tr := analysis.NewTrack(v, result)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", tr.Len())

	headings := make([]float64, tr.Len())
	depths := make([]float64, tr.Len())
	yawRates := make([]float64, tr.Len())
	for i, x := range result.States {
		headings[i] = tr.Headings[i] * 180 / math.Pi
		depths[i] = v.Depth(x)
		yawRates[i] = v.YawRate(x)
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"speed (m/s)", tr.Speeds},
		{"heading (deg, unwrapped)", headings},
		{"yaw rate (rad/s)", yawRates},
		{"draft (m)", depths},
	}
	for _, s := range series {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}

	if plotASCII {
		fmt.Print(analysis.TrackToASCII(tr, 70, 24))
		return nil
	}
	plan := viz.NewPlan(60, 20, tr.X, tr.Y)
	plan.Path(tr.X, tr.Y)
	fmt.Print(plan.String())
	fmt.Println(report().Note(fmt.Sprintf("track, %.2f m per dot", plan.Scale())))
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := storeFromFlags()
			if err != nil {
				return err
			}
			defer closeStore()

			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := storeFromFlags()
			if err != nil {
				return err
			}
			defer closeStore()

			if _, err := st.Load(args[0]); err != nil {
				return err
			}
			f, err := os.Open(filepath.Join(st.Dir(), args[0], "states.csv"))
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(os.Stdout, f)
			return err
		},
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := storeFromFlags()
			if err != nil {
				return err
			}
			defer closeStore()

			meta, result, _, err := loadRun(st, args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(os.Stdout, meta.RunInfo, result)
		},
	}
}

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the run's track as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := storeFromFlags()
			if err != nil {
				return err
			}
			defer closeStore()

			_, result, v, err := loadRun(st, args[0])
			if err != nil {
				return err
			}
			svg := export.TrackSVG(analysis.NewTrack(v, result), svgWidth, svgHeight, viz.GetTheme(themeName))
			if svg == "" {
				return fmt.Errorf("run %s has no track to draw", args[0])
			}
			if svgOut == "" {
				_, err = io.WriteString(os.Stdout, svg)
				return err
			}
			if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
				return err
			}
			log.Info().Str("path", svgOut).Msg("track written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&svgWidth, "width", 800, "image width in pixels")
	cmd.Flags().IntVar(&svgHeight, "height", 600, "image height in pixels")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "manoeuvre and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().StringVar(&spectrumOf, "signal", "draft", "signal for the spectrum: draft, yaw_rate, speed")
	return cmd
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, closeStore, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer closeStore()

	meta, result, v, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	tr := analysis.NewTrack(v, result)

	data := make([]float64, len(result.States))
	for i, x := range result.States {
		switch spectrumOf {
		case "draft":
			data[i] = v.Depth(x)
		case "yaw_rate":
			data[i] = v.YawRate(x)
		case "speed":
			data[i] = v.Speed(x)
		default:
			return fmt.Errorf("unknown signal: %s", spectrumOf)
		}
	}

	r := report()
	rows := []viz.Row{{Key: "run", Value: meta.ID}, {Key: "preset", Value: meta.Preset}}

	if d, err := analysis.TurningDiameter(tr); err == nil {
		rows = append(rows, viz.Row{Key: "turning diameter", Value: fmt.Sprintf("%.2f m", d)})
	} else {
		rows = append(rows, viz.Row{Key: "turning diameter", Value: "no full turn"})
	}

	// a stop is only meaningful for runs that were moving at the start
	if tr.Speeds[0] > 0.5 {
		if d, t, err := analysis.StoppingDistance(tr, 0.1); err == nil {
			rows = append(rows, viz.Row{Key: "stopping distance", Value: fmt.Sprintf("%.2f m in %.2f s", d, t)})
		} else {
			rows = append(rows, viz.Row{Key: "stopping distance", Value: "never stops"})
		}
	}

	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		return err
	}
	rows = append(rows, viz.Row{Key: spectrumOf + " frequency", Value: fmt.Sprintf("%.3f Hz", freq)})
	if freq > 0 {
		rows = append(rows, viz.Row{Key: spectrumOf + " period", Value: fmt.Sprintf("%.3f s", 1/freq)})
	}

	fmt.Println(r.Panel("analysis", r.Table(rows)))

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		fmt.Println(asciigraph.Plot(ps[1:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+spectrumOf+")"),
		))
	}
	return nil
}
