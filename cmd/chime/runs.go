package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chime/internal/analysis"
	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/export"
	"github.com/san-kum/chime/internal/storage"
)

// resolveRun picks args[0] or, when absent, the most recent run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return st.Latest()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tINTEG\tSECTORS\tCONTACTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Sectors,
			run.Contacts,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		data    []float64
	}{
		{"height (y)", analysis.Heights(samples)},
		{"speed", analysis.Speeds(samples)},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println("path (x vs y):")
	fmt.Println(analysis.PhasePortraitToASCII(analysis.Trace(samples), 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	contacts, err := st.LoadContacts(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("integrator: %s  gravity: %.1f  damping: %.3f\n\n", meta.Integrator, meta.Gravity, meta.Damping)

	cs := analysis.Contacts(contacts, meta.Duration)
	fmt.Println("contacts:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  count\t%d\n", cs.Count)
	fmt.Fprintf(w, "  rate\t%.3f /s\n", cs.Rate)
	fmt.Fprintf(w, "  mean interval\t%.3f s\n", cs.MeanInterval)
	fmt.Fprintf(w, "  mean impact\t%.1f\n", cs.MeanImpact)
	fmt.Fprintf(w, "  max impact\t%.1f\n", cs.MaxImpact)
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Sectors > 0 {
		fmt.Println("\nsector histogram:")
		fmt.Print(analysis.HistogramBars(analysis.SectorHistogram(contacts, meta.Sectors), 40))
	}

	interval := analysis.SampleInterval(samples)
	heights := analysis.Heights(samples)
	freqs, mags := analysis.Spectrum(heights, interval)
	if len(mags) >= 8 {
		view := mags[1 : len(mags)/4+1]
		graph := asciigraph.Plot(view,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum of height (0 - %.1f hz)", freqs[len(mags)/4])),
		)
		fmt.Println()
		fmt.Println(graph)
	}
	freq := analysis.DominantFrequency(heights, interval)
	fmt.Printf("\ndominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	fmt.Println("\nphase portrait (y vs vy):")
	fmt.Println(analysis.PhasePortraitToASCII(analysis.Phase(samples), 60, 20))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	return st.CopyTrajectory(runID, os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	return st.ExportJSON(runID, os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	contacts, err := st.LoadContacts(runID)
	if err != nil {
		return err
	}

	outer, ball := meta.Radius, meta.BallRadius
	if outer == 0 {
		outer, ball = config.DefaultOuterRadius, config.DefaultBallRadius
	}
	a, err := arena.NewArena(arena.Vec2{}, outer, ball)
	if err != nil {
		return err
	}

	path := runID + ".svg"
	if len(args) > 1 {
		path = args[1]
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.RunToSVG(f, a, meta.Sectors, samples, contacts, export.DefaultSVGOptions()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
