package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"healthcorr/domain/correlation"
	"healthcorr/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &loadOptions{}

	rootCmd := &cobra.Command{
		Use:          "healthcorr",
		Short:        "Pairwise correlation matrices for health survey indicators",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.codebook, "codebook", "", "Codebook JSON file (default: built-in BRFSS indicators)")
	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "Sheet1", "Worksheet to read from .xlsx files")
	rootCmd.PersistentFlags().IntVar(&opts.minValid, "min-valid", 5, "Minimum valid fields for a row to be kept")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", 1, "Parallel workers for pairwise correlation")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "Log level (ERROR, WARN, INFO, DEBUG, TRACE)")

	rootCmd.AddCommand(
		newMatrixCmd(opts),
		newReorderCmd(opts),
		newProfileCmd(opts),
		newReportCmd(opts),
	)

	return rootCmd
}

func newMatrixCmd(opts *loadOptions) *cobra.Command {
	var asJSON, sorted bool

	cmd := &cobra.Command{
		Use:   "matrix [file]",
		Short: "Print the correlation matrix",
		Long: `Print the pairwise Pearson correlation matrix for the codebook variables.

Absent coefficients (fewer than 10 complete pairs, or no variance) print as "-".

Example: healthcorr matrix brfss.xlsx --sorted --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if sorted {
				if _, err := session.View.SetOrder(cmd.Context(), correlation.OrderSimilarity); err != nil {
					return err
				}
			}

			state := session.View.State()
			if asJSON {
				return writeJSON(cmd, state)
			}
			printMatrix(cmd, state.Matrix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the view state as JSON")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Order variables by mean absolute correlation")

	return cmd
}

func newReorderCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [file]",
		Short: "Print variables sorted by mean absolute correlation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cb := session.View.Codebook()
			natural := cb.Keys()
			scores, err := opts.engine().MeanAbsCorrelation(cmd.Context(), session.View.Dataset(), natural)
			if err != nil {
				return err
			}
			byKey := make(map[string]float64, len(natural))
			for i, k := range natural {
				byKey[string(k)] = scores[i]
			}

			state, err := session.View.SetOrder(cmd.Context(), correlation.OrderSimilarity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, k := range state.Order() {
				fmt.Fprintf(out, "%2d. %-10s %-30s %.4f\n", i+1, k, cb.Label(k), byKey[string(k)])
			}
			return nil
		},
	}
}

func newProfileCmd(opts *loadOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Print per-variable descriptive statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, session.Profiles)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %d read, %d retained, %d dropped\n\n",
				session.Stats.RawRows, session.Stats.Retained, session.Stats.Dropped)
			fmt.Fprintf(out, "%-10s %6s %8s %8s %8s %8s\n", "variable", "valid", "missing", "mean", "sd", "median")
			for _, p := range session.Profiles {
				fmt.Fprintf(out, "%-10s %6d %7.1f%% %8.3f %8.3f %8.3f\n",
					p.Key, p.Valid, p.MissingRate*100, p.Summary.Mean, p.Summary.StdDev, p.Summary.Median)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit profiles as JSON")
	return cmd
}

func newReportCmd(opts *loadOptions) *cobra.Command {
	var asHTML, sorted bool
	var outPath string
	var top int

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Write a markdown (or HTML) correlation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if sorted {
				if _, err := session.View.SetOrder(cmd.Context(), correlation.OrderSimilarity); err != nil {
					return err
				}
			}

			state := session.View.State()
			rep := &report.Report{
				Source:   args[0],
				Mode:     state.Mode,
				Stats:    session.Stats,
				Matrix:   state.Matrix,
				Profiles: session.Profiles,
				TopK:     top,
			}

			var body []byte
			if asHTML {
				body = rep.HTML()
			} else {
				body = []byte(rep.Markdown())
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(outPath, body, 0o644)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Order variables by mean absolute correlation")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().IntVar(&top, "top", 10, "Number of strongest pairs to list (-1 for all)")

	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMatrix(cmd *cobra.Command, m correlation.Matrix) {
	out := cmd.OutOrStdout()
	n := m.Size()

	fmt.Fprintf(out, "%-10s", "")
	for _, k := range m.Order {
		fmt.Fprintf(out, " %9s", truncate(string(k), 9))
	}
	fmt.Fprintln(out)

	for i := 0; i < n; i++ {
		fmt.Fprintf(out, "%-10s", truncate(string(m.Order[i]), 10))
		for j := 0; j < n; j++ {
			if v, ok := m.At(i, j).Value(); ok {
				fmt.Fprintf(out, " %9.3f", v)
			} else {
				fmt.Fprintf(out, " %9s", "-")
			}
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, strings.Repeat("-", 10+10*n))
	fp := m.Fingerprint()
	fmt.Fprintf(out, "fingerprint %s\n", fp.Short())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
