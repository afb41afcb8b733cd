package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davidbz/markl/internal/domain"
)

var (
	estimateProvider string
	estimateModel    string
	estimateTextFile string
	estimateJobFile  string
	estimateLevel    string
	estimateJSON     bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate tokens and cost of enhancing a resume with one model",
	RunE:  runEstimate,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare enhancement cost across every provider's cheapest models",
	RunE:  runCompare,
}

func init() {
	for _, cmd := range []*cobra.Command{estimateCmd, compareCmd} {
		cmd.Flags().StringVarP(&estimateTextFile, "file", "f", "", "Path to the resume text file (required)")
		cmd.Flags().StringVarP(&estimateJobFile, "job", "j", "", "Path to a job description file")
		cmd.Flags().StringVarP(&estimateLevel, "level", "l", string(domain.LevelModerate),
			"Enhancement level: light, moderate or comprehensive")
		cmd.Flags().BoolVar(&estimateJSON, "json", false, "Print JSON instead of a table")

		if err := cmd.MarkFlagRequired("file"); err != nil {
			panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
		}
		rootCmd.AddCommand(cmd)
	}

	estimateCmd.Flags().StringVarP(&estimateProvider, "provider", "p", "", "Provider: openai, anthropic or gemini (required)")
	estimateCmd.Flags().StringVarP(&estimateModel, "model", "m", "", "Model id (defaults to the provider's default)")
	if err := estimateCmd.MarkFlagRequired("provider"); err != nil {
		panic(fmt.Sprintf("failed to mark provider flag as required: %v", err))
	}
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	req, err := estimateRequestFromFlags()
	if err != nil {
		return err
	}

	container, err := buildContainer()
	if err != nil {
		return err
	}

	return container.Invoke(func(router domain.Router, estimator *domain.CostEstimator) error {
		route, err := router.Route(cmd.Context(), &domain.RouteRequest{Provider: req.Provider, Model: req.Model})
		if err != nil {
			return err
		}
		req.Model = route.Model

		estimate, ok := estimator.EstimateEnhancementCost(cmd.Context(), req)
		if !ok {
			return &domain.UnsupportedModelError{Provider: req.Provider, Model: req.Model}
		}

		return printEstimates(cmd.OutOrStdout(), []domain.CostEstimate{estimate})
	})
}

func runCompare(cmd *cobra.Command, _ []string) error {
	req, err := estimateRequestFromFlags()
	if err != nil {
		return err
	}

	container, err := buildContainer()
	if err != nil {
		return err
	}

	return container.Invoke(func(estimator *domain.CostEstimator) error {
		return printEstimates(cmd.OutOrStdout(), estimator.CompareProvidersForRequest(cmd.Context(), req))
	})
}

func estimateRequestFromFlags() (domain.EstimateRequest, error) {
	text, err := os.ReadFile(estimateTextFile)
	if err != nil {
		return domain.EstimateRequest{}, fmt.Errorf("failed to read resume file: %w", err)
	}

	req := domain.EstimateRequest{
		Provider:     domain.ProviderID(estimateProvider),
		Model:        estimateModel,
		OriginalText: string(text),
		Level:        domain.EnhancementLevel(estimateLevel),
	}

	if estimateJobFile != "" {
		job, err := os.ReadFile(estimateJobFile)
		if err != nil {
			return domain.EstimateRequest{}, fmt.Errorf("failed to read job description file: %w", err)
		}
		req.JobDescription = string(job)
	}

	return req, nil
}

func printEstimates(out io.Writer, estimates []domain.CostEstimate) error {
	if estimateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(estimates)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tMODEL\tINPUT TOKENS\tOUTPUT TOKENS\tCOST (USD)\tNOTE")
	for _, e := range estimates {
		note := ""
		switch {
		case e.WarningsExceededContext:
			note = "exceeds context window"
		case e.Recommended:
			note = "recommended"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6f\t%s\n",
			e.Provider, e.Model, e.TokenEstimate.InputTokens, e.TokenEstimate.OutputTokens, e.TotalCost, note)
	}
	return w.Flush()
}
