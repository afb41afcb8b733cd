package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/markl/internal/config"
	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/resume"
	"github.com/davidbz/markl/internal/review"
)

var (
	enhanceProvider     string
	enhanceModel        string
	enhanceTextFile     string
	enhanceResumeFile   string
	enhanceJobFile      string
	enhanceLevel        string
	enhanceInstructions string
	enhanceOutputFile   string
	enhanceAPIKey       string
	enhanceAcceptAll    bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Enhance a resume and review the suggestions in the terminal",
	Long: "Sends the resume text to the chosen provider, walks through each suggestion for " +
		"accept or reject, and optionally writes the resume JSON with accepted changes merged in.",
	RunE: runEnhance,
}

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceProvider, "provider", "p", "", "Provider: openai, anthropic or gemini (required)")
	enhanceCmd.Flags().StringVarP(&enhanceModel, "model", "m", "", "Model id (defaults to the provider's default)")
	enhanceCmd.Flags().StringVarP(&enhanceTextFile, "file", "f", "", "Path to the resume text file (required)")
	enhanceCmd.Flags().StringVarP(&enhanceResumeFile, "resume", "r", "", "Path to the structured resume JSON")
	enhanceCmd.Flags().StringVarP(&enhanceJobFile, "job", "j", "", "Path to a job description file")
	enhanceCmd.Flags().StringVarP(&enhanceLevel, "level", "l", string(domain.LevelModerate),
		"Enhancement level: light, moderate or comprehensive")
	enhanceCmd.Flags().StringVarP(&enhanceInstructions, "instructions", "i", "", "Extra instructions for the model")
	enhanceCmd.Flags().StringVarP(&enhanceOutputFile, "out", "o", "", "Write the merged resume JSON here (needs --resume)")
	enhanceCmd.Flags().StringVar(&enhanceAPIKey, "api-key", "", "API key (overrides the provider's *_API_KEY env var)")
	enhanceCmd.Flags().BoolVarP(&enhanceAcceptAll, "yes", "y", false, "Accept every suggestion without prompting")

	if err := enhanceCmd.MarkFlagRequired("provider"); err != nil {
		panic(fmt.Sprintf("failed to mark provider flag as required: %v", err))
	}
	if err := enhanceCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	if enhanceOutputFile != "" && enhanceResumeFile == "" {
		return fmt.Errorf("--out needs --resume to merge into")
	}

	text, err := os.ReadFile(enhanceTextFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	req := &domain.EnhanceRequest{
		Options: domain.EnhancementOptions{
			Provider:         domain.ProviderID(enhanceProvider),
			Model:            enhanceModel,
			EnhancementLevel: domain.EnhancementLevel(enhanceLevel),
			UserInstructions: enhanceInstructions,
		},
		OriginalText: string(text),
	}

	var snapshot []byte
	if enhanceResumeFile != "" {
		snapshot, err = os.ReadFile(enhanceResumeFile)
		if err != nil {
			return fmt.Errorf("failed to read resume JSON: %w", err)
		}
		if _, err := resume.Import(snapshot); err != nil {
			return err
		}
		req.ParsedData = snapshot
	}

	if enhanceJobFile != "" {
		job, err := os.ReadFile(enhanceJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description file: %w", err)
		}
		req.Options.JobDescription = string(job)
	}

	container, err := buildContainer()
	if err != nil {
		return err
	}

	return container.Invoke(func(
		cfg *config.Config,
		enhancer *domain.EnhancementService,
		annotator review.Annotator,
	) error {
		req.APIKey = enhanceAPIKey
		if req.APIKey == "" {
			req.APIKey = cfg.APIKeys()[req.Options.Provider]
		}

		result := enhancer.Enhance(cmd.Context(), req)
		if !result.Success {
			return fmt.Errorf("enhancement failed (%s): %s", result.Error.Type, result.Error.Message)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d suggestions from %s/%s (confidence %.2f, %d tokens, $%.6f)\n\n",
			len(result.Suggestions), result.Provider, result.Model, result.Confidence,
			result.Metadata.TokensUsed, result.Metadata.Cost)

		session, err := review.NewSession(result.Suggestions)
		if err != nil {
			return err
		}
		if enhanceAcceptAll {
			session.AcceptAll()
		} else if err := reviewInteractive(cmd.InOrStdin(), out, session, annotator); err != nil {
			return err
		}

		summary := session.Summary()
		fmt.Fprintf(out, "\naccepted %d, rejected %d, pending %d\n", summary.Accepted, summary.Rejected, summary.Pending)

		if enhanceOutputFile == "" {
			return nil
		}

		merged, err := resume.Apply(snapshot, session.ComputeDiff())
		if err != nil {
			return err
		}
		if err := os.WriteFile(enhanceOutputFile, merged, 0o600); err != nil {
			return fmt.Errorf("failed to write merged resume: %w", err)
		}
		fmt.Fprintf(out, "wrote %s\n", enhanceOutputFile)

		return nil
	})
}

// reviewInteractive prompts for a decision on every pending suggestion.
// "A" and "R" decide all remaining suggestions; "q" or end of input leaves them pending.
func reviewInteractive(in io.Reader, out io.Writer, session *review.Session, annotator review.Annotator) error {
	scanner := bufio.NewScanner(in)

	for i, s := range session.Suggestions() {
		if s.Status != domain.StatusPending {
			continue
		}

		fmt.Fprintf(out, "[%d] %s (%s, confidence %.2f)\n", i+1, s.Field, s.Type, s.Confidence)
		fmt.Fprintf(out, "  - %s\n  + %s\n", s.OriginalValue, s.SuggestedValue)
		if s.Reasoning != "" {
			fmt.Fprintf(out, "  why: %s\n", s.Reasoning)
		}

		note := annotator.Annotate(domain.FieldChange{
			SuggestionID: s.ID,
			Field:        s.Field,
			From:         s.OriginalValue,
			To:           s.SuggestedValue,
		})
		if len(note.Highlights) > 0 {
			fmt.Fprintf(out, "  gains: %s\n", strings.Join(note.Highlights, ", "))
		}

		for {
			fmt.Fprint(out, "accept? [a]ccept [r]eject [A]ccept all [R]eject all [q]uit: ")
			if !scanner.Scan() {
				return scanner.Err()
			}

			var err error
			switch strings.TrimSpace(scanner.Text()) {
			case "a", "y":
				err = session.AcceptOne(s.ID)
			case "r", "n":
				err = session.RejectOne(s.ID)
			case "A":
				session.AcceptAll()
				return nil
			case "R":
				session.RejectAll()
				return nil
			case "q":
				return nil
			default:
				continue
			}
			if err != nil {
				return err
			}
			break
		}
		fmt.Fprintln(out)
	}

	return nil
}
