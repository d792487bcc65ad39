package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/analysis"
	"github.com/spigell/interview-prep/internal/console"
	"github.com/spigell/interview-prep/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a job posting against your experience and generate interview questions",
	Long: `Without --job-file and --profile-file an interactive form is shown.
With both files the analysis runs once and the result is printed.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job-file", "", "file with the job posting text")
	analyzeCmd.Flags().String("profile-file", "", "file with your experience summary")
	analyzeCmd.Flags().StringP("mode", "m", string(ai.ModeStandard), "interview mode: soft, standard or pressure")
	analyzeCmd.Flags().IntP("rating", "r", 0, "rate the result 1-5 right away (non-interactive only)")
	analyzeCmd.Flags().String("comment", "", "comment attached to --rating")
	analyzeCmd.Flags().Bool("output-json", false, "print the result as JSON instead of the terminal view")
}

func runAnalyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the interview-prep", zap.String("version", version))

	rt, err := newRuntime(ctx, logger)
	if err != nil {
		logger.Fatal("preparing analysis", zap.Error(err))
	}
	defer rt.Close()

	mode, err := ai.ParseMode(flagString(cmd, "mode"))
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	jobFile, profileFile := flagString(cmd, "job-file"), flagString(cmd, "profile-file")
	if jobFile != "" || profileFile != "" {
		if err := analyzeOnce(ctx, cmd, rt, jobFile, profileFile, mode); err != nil {
			logger.Fatal("analysis failed", zap.Error(err))
		}
		return
	}

	if err := interactive(ctx, rt, ai.Request{Mode: mode}); err != nil && !errors.Is(err, console.ErrAborted) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func analyzeOnce(ctx context.Context, cmd *cobra.Command, rt *runtime, jobFile, profileFile string, mode ai.Mode) error {
	if jobFile == "" || profileFile == "" {
		return errors.New("both --job-file and --profile-file are required for a non-interactive run")
	}

	job, err := os.ReadFile(jobFile)
	if err != nil {
		return fmt.Errorf("reading job file: %w", err)
	}

	profile, err := os.ReadFile(profileFile)
	if err != nil {
		return fmt.Errorf("reading profile file: %w", err)
	}

	state := analysis.NewState()
	req := ai.Request{JobDescription: string(job), CandidateProfile: string(profile), Mode: mode}

	result, err := submit(ctx, rt, state, req)
	if err != nil {
		return err
	}

	view := render.FromResult(result, state.Request.Mode)
	if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(view); err != nil {
			return err
		}
	} else if err := render.Terminal(os.Stdout, view); err != nil {
		return err
	}

	rating, _ := cmd.Flags().GetInt("rating")
	if rating == 0 {
		return nil
	}

	return rt.session.RecordFeedback(ctx, state, rating, flagString(cmd, "comment"), false)
}

func interactive(ctx context.Context, rt *runtime, prev ai.Request) error {
	state := analysis.NewState()

	for {
		req, err := console.CollectRequest(prev)
		if err != nil {
			return err
		}
		prev = req

		result, err := submit(ctx, rt, state, req)
		if err != nil {
			pterm.Error.Println(render.ErrorMessage(err))
			if !errors.Is(err, ai.ErrInvalidInput) {
				rt.logger.Debug("analysis error", zap.Error(err))
			}
			continue
		}

		if err := render.Terminal(os.Stdout, render.FromResult(result, state.Request.Mode)); err != nil {
			return err
		}

		if err := afterResult(ctx, rt, state); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

var errExit = errors.New("exit requested")

// afterResult loops over the next-action prompt until the user moves on.
func afterResult(ctx context.Context, rt *runtime, state *analysis.State) error {
	for {
		action, err := console.NextAction(!state.FeedbackRecorded)
		if err != nil {
			return err
		}

		switch action {
		case console.ActionRate:
			rating, comment, ok, err := console.AskFeedback()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := rt.session.RecordFeedback(ctx, state, rating, comment, false); err != nil {
				pterm.Warning.Printfln("Feedback was not saved: %v", err)
				continue
			}
			pterm.Success.Println("Thanks for the feedback!")
		case console.ActionAnother:
			return nil
		case console.ActionExit:
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func submit(ctx context.Context, rt *runtime, state *analysis.State, req ai.Request) (*ai.Result, error) {
	spinner, _ := pterm.DefaultSpinner.Start("Analyzing the posting and drafting questions...")

	result, err := rt.session.Submit(ctx, state, req)
	if spinner != nil {
		if err != nil {
			spinner.Fail("Analysis failed")
		} else {
			spinner.Success(fmt.Sprintf("Analysis ready (%s)", state.RunID))
		}
	}

	return result, err
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(value)
}
