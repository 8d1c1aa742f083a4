package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"agedist/internal/demographics/clients/randomuser"
	"agedist/internal/demographics/models"
	"agedist/internal/demographics/service"
	"agedist/internal/platform/config"
	"agedist/internal/platform/logger"
	"agedist/pkg/validation"
)

type reportOptions struct {
	BaseURL string        `flag:"base-url" validate:"required,url"`
	Results int           `flag:"results" validate:"min=1,max=5000"`
	Gender  string        `flag:"gender" validate:"omitempty,oneof=male female"`
	Nat     string        `flag:"nat" validate:"omitempty,natlist"`
	Top     int           `flag:"top" validate:"min=1"`
	Timeout time.Duration `flag:"timeout" validate:"gte=0s"`
	JSON    bool          `flag:"json"`
	Verbose bool          `flag:"verbose"`
}

func newReportCmd() *cobra.Command {
	defaults := config.FromEnv()
	opts := reportOptions{
		BaseURL: defaults.RandomUser.BaseURL,
		Results: defaults.RandomUser.Results,
		Gender:  defaults.RandomUser.Gender,
		Nat:     defaults.RandomUser.Nationality,
		Top:     defaults.TopN,
		Timeout: defaults.RandomUser.Timeout,
	}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch a batch and print the age histogram and the oldest people",
		Long: `Fetch one batch from a randomuser-compatible API, then print:

  - the age distribution in seven fixed buckets (20-29 ... >=80)
  - the oldest people with name, age, email and phone

Defaults come from the same environment variables as the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.BaseURL, "base-url", opts.BaseURL, "randomuser API base URL")
	f.IntVar(&opts.Results, "results", opts.Results, "number of records to fetch")
	f.StringVar(&opts.Gender, "gender", opts.Gender, "gender filter (empty for any)")
	f.StringVar(&opts.Nat, "nat", opts.Nat, "nationality filter (empty for any)")
	f.IntVar(&opts.Top, "top", opts.Top, "how many of the oldest people to list")
	f.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "fetch timeout (0 for none)")
	f.BoolVar(&opts.JSON, "json", false, "print the report as JSON")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	if err := validation.Validate(opts); err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		log = logger.NewWithWriter(cmd.ErrOrStderr(), "dev")
	}

	client := randomuser.New(config.RandomUser{
		BaseURL:     opts.BaseURL,
		Results:     opts.Results,
		Gender:      opts.Gender,
		Nationality: opts.Nat,
		Timeout:     opts.Timeout,
	})
	svc := service.New(client,
		service.WithLogger(log),
		service.WithTopN(opts.Top),
	)

	report, err := svc.Report(cmd.Context())
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, opts.JSON)
}

func writeReport(w io.Writer, report *models.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err := io.WriteString(w, renderReport(report))
	return err
}
