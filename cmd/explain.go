package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/observability"
)

type explainOptions struct {
	platform    string
	services    []string
	errorCode   string
	runtime     string
	description string
	format      string
}

func newExplainCommand() *cobra.Command {
	var opts explainOptions

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a single cloud error and print the recommendations",
		Example: `  troubleshoot explain --platform AWS --services S3 --error-code 403 \
    --runtime python3.9 --description "Access Denied" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := domain.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			container, err := buildContainer()
			if err != nil {
				return err
			}

			if err := container.Invoke(func(service *domain.TroubleshootService) error {
				return explain(cmd.Context(), service, opts.report(), format, cmd.OutOrStdout())
			}); err != nil {
				return dig.RootCause(err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.platform, "platform", "", "Cloud platform, e.g. AWS, GCP, Azure")
	flags.StringSliceVar(&opts.services, "services", nil, "Affected services (comma separated or repeated)")
	flags.StringVar(&opts.errorCode, "error-code", "", "Provider error code")
	flags.StringVar(&opts.runtime, "runtime", "", "Runtime or language version")
	flags.StringVar(&opts.description, "description", "", "Error message or description")
	flags.StringVar(&opts.format, "format", string(domain.FormatJSON), "Output format: json, html or fragment")

	return cmd
}

func (o explainOptions) report() *domain.ErrorReport {
	return &domain.ErrorReport{
		Platform:    o.platform,
		Services:    o.services,
		ErrorCode:   o.errorCode,
		Runtime:     o.runtime,
		Description: o.description,
	}
}

// explain runs one pipeline pass and writes the rendered body to out.
func explain(
	ctx context.Context,
	service *domain.TroubleshootService,
	report *domain.ErrorReport,
	format domain.Format,
	out io.Writer,
) error {
	ctx = observability.WithRequestID(ctx, observability.GenerateRequestID())

	rendered, err := service.Troubleshoot(ctx, report, format)
	if err != nil {
		return err
	}

	if _, err := out.Write(rendered.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	_, err = fmt.Fprintln(out)
	return err
}
