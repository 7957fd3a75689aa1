package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/mocks"
	"github.com/davidbz/troubleshooter/internal/render"
)

func TestExplain_WritesRenderedBody(t *testing.T) {
	report := &domain.ErrorReport{
		Platform:    "AWS",
		Services:    []string{"S3"},
		ErrorCode:   "403",
		Runtime:     "python3.9",
		Description: "Access Denied",
	}

	llm := mocks.NewMockLLMClient(t)
	llm.EXPECT().
		Complete(mock.Anything, domain.BuildPrompt(report)).
		Return("Access denied. 1. Check IAM permissions.", nil).
		Once()

	renderers, err := render.NewDefaultRegistry()
	require.NoError(t, err)
	service := domain.NewTroubleshootService(llm, renderers, nil, domain.ServiceConfig{})

	var out bytes.Buffer
	err = explain(context.Background(), service, report, domain.FormatJSON, &out)

	require.NoError(t, err)
	require.Equal(t,
		`{"error_description":"Access denied.","solution_recommendations":["Check IAM permissions."]}`+"\n",
		out.String(),
	)
}

func TestExplain_ValidationFailure(t *testing.T) {
	renderers, err := render.NewDefaultRegistry()
	require.NoError(t, err)
	service := domain.NewTroubleshootService(mocks.NewMockLLMClient(t), renderers, nil, domain.ServiceConfig{})

	var out bytes.Buffer
	err = explain(context.Background(), service, &domain.ErrorReport{Platform: "AWS"}, domain.FormatJSON, &out)

	require.ErrorIs(t, err, domain.ErrValidation)
	require.Empty(t, out.String())
}

func TestExplainCommand_RejectsUnknownFormat(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"explain", "--platform", "AWS", "--format", "yaml"})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()

	require.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	// main prints the returned error; cobra must not print it too.
	require.Empty(t, stderr.String())
	require.Empty(t, stdout.String())
}

func TestExplainOptions_Report(t *testing.T) {
	cmd := newExplainCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--platform", "AWS",
		"--services", "S3,Lambda",
		"--services", "IAM",
		"--error-code", "403",
		"--description", "Access Denied",
	}))

	platform, err := cmd.Flags().GetString("platform")
	require.NoError(t, err)
	require.Equal(t, "AWS", platform)

	services, err := cmd.Flags().GetStringSlice("services")
	require.NoError(t, err)
	require.Equal(t, []string{"S3", "Lambda", "IAM"}, services)
}
