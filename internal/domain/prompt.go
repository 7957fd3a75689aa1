package domain

import (
	"strings"
)

const closingRequest = "Can you provide a description of this error and recommend actions to resolve it?"

// BuildPrompt renders a validated error report into the prompt sent to the LLM.
// Error code and runtime lines are emitted only when the field is non-empty.
func BuildPrompt(report *ErrorReport) Prompt {
	var b strings.Builder

	b.WriteString(identityLine(report))
	b.WriteByte('\n')

	if code := strings.TrimSpace(report.ErrorCode); code != "" {
		b.WriteString("Error Code: ")
		b.WriteString(code)
		b.WriteByte('\n')
	}

	if runtime := strings.TrimSpace(report.Runtime); runtime != "" {
		b.WriteString("Runtime: ")
		b.WriteString(runtime)
		b.WriteByte('\n')
	}

	if description := strings.TrimSpace(report.Description); description != "" {
		b.WriteString("Description: ")
		b.WriteString(description)
		b.WriteByte('\n')
	}

	b.WriteString(closingRequest)

	return Prompt(b.String())
}

func identityLine(report *ErrorReport) string {
	platform := strings.TrimSpace(report.Platform)
	services := strings.Join(cleanServices(report.Services), ", ")

	switch {
	case platform != "" && services != "":
		return "I encountered an error with " + platform + " services: " + services + "."
	case platform != "":
		return "I encountered an error on the " + platform + " platform."
	case services != "":
		return "I encountered an error with services: " + services + "."
	default:
		return "I encountered an error."
	}
}

// cleanServices trims service names and drops blanks, preserving order.
func cleanServices(services []string) []string {
	cleaned := make([]string, 0, len(services))
	for _, s := range services {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
