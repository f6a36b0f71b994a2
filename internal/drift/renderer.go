package drift

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/temirov/eolcdt/internal/eol"
)

const (
	outputFormatTextConstant          = "text"
	outputFormatJSONConstant          = "json"
	outputFormatYAMLConstant          = "yaml"
	reportBannerConstant              = "EOL Change Detection Tool"
	reportMergeBaseTemplateConstant   = "Merge base: %s"
	reportBranch1TemplateConstant     = "Branch1: %s"
	reportBranch2TemplateConstant     = "Branch2: %s"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
	unsupportedOutputTemplateConstant = "unsupported output format %q (expected text, json, or yaml)"
	renderFailureTemplateConstant     = "failed to render %s report: %w"
	writeFailureTemplateConstant      = "failed to write report: %w"
)

// OutputFormat selects the report encoding.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = OutputFormat(outputFormatTextConstant)
	OutputFormatJSON OutputFormat = OutputFormat(outputFormatJSONConstant)
	OutputFormatYAML OutputFormat = OutputFormat(outputFormatYAMLConstant)
)

// OutputFormatChoices lists the accepted output format names.
func OutputFormatChoices() []string {
	return []string{outputFormatTextConstant, outputFormatJSONConstant, outputFormatYAMLConstant}
}

// ParseOutputFormat maps a case-insensitive name onto an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedOutputTemplateConstant, value)
	}
}

// RenderOptions control which entries are written and how.
type RenderOptions struct {
	Format           OutputFormat
	IncludeUnchanged bool
}

// Renderer writes reports.
type Renderer struct {
	options RenderOptions
}

// NewRenderer validates the options and constructs a Renderer.
func NewRenderer(options RenderOptions) (*Renderer, error) {
	format, formatError := ParseOutputFormat(string(options.Format))
	if formatError != nil {
		return nil, formatError
	}
	options.Format = format
	return &Renderer{options: options}, nil
}

type reportDocument struct {
	MergeBase string          `json:"merge_base" yaml:"merge_base"`
	Treeish1  string          `json:"branch1" yaml:"branch1"`
	Treeish2  string          `json:"branch2" yaml:"branch2"`
	Entries   []entryDocument `json:"entries" yaml:"entries"`
}

type entryDocument struct {
	Path    string `json:"path" yaml:"path"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Base    string `json:"base" yaml:"base"`
	Branch1 string `json:"branch1,omitempty" yaml:"branch1,omitempty"`
	Branch2 string `json:"branch2,omitempty" yaml:"branch2,omitempty"`
	Anomaly string `json:"anomaly,omitempty" yaml:"anomaly,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Render writes the report to writer in the configured format.
func (renderer *Renderer) Render(writer io.Writer, report Report) error {
	entries := renderer.selectEntries(report.Entries)

	switch renderer.options.Format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		if encodeError := encoder.Encode(buildReportDocument(report, entries)); encodeError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, outputFormatJSONConstant, encodeError)
		}
		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(buildReportDocument(report, entries)); encodeError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, outputFormatYAMLConstant, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, outputFormatYAMLConstant, closeError)
		}
		return nil
	default:
		return renderer.renderText(writer, report, entries)
	}
}

func (renderer *Renderer) renderText(writer io.Writer, report Report, entries []Entry) error {
	lines := []string{
		reportBannerConstant,
		fmt.Sprintf(reportMergeBaseTemplateConstant, report.MergeBase),
		fmt.Sprintf(reportBranch1TemplateConstant, report.Treeish1),
		fmt.Sprintf(reportBranch2TemplateConstant, report.Treeish2),
	}
	for _, entry := range entries {
		lines = append(lines, entry.Describe())
	}

	for _, line := range lines {
		if _, writeError := fmt.Fprintln(writer, line); writeError != nil {
			return fmt.Errorf(writeFailureTemplateConstant, writeError)
		}
	}
	return nil
}

func (renderer *Renderer) selectEntries(entries []Entry) []Entry {
	if renderer.options.IncludeUnchanged {
		return entries
	}
	return lo.Filter(entries, func(entry Entry, _ int) bool {
		return entry.Outcome.Kind != eol.OutcomeNoChange
	})
}

func buildReportDocument(report Report, entries []Entry) reportDocument {
	return reportDocument{
		MergeBase: report.MergeBase,
		Treeish1:  report.Treeish1,
		Treeish2:  report.Treeish2,
		Entries: lo.Map(entries, func(entry Entry, _ int) entryDocument {
			document := entryDocument{
				Path:    entry.Path,
				Outcome: entry.Outcome.Kind.String(),
				Base:    entry.Outcome.Base.String(),
				Anomaly: entry.Anomaly,
				Message: entry.Describe(),
			}
			if entry.Outcome.Base.IsLineEnding() {
				document.Branch1 = entry.Outcome.Branch1.String()
				document.Branch2 = entry.Outcome.Branch2.String()
			}
			return document
		}),
	}
}
