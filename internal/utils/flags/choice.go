package flags

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

const (
	choicePlaceholderTemplate      = "<%s>"
	choiceSeparatorLiteral         = "|"
	choiceUsageEmptyTemplate       = "`%s`"
	choiceUsageFullTemplate        = "`%s` %s"
	choiceFlagTypeConstant         = "string"
	unsupportedChoiceErrorTemplate = "unsupported value %q (expected %s)"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral))
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag restricted to choices. Values are matched
// case-insensitively and stored lowercased; anything else fails flag parsing.
func AddChoiceFlag(flagSet *pflag.FlagSet, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || len(name) == 0 {
		return
	}
	value := &choiceFlagValue{current: normalizeChoice(defaultChoice), choices: normalizeChoices(choices)}
	flagSet.Var(value, name, FormatChoiceUsage(defaultChoice, choices, description))
}

type choiceFlagValue struct {
	current string
	choices []string
}

func (value *choiceFlagValue) Set(rawValue string) error {
	candidate := normalizeChoice(rawValue)
	if !lo.Contains(value.choices, candidate) {
		return fmt.Errorf(unsupportedChoiceErrorTemplate, rawValue, strings.Join(value.choices, choiceSeparatorLiteral))
	}
	value.current = candidate
	return nil
}

func (value *choiceFlagValue) String() string {
	if value == nil {
		return ""
	}
	return value.current
}

func (value *choiceFlagValue) Type() string {
	return choiceFlagTypeConstant
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := normalizeChoice(defaultChoice)
	trimmedChoices := lo.FilterMap(choices, func(choice string, _ int) (string, bool) {
		trimmedChoice := strings.TrimSpace(choice)
		return trimmedChoice, len(trimmedChoice) > 0
	})
	uniqueChoices := lo.UniqBy(trimmedChoices, strings.ToLower)

	return lo.Map(uniqueChoices, func(choice string, _ int) string {
		if len(normalizedDefault) > 0 && strings.ToLower(choice) == normalizedDefault {
			return strings.ToUpper(choice)
		}
		return choice
	})
}

func normalizeChoices(choices []string) []string {
	normalized := lo.FilterMap(choices, func(choice string, _ int) (string, bool) {
		normalizedChoice := normalizeChoice(choice)
		return normalizedChoice, len(normalizedChoice) > 0
	})
	return lo.Uniq(normalized)
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
