package flags

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v2"
	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue     = "true"
	toggleParseErrorTemplate     = "invalid toggle value %q"
	toggleTruePlaceholder        = "<YES|no>"
	toggleFalsePlaceholder       = "<yes|NO>"
	toggleUsageEmptyTemplate     = "`%s`"
	toggleUsageFullTemplate      = "`%s` %s"
	toggleFlagTypeConstant       = "bool"
	longFlagPrefixConstant       = "--"
	shortFlagPrefixConstant      = "-"
	flagValueSeparatorConstant   = "="
	argumentTerminatorConstant   = "--"
	toggleRegistryInitialSize    = 8
	shorthandNameLengthConstant  = 1
	unconsumedArgumentsConstant  = 0
	singleArgumentConsumed       = 1
	joinedArgumentsConsumedCount = 2
)

var toggleLiterals = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

var (
	toggleRegistryMutex sync.RWMutex
	toggleLongNames  = set.New[string](toggleRegistryInitialSize)
	toggleShorthands = set.New[string](toggleRegistryInitialSize)
)

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off, and similar literals.
// A bare flag means true. Call NormalizeToggleArguments on the raw arguments so that
// "--flag no" is parsed as a value rather than a positional argument.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleFlagValue{target: target}
	value.assign(defaultValue)
	flag := flagSet.VarPF(value, name, shorthand, formatToggleUsage(usage, defaultValue))
	flag.NoOptDefVal = toggleTrueCanonicalValue

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleLongNames.Insert(name)
	if len(shorthand) > 0 {
		toggleShorthands.Insert(shorthand)
	}
}

// NormalizeToggleArguments joins registered toggle flags with the value that follows them,
// so "--flag value" becomes "--flag=value". Arguments after "--" are left untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		joined, consumed := joinToggleValue(arguments, index)
		if consumed == unconsumedArgumentsConstant {
			joined, consumed = current, singleArgumentConsumed
		}
		normalized = append(normalized, joined)
		index += consumed
	}

	return normalized
}

type toggleFlagValue struct {
	current bool
	target  *bool
}

func (value *toggleFlagValue) assign(parsed bool) {
	value.current = parsed
	if value.target != nil {
		*value.target = parsed
	}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsed, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	value.assign(parsed)
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(value.current)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeConstant
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleFalsePlaceholder
	if defaultValue {
		placeholder = toggleTruePlaceholder
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplate, placeholder, trimmed)
}

func parseToggleValue(rawValue string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		return true, nil
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsed, nil
}

// joinToggleValue returns the rewritten argument and how many input arguments it covers,
// or zero when arguments[index] is not a registered toggle flag.
func joinToggleValue(arguments []string, index int) (string, int) {
	current := arguments[index]
	if !isRegisteredToggle(current) {
		return "", unconsumedArgumentsConstant
	}
	if strings.Contains(current, flagValueSeparatorConstant) || index+1 >= len(arguments) {
		return current, singleArgumentConsumed
	}
	next := arguments[index+1]
	if strings.HasPrefix(next, shortFlagPrefixConstant) {
		return current, singleArgumentConsumed
	}
	return current + flagValueSeparatorConstant + next, joinedArgumentsConsumedCount
}

func isRegisteredToggle(argument string) bool {
	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		name, _, _ := strings.Cut(strings.TrimPrefix(argument, longFlagPrefixConstant), flagValueSeparatorConstant)
		return len(name) > 0 && toggleLongNames.Contains(name)
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand, _, _ := strings.Cut(strings.TrimPrefix(argument, shortFlagPrefixConstant), flagValueSeparatorConstant)
		return len(shorthand) == shorthandNameLengthConstant && toggleShorthands.Contains(shorthand)
	}
	return false
}
