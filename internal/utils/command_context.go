package utils

import "context"

type commandContextKey struct{}

// commandContextValues holds the settings resolved before a command runs.
type commandContextValues struct {
	configurationFilePath string
}

// ContextWithConfigurationFile returns a child context recording the configuration file that was loaded.
// An empty path records that only defaults and environment values were used.
func ContextWithConfigurationFile(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, commandContextKey{}, commandContextValues{configurationFilePath: configurationFilePath})
}

// ConfigurationFileFromContext reports the configuration file recorded by ContextWithConfigurationFile.
func ConfigurationFileFromContext(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	values, recorded := executionContext.Value(commandContextKey{}).(commandContextValues)
	if !recorded {
		return "", false
	}
	return values.configurationFilePath, true
}
