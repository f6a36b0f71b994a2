package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/eolcdt/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
	testConsoleMessageConstant                     = "Resolving merge base of feature and main in ."
)

func captureStandardError(testInstance *testing.T, action func()) []byte {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStderr := os.Stderr
	os.Stderr = pipeWriter
	action()
	os.Stderr = originalStderr

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return bytes.TrimSpace(capturedOutput)
}

func syncLogger(testInstance *testing.T, logger *zap.Logger) {
	testInstance.Helper()
	syncError := logger.Sync()
	if syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatConsole,
			expectStructuredLog: false,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()

			var creationError error
			capturedOutput := captureStandardError(testInstance, func() {
				var logger *zap.Logger
				logger, creationError = loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
				if creationError != nil {
					require.Nil(testInstance, logger)
					return
				}
				logger.Info(testLogMessageConstant)
				syncLogger(testInstance, logger)
			})

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Empty(testInstance, capturedOutput)
				return
			}

			require.NoError(testInstance, creationError)
			require.Contains(testInstance, string(capturedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(capturedOutput))
		})
	}
}

func TestLoggerFactoryCreateLoggerOutputs(testInstance *testing.T) {
	testInstance.Run("console_format_narrates_messages", func(testInstance *testing.T) {
		var outputs utils.LoggerOutputs
		var creationError error
		capturedOutput := captureStandardError(testInstance, func() {
			outputs, creationError = utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelError, utils.LogFormatConsole)
			if creationError != nil {
				return
			}
			outputs.ConsoleLogger.Info(testConsoleMessageConstant)
			outputs.DiagnosticLogger.Info(testLogMessageConstant)
			syncLogger(testInstance, outputs.ConsoleLogger)
			syncLogger(testInstance, outputs.DiagnosticLogger)
		})

		require.NoError(testInstance, creationError)
		require.Equal(testInstance, testConsoleMessageConstant, string(capturedOutput))
	})

	testInstance.Run("structured_format_silences_console", func(testInstance *testing.T) {
		var creationError error
		capturedOutput := captureStandardError(testInstance, func() {
			var outputs utils.LoggerOutputs
			outputs, creationError = utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured)
			if creationError != nil {
				return
			}
			outputs.ConsoleLogger.Info(testConsoleMessageConstant)
			outputs.DiagnosticLogger.Info(testLogMessageConstant)
			syncLogger(testInstance, outputs.DiagnosticLogger)
		})

		require.NoError(testInstance, creationError)
		require.True(testInstance, json.Valid(capturedOutput))
		require.Contains(testInstance, string(capturedOutput), testLogMessageConstant)
		require.NotContains(testInstance, string(capturedOutput), testConsoleMessageConstant)
	})

	testInstance.Run("invalid_level", func(testInstance *testing.T) {
		outputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevel(testInvalidLogLevelConstant), utils.LogFormatConsole)
		require.Error(testInstance, creationError)
		require.Nil(testInstance, outputs.DiagnosticLogger)
		require.Nil(testInstance, outputs.ConsoleLogger)
	})
}

func TestParseLogLevelAndFormat(testInstance *testing.T) {
	level, levelError := utils.ParseLogLevel(" DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, level)

	_, levelError = utils.ParseLogLevel("trace")
	require.ErrorContains(testInstance, levelError, "unsupported log level: trace")

	format, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, format)

	_, formatError = utils.ParseLogFormat("xml")
	require.ErrorContains(testInstance, formatError, "unsupported log format: xml")
}
