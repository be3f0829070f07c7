package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMissingSource
	ErrorTypeMissingBackend
	ErrorTypeMissingArtifact
	ErrorTypeInsecureTransport
	ErrorTypeConfiguration
	ErrorTypeFileSystem
	ErrorTypeRender
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeMissingSource:
		return "MISSING_SOURCE"
	case ErrorTypeMissingBackend:
		return "MISSING_BACKEND"
	case ErrorTypeMissingArtifact:
		return "MISSING_ARTIFACT"
	case ErrorTypeInsecureTransport:
		return "INSECURE_TRANSPORT"
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeRender:
		return "RENDER"
	default:
		return "UNKNOWN"
	}
}

// PwaError is an operator-facing error with context and suggestions
type PwaError struct {
	Type        ErrorType         `json:"type"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Cause       error             `json:"cause,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Stack       []string          `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *PwaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *PwaError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code
func (e *PwaError) Is(target error) bool {
	if t, ok := target.(*PwaError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *PwaError) WithContext(key, value string) *PwaError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *PwaError) WithSuggestion(suggestion string) *PwaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PwaError) WithSuggestions(suggestions []string) *PwaError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// FormatDetailed returns a detailed error message with context and suggestions
func (e *PwaError) FormatDetailed() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("❌ %s [%s]: %s\n", e.Type.String(), e.Code, e.Message))

	if len(e.Context) > 0 {
		builder.WriteString("\n📋 Context:\n")
		for key, value := range e.Context {
			builder.WriteString(fmt.Sprintf("   %s: %s\n", key, value))
		}
	}

	if e.Cause != nil {
		builder.WriteString(fmt.Sprintf("\n🔍 Underlying cause: %v\n", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		builder.WriteString("\n💡 Suggestions:\n")
		for _, suggestion := range e.Suggestions {
			builder.WriteString(fmt.Sprintf("   • %s\n", suggestion))
		}
	}

	return builder.String()
}

// NewError creates a new PwaError
func NewError(errorType ErrorType, code, message string) *PwaError {
	return &PwaError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
		Stack:     captureStack(),
	}
}

// WrapError wraps an existing error with PwaError
func WrapError(err error, errorType ErrorType, code, message string) *PwaError {
	e := NewError(errorType, code, message)
	e.Cause = err
	return e
}

// TypeOf returns the ErrorType of the first PwaError in err's chain
func TypeOf(err error) ErrorType {
	var pe *PwaError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

func captureStack() []string {
	var stack []string

	for i := 2; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		if strings.Contains(file, "adminpwa") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}

	return stack
}

// Common error constructors

// NewMissingSourceError reports an icon source that cannot be read
func NewMissingSourceError(path string) *PwaError {
	return NewError(ErrorTypeMissingSource, "SOURCE_NOT_FOUND", "Source image not found").
		WithContext("path", path).
		WithSuggestions([]string{
			"Provide a source image using --source=path/to/image.svg or --source=path/to/image.png",
			"Set pwa.icons.source_path in pwa.yaml",
		})
}

// NewMissingBackendError reports that no image backend is usable
func NewMissingBackendError(tried []string) *PwaError {
	return NewError(ErrorTypeMissingBackend, "NO_IMAGE_BACKEND", "No usable image backend").
		WithContext("tried", strings.Join(tried, ", ")).
		WithSuggestion("Set pwa.icons.backend to auto or remove it from the configuration")
}

// NewMissingArtifactError reports an absent manifest, service worker or icon
func NewMissingArtifactError(code, message string) *PwaError {
	return NewError(ErrorTypeMissingArtifact, code, message).
		WithSuggestions([]string{
			"Run 'adminpwa setup --publish-assets' to write the manifest and service worker",
			"Run 'adminpwa setup --generate-icons' to create the icon set",
		})
}

// NewInsecureTransportError is the HTTPS advisory
func NewInsecureTransportError(baseURL string) *PwaError {
	return NewError(ErrorTypeInsecureTransport, "HTTPS_REQUIRED", "HTTPS is required for PWA installation in production").
		WithContext("base_url", baseURL)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *PwaError {
	return NewError(ErrorTypeConfiguration, code, message).
		WithSuggestions([]string{
			"Check the configuration file syntax",
			"Run 'adminpwa setup --publish-assets --force' to regenerate pwa.yaml",
		})
}

// NewFileSystemError creates a filesystem error
func NewFileSystemError(code, message string) *PwaError {
	return NewError(ErrorTypeFileSystem, code, message).
		WithSuggestions([]string{
			"Check file permissions",
			"Ensure the path exists",
		})
}

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger Logger
	stats  *ErrorStats
}

// Logger interface for error logging
type Logger interface {
	Error(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ErrorStats tracks error statistics
type ErrorStats struct {
	TotalErrors  int               `json:"total_errors"`
	ErrorsByType map[ErrorType]int `json:"errors_by_type"`
	ErrorsByCode map[string]int    `json:"errors_by_code"`
	LastError    *PwaError         `json:"last_error,omitempty"`
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		stats: &ErrorStats{
			ErrorsByType: make(map[ErrorType]int),
			ErrorsByCode: make(map[string]int),
		},
	}
}

// Handle records and logs err. Advisory types are logged as warnings.
func (eh *ErrorHandler) Handle(err error) *PwaError {
	if err == nil {
		return nil
	}

	var pe *PwaError
	if !errors.As(err, &pe) {
		pe = WrapError(err, ErrorTypeUnknown, "UNKNOWN", err.Error())
	}

	eh.stats.TotalErrors++
	eh.stats.ErrorsByType[pe.Type]++
	eh.stats.ErrorsByCode[pe.Code]++
	eh.stats.LastError = pe

	if eh.logger != nil {
		switch pe.Type {
		case ErrorTypeInsecureTransport, ErrorTypeMissingBackend:
			eh.logger.Warn("%s [%s] %s", pe.Type.String(), pe.Code, pe.Error())
		default:
			eh.logger.Error("%s [%s] %s", pe.Type.String(), pe.Code, pe.Error())
		}
		for key, value := range pe.Context {
			eh.logger.Debug("Error context: %s = %s", key, value)
		}
	}

	return pe
}

// GetStats returns error statistics
func (eh *ErrorHandler) GetStats() *ErrorStats {
	return eh.stats
}

var globalErrorHandler *ErrorHandler

// InitGlobalErrorHandler initializes the global error handler
func InitGlobalErrorHandler(logger Logger) {
	globalErrorHandler = NewErrorHandler(logger)
}

// GetGlobalErrorHandler returns the global error handler
func GetGlobalErrorHandler() *ErrorHandler {
	if globalErrorHandler == nil {
		globalErrorHandler = NewErrorHandler(nil)
	}
	return globalErrorHandler
}

// Handle handles an error using the global error handler
func Handle(err error) *PwaError {
	return GetGlobalErrorHandler().Handle(err)
}
