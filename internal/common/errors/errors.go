package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Assessment input
	ErrCodeInvalidInputRange          ErrorCode = "INVALID_INPUT_RANGE"
	ErrCodeAssessmentValidationFailed ErrorCode = "ASSESSMENT_VALIDATION_FAILED"

	// Reference data
	ErrCodeCatalogInvalid          ErrorCode = "CATALOG_INVALID"
	ErrCodeProviderSnapshotFailed ErrorCode = "PROVIDER_SNAPSHOT_FAILED"
	ErrCodeProviderInvalid        ErrorCode = "PROVIDER_INVALID"

	// Pipeline
	ErrCodePipelineFailed       ErrorCode = "PIPELINE_FAILED"
	ErrCodePipelineCommitFailed ErrorCode = "PIPELINE_COMMIT_FAILED"
	ErrCodeCompanyLockTimeout   ErrorCode = "COMPANY_LOCK_TIMEOUT"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeResourceNotFound         ErrorCode = "RESOURCE_NOT_FOUND"

	// Post-commit sinks
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSearchIndexFailed      ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches on code so callers can test errors.Is(err, &StandardError{Code: ...}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidInputRangeError reports a questionnaire rating outside [1,5].
func NewInvalidInputRangeError(field string, value int) *StandardError {
	e := newError(ErrCodeInvalidInputRange,
		"Assessment rating out of range",
		fmt.Sprintf("%s must be an integer in [1,5], got %d", field, value),
		false, nil)
	e.Metadata = map[string]interface{}{
		"field": field,
		"value": value,
		"min":   1,
		"max":   5,
	}
	return e
}

func NewAssessmentValidationFailedError(details string) *StandardError {
	return newError(ErrCodeAssessmentValidationFailed, "Assessment payload validation failed", details, false, nil)
}

func NewCatalogInvalidError(details string, cause error) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Use-case catalog is invalid", details, false, cause)
}

func NewProviderSnapshotFailedError(err error) *StandardError {
	return newError(ErrCodeProviderSnapshotFailed, "Failed to load provider snapshot", errDetails(err), true, err)
}

func NewProviderInvalidError(details string) *StandardError {
	return newError(ErrCodeProviderInvalid, "Provider record is invalid", details, false, nil)
}

// NewPipelineFailedError wraps any failure between validation and commit. The
// run is never partially recovered, so it is not retryable.
func NewPipelineFailedError(stage string, err error) *StandardError {
	e := newError(ErrCodePipelineFailed, "Assessment pipeline failed", fmt.Sprintf("stage: %s, error: %s", stage, errDetails(err)), false, err)
	e.Metadata = map[string]interface{}{"stage": stage}
	return e
}

func NewPipelineCommitFailedError(companyID string, err error) *StandardError {
	e := newError(ErrCodePipelineCommitFailed, "Atomic commit of pipeline output failed", errDetails(err), false, err)
	e.Metadata = map[string]interface{}{"companyId": companyID}
	return e
}

func NewCompanyLockTimeoutError(companyID string, err error) *StandardError {
	e := newError(ErrCodeCompanyLockTimeout, "Timed out waiting for company pipeline lock", fmt.Sprintf("companyId: %s, error: %s", companyID, errDetails(err)), true, err)
	e.Metadata = map[string]interface{}{"companyId": companyID}
	return e
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errDetails(err), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error", fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)), true, err)
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", resource), details, false, nil)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true, err)
}

func NewSearchIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchIndexFailed, "Search index write failed", fmt.Sprintf("index: %s, error: %s", index, errDetails(err)), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether any StandardError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &StandardError{Code: code})
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInputRange:          "INVALID_INPUT_RANGE",
	ErrCodeAssessmentValidationFailed: "ASSESSMENT_VALIDATION_FAILED",
	ErrCodeCatalogInvalid:             "CATALOG_INVALID",
	ErrCodeProviderSnapshotFailed:     "PROVIDER_SNAPSHOT_FAILED",
	ErrCodeProviderInvalid:            "PROVIDER_INVALID",
	ErrCodePipelineFailed:             "PIPELINE_FAILED",
	ErrCodePipelineCommitFailed:       "PIPELINE_FAILED",
	ErrCodeCompanyLockTimeout:         "COMPANY_LOCK_TIMEOUT",
	ErrCodeDatabaseConnectionFailed:   "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:       "QUERY_EXECUTION_FAILED",
	ErrCodeResourceNotFound:           "RESOURCE_NOT_FOUND",
	ErrCodeNotificationSendFailed:     "NOTIFICATION_SEND_FAILED",
	ErrCodeSearchIndexFailed:          "SEARCH_INDEX_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeProviderSnapshotFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeCompanyLockTimeout,
		ErrCodeTimeout:
		return 2
	default:
		// input, catalog and pipeline failures surface immediately
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PIPELINE") || strings.Contains(codeStr, "LOCK"):
		return "PIPELINE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "PROVIDER"):
		return "REFERENCE_DATA"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
