package apperrors

type ErrorCode string

const (
	ErrCodeAccessTokenExpired    ErrorCode = "access_token_expired"
	ErrCodeAuthenticationFailure ErrorCode = "authentication_error"
	ErrCodeAuthorizationFailure  ErrorCode = "authorization_error"
	ErrCodeDatabaseError         ErrorCode = "database_error"
	ErrCodeForbidden             ErrorCode = "forbidden"
	ErrCodeInsufficientStock     ErrorCode = "insufficient_stock"
	ErrCodeInternalError         ErrorCode = "internal_error"
	ErrCodeInvalidRequest        ErrorCode = "invalid_request"
	ErrCodeInvalidURLParam       ErrorCode = "invalid_url_param"
	ErrCodeMalformedBody         ErrorCode = "malformed_body"
	ErrCodeOTPInvalid            ErrorCode = "otp_invalid"
	ErrCodePasswordTooShort      ErrorCode = "password_too_short"
	ErrCodeRateLimitExceeded     ErrorCode = "rate_limit_exceeded"
	ErrCodeRequestTooLarge       ErrorCode = "request_too_large"
	ErrCodeResourceAlreadyExists ErrorCode = "resource_already_exists"
	ErrCodeResourceInUse         ErrorCode = "resource_in_use"
	ErrCodeResourceNotFound      ErrorCode = "resource_not_found"
	ErrCodeServiceUnavailable    ErrorCode = "service_unavailable"
	ErrCodeTokenInvalid          ErrorCode = "token_invalid"
	ErrCodeValidationFailed      ErrorCode = "validation_failed"
)
