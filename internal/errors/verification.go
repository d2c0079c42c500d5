package errors

var (
	ErrCodeNotFound = &DomainError{
		Code:    "CODE_NOT_FOUND",
		Message: "verification code not found",
	}
	ErrCodeExpired = &DomainError{
		Code:    "CODE_EXPIRED",
		Message: "verification code has expired",
	}
	ErrCodeInvalid = &DomainError{
		Code:    "CODE_INVALID",
		Message: "verification code does not match",
	}
	ErrTooManyAttempts = &DomainError{
		Code:    "TOO_MANY_ATTEMPTS",
		Message: "verification code attempt limit reached",
	}
	ErrResendCooldown = &DomainError{
		Code:    "RESEND_COOLDOWN",
		Message: "a code was sent recently, wait before requesting another",
	}
)
