package errors

var (
	// Caller errors, not retried.
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be positive and within plan limits",
	}
	ErrSameWallet = &DomainError{
		Code:    "SAME_WALLET",
		Message: "source and destination wallets are the same",
	}

	// Business-rule violations, surfaced to the user.
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
	}
	ErrWalletLocked = &DomainError{
		Code:    "WALLET_LOCKED",
		Message: "wallet is not available for this operation",
	}
	ErrInvestmentNotActive = &DomainError{
		Code:    "INVESTMENT_NOT_ACTIVE",
		Message: "investment is not in a state that allows this operation",
	}
	ErrPlanInactive = &DomainError{
		Code:    "PLAN_INACTIVE",
		Message: "investment plan is not open for new contracts",
	}

	// Programming or configuration errors. Fatal, logged.
	ErrCurrencyMismatch = &DomainError{
		Code:    "CURRENCY_MISMATCH",
		Message: "operation mixes amounts in different currencies",
	}

	// Transient; safe to retry with backoff.
	ErrWalletBusy = &DomainError{
		Code:    "WALLET_BUSY",
		Message: "could not acquire wallet lock, retry later",
	}

	// Missing entities, surfaced as 404-equivalents.
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrInvestmentNotFound = &DomainError{
		Code:    "INVESTMENT_NOT_FOUND",
		Message: "investment not found",
	}
	ErrPlanNotFound = &DomainError{
		Code:    "PLAN_NOT_FOUND",
		Message: "investment plan not found",
	}
)
