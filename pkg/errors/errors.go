package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrBadRequest           = errors.New("bad request")
	ErrInternalServer       = errors.New("internal server error")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrAccountNotFound      = errors.New("account not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrConversationNotFound = errors.New("conversation not found")

	// Блокировка и политика видимости
	ErrBlockedCounterpart = errors.New("please unblock this user to continue the conversation")
	ErrPolicyDenied       = errors.New("action is not allowed by policy")
	ErrNoConversation     = errors.New("no conversation exists with this user, please report the profile instead")

	// Исчерпание квоты просмотров
	ErrOutOfViews         = errors.New("no candidate views left in the subscription")
	ErrInsufficientWallet = errors.New("insufficient wallet balance")
	ErrNoViewsIncluded    = errors.New("the current package does not include candidate views")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// IsQuotaExhausted сообщает, относится ли ошибка к семейству исчерпания квоты
func IsQuotaExhausted(err error) bool {
	return errors.Is(err, ErrOutOfViews) ||
		errors.Is(err, ErrInsufficientWallet) ||
		errors.Is(err, ErrNoViewsIncluded)
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrJobNotFound),
		errors.Is(err, ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrPolicyDenied),
		errors.Is(err, ErrBlockedCounterpart),
		errors.Is(err, ErrNoConversation):
		return http.StatusForbidden
	case IsQuotaExhausted(err):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
