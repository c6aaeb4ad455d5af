package protocol

import "github.com/Cryborg/sugoroku/internal/apperrors"

// 错误码
const (
	ErrCodeUnknown              = 1000
	ErrCodeInvalidMsg           = 1001
	ErrCodeRateLimit            = 1002 // 速率限制
	ErrCodeNotFound             = 2001
	ErrCodeInvalidState         = 3001
	ErrCodeInsufficientResource = 3002
	ErrCodePreconditionFailed   = 3003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:              "unknown error",
	ErrCodeInvalidMsg:           "invalid message format",
	ErrCodeRateLimit:            "too many requests",
	ErrCodeNotFound:             "not found",
	ErrCodeInvalidState:         "invalid state",
	ErrCodeInsufficientResource: "insufficient resource",
	ErrCodePreconditionFailed:   "precondition failed",
}

// CodeOf maps a game error to its wire code.
func CodeOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return ErrCodeNotFound
	case apperrors.KindInvalidState:
		return ErrCodeInvalidState
	case apperrors.KindInsufficientResource:
		return ErrCodeInsufficientResource
	case apperrors.KindPreconditionFailed:
		return ErrCodePreconditionFailed
	}
	return ErrCodeUnknown
}
