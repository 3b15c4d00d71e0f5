package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy of the Errno carrying a more specific message
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

// Is makes Errno values comparable via errors.Is regardless of message overrides
func (e Errno) Is(target error) bool {
	t, ok := target.(Errno)
	if !ok {
		if tp, okp := target.(*Errno); okp {
			t = *tp
			ok = true
		}
	}
	return ok && t.Code == e.Code
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrTokenInvalid     = Errno{Code: 10003, Message: "Token invalid"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Business Errors (20000+)
var (
	ErrAnonymousCaller     = Errno{Code: 20101, Message: "Anonymous caller"}
	ErrAlreadyRegistered   = Errno{Code: 20102, Message: "User already registered"}
	ErrNotRegistered       = Errno{Code: 20103, Message: "User not registered"}
	ErrInsufficientBalance = Errno{Code: 20104, Message: "Insufficient balance"}
	ErrMalformedIdentifier = Errno{Code: 20105, Message: "Malformed identifier"}

	// 账本调用失败: 20200+
	// TransferFailed 是传输层失败 (不可达/响应损坏), LedgerRejected 是账本明确拒绝。
	// 两者互斥, 对应提现补偿的两条路径。
	ErrTransferFailed = Errno{Code: 20201, Message: "Ledger transfer failed (transport)"}
	ErrLedgerRejected = Errno{Code: 20202, Message: "Ledger rejected the transfer"}
)
