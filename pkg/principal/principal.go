package principal

import (
	"fmt"
)

// MaxBytes 主体标识符字节表示的最大长度。
// 派生子账户是一个 32 字节缓冲区，标识符必须能完整放入其中。
const MaxBytes = 32

// Anonymous 匿名调用者哨兵值。
// 所有写操作 (register/deposit/withdraw) 都必须拒绝它。
var Anonymous = ID("anonymous")

// ID 代表一个经过运行时边界认证的调用者主体标识符。
// 对本系统而言它是不透明的: 我们只关心它的字节表示和相等性。
type ID string

// ErrTooLong 标识符字节表示超过 MaxBytes 时返回。
type ErrTooLong struct {
	Length int
}

func (e *ErrTooLong) Error() string {
	return fmt.Sprintf("principal too long: %d bytes (max %d)", e.Length, MaxBytes)
}

// Parse 校验并构造一个主体标识符。
// 空字符串视为匿名调用者 (运行时未提供身份)。
func Parse(s string) (ID, error) {
	if len(s) > MaxBytes {
		return "", &ErrTooLong{Length: len(s)}
	}
	if s == "" {
		return Anonymous, nil
	}
	return ID(s), nil
}

// Bytes 返回标识符的规范字节表示。
// 调用方负责保证长度不超过 MaxBytes (Parse 已校验)。
func (id ID) Bytes() []byte {
	return []byte(id)
}

// IsAnonymous 判断是否为匿名哨兵值。
func (id ID) IsAnonymous() bool {
	return id == Anonymous || id == ""
}

func (id ID) String() string {
	return string(id)
}
