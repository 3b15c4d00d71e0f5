package address

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"vault-core/pkg/crypto_util"
	"vault-core/pkg/principal"
)

// SubaccountSize 子账户固定长度 (字节)。
const SubaccountSize = 32

// Subaccount 是账本上的子账户标识: 固定 32 字节。
type Subaccount [SubaccountSize]byte

// Address 标识外部账本上一个可支配的资金位置。
// Owner 是金库自身在账本上的主体标识, Subaccount 区分归属于哪个用户。
type Address struct {
	Owner      principal.ID `json:"owner"`
	Subaccount Subaccount   `json:"subaccount"`
}

// ErrMalformed 标识符无法安全放入子账户缓冲区。
type ErrMalformed struct {
	Principal principal.ID
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed identifier: %q does not fit a %d-byte subaccount", e.Principal, SubaccountSize)
}

// DeriveSubaccount 从用户主体标识派生一个确定性的子账户。
// 规则: 32 字节零填充缓冲区, 标识符的规范字节拷贝到低位。
// 注意: 超长标识符必须报错, 绝不能静默截断 (否则两个不同用户可能派生出同一地址)。
func DeriveSubaccount(user principal.ID) (Subaccount, error) {
	var sub Subaccount
	raw := user.Bytes()
	if len(raw) > SubaccountSize {
		return sub, &ErrMalformed{Principal: user}
	}
	copy(sub[:], raw)
	return sub, nil
}

// Derive 为用户派生存款地址: owner 固定为金库主体, 子账户由用户标识决定。
// 纯函数, 同一输入永远产生同一地址。
func Derive(owner principal.ID, user principal.ID) (Address, error) {
	sub, err := DeriveSubaccount(user)
	if err != nil {
		return Address{}, err
	}
	return Address{Owner: owner, Subaccount: sub}, nil
}

// checksum 地址文本编码的校验和: blake3 前 4 字节。
func (a Address) checksum() string {
	payload := append([]byte(a.Owner), a.Subaccount[:]...)
	sum := crypto_util.CalculateBlake3(payload)
	return sum[:8] // 4 bytes hex
}

// String 返回地址的文本编码: {owner}-{checksum}.{subaccount hex}。
// 全零子账户 (默认账户) 省略子账户部分。
func (a Address) String() string {
	var zero Subaccount
	if a.Subaccount == zero {
		return string(a.Owner)
	}
	return fmt.Sprintf("%s-%s.%s", a.Owner, a.checksum(), hex.EncodeToString(a.Subaccount[:]))
}

// Parse 解析文本编码的地址并校验 checksum。
func Parse(s string) (Address, error) {
	dot := strings.LastIndex(s, ".")
	if dot < 0 {
		// 默认账户: 只有 owner
		owner, err := principal.Parse(s)
		if err != nil {
			return Address{}, fmt.Errorf("invalid address owner: %w", err)
		}
		return Address{Owner: owner}, nil
	}

	head, subHex := s[:dot], s[dot+1:]
	dash := strings.LastIndex(head, "-")
	if dash < 0 {
		return Address{}, fmt.Errorf("invalid address %q: missing checksum", s)
	}
	owner, err := principal.Parse(head[:dash])
	if err != nil {
		return Address{}, fmt.Errorf("invalid address owner: %w", err)
	}

	raw, err := hex.DecodeString(subHex)
	if err != nil || len(raw) != SubaccountSize {
		return Address{}, fmt.Errorf("invalid address %q: bad subaccount encoding", s)
	}

	addr := Address{Owner: owner}
	copy(addr.Subaccount[:], raw)
	if addr.checksum() != head[dash+1:] {
		return Address{}, fmt.Errorf("invalid address %q: checksum mismatch", s)
	}
	return addr, nil
}

// Equal 比较两个地址是否指向同一资金位置。
func (a Address) Equal(b Address) bool {
	return a.Owner == b.Owner && bytes.Equal(a.Subaccount[:], b.Subaccount[:])
}
