package address

import (
	"strings"
	"testing"

	"vault-core/pkg/principal"

	"github.com/stretchr/testify/assert"
)

const vaultOwner = principal.ID("vault-main")

func TestDeriveSubaccountDeterministic(t *testing.T) {
	user := principal.ID("alice-principal")

	sub1, err := DeriveSubaccount(user)
	assert.NoError(t, err)
	sub2, err := DeriveSubaccount(user)
	assert.NoError(t, err)

	// 同一用户两次派生必须得到完全相同的字节
	assert.Equal(t, sub1, sub2)

	// 低位是标识符字节, 其余为零填充
	assert.Equal(t, []byte(user), sub1[:len(user)])
	for i := len(user); i < SubaccountSize; i++ {
		assert.Zero(t, sub1[i])
	}
}

func TestDeriveSubaccountCollisionFree(t *testing.T) {
	sub1, err := DeriveSubaccount("alice")
	assert.NoError(t, err)
	sub2, err := DeriveSubaccount("bob")
	assert.NoError(t, err)

	assert.NotEqual(t, sub1, sub2)
}

func TestDeriveSubaccountOversized(t *testing.T) {
	// 33 字节标识符: 必须报错而不是截断
	oversized := principal.ID(strings.Repeat("x", SubaccountSize+1))

	_, err := DeriveSubaccount(oversized)
	assert.Error(t, err)

	var malformed *ErrMalformed
	assert.ErrorAs(t, err, &malformed)
}

func TestDeriveBoundary(t *testing.T) {
	// 刚好 32 字节: 合法
	exact := principal.ID(strings.Repeat("y", SubaccountSize))
	sub, err := DeriveSubaccount(exact)
	assert.NoError(t, err)
	assert.Equal(t, []byte(exact), sub[:])
}

func TestAddressRoundTrip(t *testing.T) {
	addr, err := Derive(vaultOwner, "carol")
	assert.NoError(t, err)

	parsed, err := Parse(addr.String())
	assert.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}

func TestParseRejectsBadChecksum(t *testing.T) {
	addr, err := Derive(vaultOwner, "carol")
	assert.NoError(t, err)

	encoded := addr.String()
	// 篡改 checksum 部分
	tampered := strings.Replace(encoded, addr.checksum(), "00000000", 1)
	if tampered == encoded {
		t.Skip("checksum happened to be all zeros")
	}

	_, err = Parse(tampered)
	assert.Error(t, err)
}

func TestDefaultAccountEncoding(t *testing.T) {
	// 全零子账户只编码 owner
	addr := Address{Owner: vaultOwner}
	assert.Equal(t, string(vaultOwner), addr.String())

	parsed, err := Parse(addr.String())
	assert.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}
