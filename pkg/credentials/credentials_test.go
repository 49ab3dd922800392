package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestAndVerify(t *testing.T) {
	for _, secret := range []string{"", "password", "hunter2", "mật khẩu dài hơn một chút"} {
		stored, err := Digest(secret)
		require.NoError(t, err)
		assert.Len(t, stored, 64+saltLength)

		assert.True(t, Verify(secret, stored))
		assert.False(t, Verify(secret+"x", stored))
	}
}

func TestDigestSaltsDiffer(t *testing.T) {
	a, err := Digest("password")
	require.NoError(t, err)
	b, err := Digest("password")
	require.NoError(t, err)

	// Random salts make repeated digests differ, but both verify.
	assert.NotEqual(t, a, b)
	assert.True(t, Verify("password", a))
	assert.True(t, Verify("password", b))
}

func TestDigestWithSaltDeterministic(t *testing.T) {
	a := DigestWithSalt("password", "deadbeef")
	b := DigestWithSalt("password", "deadbeef")
	assert.Equal(t, a, b)
	assert.True(t, Verify("password", a))
}

func TestVerifyMalformedStored(t *testing.T) {
	assert.False(t, Verify("password", ""))
	assert.False(t, Verify("password", "short"))
}
