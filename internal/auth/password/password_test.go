package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams keeps the derivation cheap in tests.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func TestArgon2Verifier_HashAndVerify(t *testing.T) {
	t.Parallel()

	v := NewArgon2Verifier(testParams)

	hash, err := v.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, len(hash) > 0)
	assert.Contains(t, hash, "$argon2id$v=19$")

	ok, err := v.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Verifier_Hash_Empty(t *testing.T) {
	t.Parallel()

	v := NewArgon2Verifier(testParams)
	_, err := v.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestArgon2Verifier_Hash_UniqueSalts(t *testing.T) {
	t.Parallel()

	v := NewArgon2Verifier(testParams)

	first, err := v.Hash("secret")
	require.NoError(t, err)
	second, err := v.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2Verifier_Verify_MalformedHash(t *testing.T) {
	t.Parallel()

	v := NewArgon2Verifier(testParams)

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "Empty", encoded: ""},
		{name: "Not a PHC string", encoded: "plaintext"},
		{name: "Wrong algorithm", encoded: "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5"},
		{name: "Wrong version", encoded: "$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5"},
		{name: "Missing cost params", encoded: "$argon2id$v=19$m=8192$c2FsdA$a2V5"},
		{name: "Bad salt base64", encoded: "$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5"},
		{name: "Bad key base64", encoded: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!"},
		{name: "Zero time cost", encoded: "$argon2id$v=19$m=8192,t=0,p=1$c2FsdA$a2V5"},
		{name: "Unknown cost param", encoded: "$argon2id$v=19$m=8192,t=1,x=1$c2FsdA$a2V5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := v.Verify("whatever", tt.encoded)
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestNewArgon2Verifier_ZeroParams(t *testing.T) {
	t.Parallel()

	v := NewArgon2Verifier(Params{})
	hash, err := v.Hash("secret")
	require.NoError(t, err)

	ok, err := v.Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
