package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{
			name:      "Simple pair",
			input:     "key=value",
			wantKey:   "key",
			wantValue: "value",
		},
		{
			name:      "Value containing equals",
			input:     "key=a=b",
			wantKey:   "key",
			wantValue: "a=b",
		},
		{
			name:      "Empty value",
			input:     "key=",
			wantKey:   "key",
			wantValue: "",
		},
		{
			name:      "Empty key",
			input:     "=value",
			wantKey:   "",
			wantValue: "value",
		},
		{
			name:    "No separator",
			input:   "keyvalue",
			wantErr: true,
		},
		{
			name:    "Empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, value, err := ParseKeyValue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestIsIdentifierChar(t *testing.T) {
	t.Parallel()

	for _, c := range "abcxyzABCXYZ0189-_" {
		assert.True(t, IsIdentifierChar(c), "expected %q to be legal", c)
	}
	for _, c := range " .$/\\:ä€" {
		assert.False(t, IsIdentifierChar(c), "expected %q to be illegal", c)
	}
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	assert.True(t, IsIdentifier("my-repo_2"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("my repo"))
	assert.False(t, IsIdentifier("naïve"))
}

func TestIsFSLegal(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"CON", "PRN", "AUX", "NUL", "LST"} {
		assert.False(t, IsFSLegal(name), "expected %q to be reserved", name)
	}
	for i := 0; i <= 9; i++ {
		assert.False(t, IsFSLegal(fmt.Sprintf("COM%d", i)))
		assert.False(t, IsFSLegal(fmt.Sprintf("LPT%d", i)))
	}

	assert.True(t, IsFSLegal("repo"))
	assert.True(t, IsFSLegal("COM10"))
	assert.True(t, IsFSLegal("CONSOLE"))
}

func TestIsFSLegal_CaseSensitivity(t *testing.T) {
	t.Parallel()

	// Membership is exact-case only: lowercase reserved names pass. Windows
	// itself rejects them case-insensitively; the gap is intentional.
	assert.True(t, IsFSLegal("con"))
	assert.True(t, IsFSLegal("lpt1"))
}

func TestParseError_Message(t *testing.T) {
	t.Parallel()

	err := NewParseError("key value", "oops")
	assert.Contains(t, err.Error(), "key value")
	assert.Contains(t, err.Error(), "oops")
}
