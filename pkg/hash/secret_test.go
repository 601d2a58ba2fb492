package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "long secret", secret: "correct horse battery staple"},
		{name: "minimum length", secret: "12345678"},
		{name: "too short", secret: "short", wantErr: true},
		{name: "empty", secret: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := Hash(tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.secret, hashed)
			assert.True(t, strings.HasPrefix(hashed, "$2a$12$"), "unexpected bcrypt prefix: %s", hashed)
		})
	}
}

func TestMatches(t *testing.T) {
	hashed, err := Hash("sidebar-secret")
	require.NoError(t, err)

	assert.True(t, Matches(hashed, "sidebar-secret"))
	assert.False(t, Matches(hashed, "sidebar-secreT"))
	assert.False(t, Matches(hashed, ""))
	assert.False(t, Matches("not-a-hash", "sidebar-secret"))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("ghp_exampletoken")
	b := Fingerprint("ghp_exampletoken")
	c := Fingerprint("ghp_othertoken")

	assert.Len(t, a, 12)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "ghp_")
	assert.Empty(t, Fingerprint(""))
}
