package principal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"Normal", "alice", ID("alice"), false},
		{"Empty maps to anonymous", "", Anonymous, false},
		{"Exactly max bytes", strings.Repeat("a", MaxBytes), ID(strings.Repeat("a", MaxBytes)), false},
		{"Too long", strings.Repeat("a", MaxBytes+1), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.True(t, ID("").IsAnonymous())
	assert.False(t, ID("alice").IsAnonymous())
}

func TestBytesRoundTrip(t *testing.T) {
	id := ID("bob")
	assert.Equal(t, []byte("bob"), id.Bytes())
}
