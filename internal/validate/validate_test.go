package validate

import (
	"testing"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/stretchr/testify/require"
)

func TestUserName(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"alice", true},
		{"bob_99", true},
		{"j.doe-x", true},
		{"ab", false},
		{"9lives", false},
		{"has space", false},
		{"", false},
		{"a234567890123456789012345678901234", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := UserName(tt.in)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, common.ErrorInvalidInput)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"Alice <alice@example.com>", false},
		{"alice@localhost", false},
		{"alice", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := Email(tt.in)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, common.ErrorInvalidInput)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	require.NoError(t, Phone(""))
	require.NoError(t, Phone("+1 555-123-4567"))
	require.ErrorIs(t, Phone("call me"), common.ErrorInvalidInput)
}

func TestPassword(t *testing.T) {
	require.NoError(t, Password("longenough"))
	require.ErrorIs(t, Password("short"), common.ErrorInvalidInput)
}
