package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{
			name:    "wrapped sol mint",
			address: "So11111111111111111111111111111111111111112",
			wantErr: false,
		},
		{
			name:    "usdc mint",
			address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			wantErr: false,
		},
		{
			name:    "empty",
			address: "",
			wantErr: true,
		},
		{
			name:    "invalid base58 characters",
			address: "0OIl+not-base58",
			wantErr: true,
		},
		{
			name:    "too short",
			address: "abc",
			wantErr: true,
		},
		{
			name:    "valid base58 but wrong length",
			address: "2NEpo7TZRRrLZSi2U", // "Hello World!" in base58, 12 bytes
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, IsValidAddress(tt.address))
			} else {
				assert.NoError(t, err)
				assert.True(t, IsValidAddress(tt.address))
			}
		})
	}
}
