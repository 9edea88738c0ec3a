package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   uint64
		want    int64
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"signed max", math.MaxInt64, math.MaxInt64, false},
		{"one past signed max", math.MaxInt64 + 1, 0, true},
		{"uint64 max", math.MaxUint64, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := bigint("end_time", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "end_time")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
