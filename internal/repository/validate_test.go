package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"naive seconds", "2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"utc suffix", "2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"fractional utc", "2024-05-01T10:00:00.000Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"offset", "2024-05-01T13:00:00+03:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"minutes only", "2024-05-01T10:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"space separated", "2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStartTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseStartTime_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "tomorrow", "2024-13-01T10:00:00", "01.05.2024 10:00"} {
		_, err := ParseStartTime(input)
		require.Error(t, err, input)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "start_time", ve.Field)
	}
}
