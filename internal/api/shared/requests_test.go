package shared

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Level    int     `json:"level"    validate:"gte=1"`
	Timezone *string `json:"timezone" validate:"omitempty,timezone"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    int
	}{
		{name: "valid", body: `{"level": 2}`, want: 2},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"level": 2, "extra": true}`, wantErr: true},
		{name: "trailing data", body: `{"level": 2}{"level": 3}`, wantErr: true},
		{name: "malformed", body: `{"level":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var got sample
			err := DecodeJSON(httptest.NewRecorder(), r, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Level)
		})
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &sample{}), ErrEmptyBody)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()
	tz := func(s string) *string { return &s }

	assert.NoError(t, ValidateRequest(&sample{Level: 1}))
	assert.NoError(t, ValidateRequest(&sample{Level: 1, Timezone: tz("Europe/Paris")}))
	assert.Error(t, ValidateRequest(&sample{Level: 0}))
	assert.Error(t, ValidateRequest(&sample{Level: 1, Timezone: tz("Nowhere/Special")}))
}
