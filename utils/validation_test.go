package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDateParam(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{name: "valid date", date: "2024-01-15", wantErr: false},
		{name: "missing day", date: "2024-01", wantErr: true},
		{name: "slashes", date: "2024/01/15", wantErr: true},
		{name: "trailing text", date: "2024-01-15x", wantErr: true},
		{name: "empty", date: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateParam(tt.date)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitTestID(t *testing.T) {
	t.Run("valid identifier", func(t *testing.T) {
		file, name, err := SplitTestID("checkout.spec.ts::Validate payment")
		require.NoError(t, err)
		assert.Equal(t, "checkout.spec.ts", file)
		assert.Equal(t, "Validate payment", name)
	})

	t.Run("test name may itself contain separators", func(t *testing.T) {
		file, name, err := SplitTestID("a.spec.ts::weird::title")
		require.NoError(t, err)
		assert.Equal(t, "a.spec.ts", file)
		assert.Equal(t, "weird::title", name)
	})

	tests := []struct {
		name   string
		testID string
	}{
		{name: "no separator", testID: "checkout.spec.ts"},
		{name: "empty file part", testID: "::Validate payment"},
		{name: "empty name part", testID: "checkout.spec.ts::"},
		{name: "empty string", testID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitTestID(tt.testID)
			assert.Error(t, err)
		})
	}
}
