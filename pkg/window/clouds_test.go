package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCloud(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Worldwide (Standard Multi-Tenant)", CloudWorldwide},
		{"worldwide", CloudWorldwide},
		{"General", CloudWorldwide},
		{"WW", CloudWorldwide},
		{"GCCH", CloudGCCHigh},
		{"gcc high", CloudGCCHigh},
		{"GCC", CloudGCC},
		{"US GCC", CloudGCC},
		{"DoD", CloudDoD},
		{"us dod", CloudDoD},
		{"  gcc  ", CloudGCC},
		{"Contoso Private Cloud", "Contoso Private Cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalCloud(tt.in))
		})
	}
}

func TestCanonicalClouds(t *testing.T) {
	got := CanonicalClouds([]string{"WW", "worldwide", "GCCH", "", "dod"})
	assert.Equal(t, []string{CloudWorldwide, CloudGCCHigh, CloudDoD}, got)

	assert.Nil(t, CanonicalClouds(nil))
	assert.Nil(t, CanonicalClouds([]string{"", "  "}))
}
