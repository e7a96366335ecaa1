package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiStringFlagAppendsOnSet(t *testing.T) {
	var concrete MultiStringFlag
	iface := &concrete

	require.NoError(t, iface.Set("foo"))
	require.NoError(t, iface.Set("bar"))

	require.EqualError(t, iface.Set(""), "value cannot be empty")

	require.Equal(t, MultiStringFlag{value: []string{"foo", "bar"}}, concrete)
	require.Equal(t, "foo,bar", iface.String())
}

func TestMultiStringFlagSplit(t *testing.T) {
	tests := map[string]struct {
		s          *MultiStringFlag
		wantResult []string
	}{
		"empty": {
			s:          &MultiStringFlag{},
			wantResult: []string{},
		},
		"one value": {
			s:          &MultiStringFlag{value: []string{"/public=./public"}},
			wantResult: []string{"/public=./public"},
		},
		"empty values are dropped": {
			s:          &MultiStringFlag{value: []string{"value1", ",", "value3,"}},
			wantResult: []string{"value1", "value3"},
		},
		"multiple values in one string": {
			s:          &MultiStringFlag{value: []string{"value1, value2"}},
			wantResult: []string{"value1", "value2"},
		},
		"header separator": {
			s:          &MultiStringFlag{value: []string{"X-A: 1, 2;;X-B: 3"}, separator: ";;"},
			wantResult: []string{"X-A: 1, 2", "X-B: 3"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.wantResult, tt.s.Split())
		})
	}
}
