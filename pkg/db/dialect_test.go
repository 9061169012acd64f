package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectSelection(t *testing.T) {
	cases := []struct {
		dbType string
		want   string
	}{
		{dbType: "postgres", want: "postgres"},
		{dbType: "mysql", want: "mysql"},
		{dbType: "sqlite", want: "sqlite"},
	}
	for _, tc := range cases {
		t.Run(tc.dbType, func(t *testing.T) {
			dialector, err := Dialect(Config{
				Type:     tc.dbType,
				Host:     "localhost",
				Port:     "5432",
				Name:     "invora",
				User:     "invora",
				Password: "secret",
				SSLMode:  "disable",
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, dialector.Name())
		})
	}
}

func TestDialectUnsupportedType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
