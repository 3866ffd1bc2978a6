package geoip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/geoip"
	"sitepulse/internal/testsupport"
)

func TestResolverWithoutDatabase(t *testing.T) {
	logger := testsupport.GetLogger()

	t.Run("empty path", func(t *testing.T) {
		r := geoip.NewResolver("", logger)
		require.NotNil(t, r)

		country, city := r.Lookup("8.8.8.8")
		assert.Empty(t, country)
		assert.Empty(t, city)
		assert.NoError(t, r.Close())
	})

	t.Run("missing file", func(t *testing.T) {
		r := geoip.NewResolver("/does/not/exist.mmdb", logger)
		require.NotNil(t, r)

		country, city := r.Lookup("8.8.8.8")
		assert.Empty(t, country)
		assert.Empty(t, city)
	})

	t.Run("garbage input never errors", func(t *testing.T) {
		r := geoip.NewResolver("", logger)

		for _, ip := range []string{"", "not-an-ip", "999.999.999.999"} {
			country, city := r.Lookup(ip)
			assert.Empty(t, country)
			assert.Empty(t, city)
		}
	})
}

func TestNilResolverIsSafe(t *testing.T) {
	var r *geoip.Resolver

	country, city := r.Lookup("8.8.8.8")
	assert.Empty(t, country)
	assert.Empty(t, city)
	assert.NoError(t, r.Close())
}
