package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:       "127.0.0.1",
		port:       8080,
		shrekImage: "https://example.com/shrek.png",
		sigmaImage: "https://example.com/sigma.png",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Accepts the defaults", func(t *testing.T) {
		assert.NoError(t, testConfig().validate())
	})

	t.Run("Rejects a lone TLS flag", func(t *testing.T) {
		cfg := testConfig()
		cfg.tlsCert = "cert.pem"

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "--tls-key")
	})

	t.Run("Rejects ports out of range", func(t *testing.T) {
		for _, port := range []int{0, -1, 65536} {
			cfg := testConfig()
			cfg.port = port

			assert.Error(t, cfg.validate(), port)
		}
	})

	t.Run("Rejects a negative session timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.sessionTimeout = -time.Second

		assert.Error(t, cfg.validate())
	})

	t.Run("Rejects an empty image", func(t *testing.T) {
		cfg := testConfig()
		cfg.sigmaImage = "  "

		assert.Error(t, cfg.validate())
	})

	t.Run("Scheme follows TLS", func(t *testing.T) {
		cfg := testConfig()
		assert.Equal(t, "http", cfg.scheme())

		cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
		assert.Equal(t, "https", cfg.scheme())
	})
}

func TestNewCmd(t *testing.T) {
	t.Run("Uses flag defaults", func(t *testing.T) {
		// Given: no environment overrides
		cfg := &Config{}

		// When: building the command
		cmd := newCmd(cfg)
		require.NoError(t, cmd.ParseFlags(nil))

		// Then: defaults are in place
		assert.Equal(t, "0.0.0.0", cfg.bind)
		assert.Equal(t, 8080, cfg.port)
		assert.Equal(t, time.Hour, cfg.sessionTimeout)
		assert.Equal(t, defaultShrekImage, cfg.shrekImage)
		assert.Equal(t, defaultSigmaImage, cfg.sigmaImage)
		assert.False(t, cfg.verbose)
	})

	t.Run("Reads settings from the environment", func(t *testing.T) {
		// Given: environment overrides
		t.Setenv("MEMESWEEPER_PORT", "9090")
		t.Setenv("MEMESWEEPER_SESSION_TIMEOUT", "5m")
		t.Setenv("MEMESWEEPER_VERBOSE", "true")
		cfg := &Config{}

		// When: building the command
		newCmd(cfg)

		// Then: the environment wins over defaults
		assert.Equal(t, 9090, cfg.port)
		assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)
		assert.True(t, cfg.verbose)
	})

	t.Run("Flags win over the environment", func(t *testing.T) {
		// Given: an environment port
		t.Setenv("MEMESWEEPER_PORT", "9090")
		cfg := &Config{}
		cmd := newCmd(cfg)

		// When: the port is also passed as a flag
		require.NoError(t, cmd.ParseFlags([]string{"--port", "7000", "--shrek_image", "https://example.com/s.png"}))

		// Then: the flag value is used, underscores are normalized
		assert.Equal(t, 7000, cfg.port)
		assert.Equal(t, "https://example.com/s.png", cfg.shrekImage)
	})

	t.Run("Prints the version", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newCmd(&Config{})
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--version"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "memesweeper v"+releaseVersion+"\n", out.String())
	})
}
