package main

import (
	"flag"
	"testing"
	"time"

	"github.com/pablomonte/mkbgp/pkg/formatter"
	"github.com/pablomonte/mkbgp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFlags applies flag values for one test and restores the defaults afterwards
func setFlags(t *testing.T, values map[string]string) {
	t.Helper()
	for name, value := range values {
		require.NoError(t, flag.Set(name, value))
	}
	t.Cleanup(func() {
		for name := range values {
			f := flag.Lookup(name)
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		templates = nil
		excludes = nil
	})
}

func TestStringList(t *testing.T) {
	var l stringList
	require.NoError(t, l.Set("ffhh:upstream"))
	require.NoError(t, l.Set("ffks:peers"))

	assert.Equal(t, stringList{"ffhh:upstream", "ffks:peers"}, l)
	assert.Equal(t, "ffhh:upstream,ffks:peers", l.String())
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, types.IPv6, cfg.Family)
	assert.Equal(t, formatter.Bird, cfg.Format)
	assert.Equal(t, "peers", cfg.DefaultTemplate)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "icvpn", cfg.Interface)
	assert.Empty(t, cfg.Templates)
}

func TestBuildConfig_Flags(t *testing.T) {
	setFlags(t, map[string]string{
		"4":       "true",
		"f":       "quagga",
		"p":       "icvpn_",
		"timeout": "0.5",
		"i":       "tinc0",
	})
	templates = stringList{"ffhh:upstream"}

	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, types.IPv4, cfg.Family)
	assert.Equal(t, formatter.Quagga, cfg.Format)
	assert.Equal(t, "icvpn_", cfg.Prefix)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "tinc0", cfg.Interface)
	assert.Equal(t, map[string]string{"ffhh": "upstream"}, cfg.Templates)
}

func TestBuildConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		flags     map[string]string
		templates stringList
		wantErr   error
	}{
		{
			name:    "both families",
			flags:   map[string]string{"4": "true", "6": "true"},
			wantErr: types.ErrUnsupportedFamily,
		},
		{
			name:    "unknown family",
			flags:   map[string]string{"family": "ipx"},
			wantErr: types.ErrUnsupportedFamily,
		},
		{
			name:    "unknown format",
			flags:   map[string]string{"f": "openbgpd"},
			wantErr: formatter.ErrUnknownFormat,
		},
		{
			name:      "malformed override",
			templates: stringList{"ffhh"},
			wantErr:   types.ErrInvalidTemplate,
		},
		{
			name:    "empty default template",
			flags:   map[string]string{"d": ""},
			wantErr: types.ErrInvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.flags)
			templates = tt.templates

			_, err := buildConfig()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpenSource_Unknown(t *testing.T) {
	setFlags(t, map[string]string{"source": "ldap"})

	_, _, err := openSource()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}
