package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{input: "bird", expected: Bird},
		{input: "quagga", expected: Quagga},
		{input: "BIRD", expected: Bird},
		{input: "frr", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestNew(t *testing.T) {
	f, err := New(Bird)
	require.NoError(t, err)
	assert.IsType(t, &BirdFormatter{}, f)

	f, err = New(Quagga)
	require.NoError(t, err)
	assert.IsType(t, &QuaggaFormatter{}, f)

	_, err = New(Kind("openbgpd"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestBird_PassivePeer(t *testing.T) {
	f := NewBird()
	f.AddData("65001", "bgp_alice", "upstream", "10.0.0.1", true)

	out, err := f.Finalize()
	require.NoError(t, err)

	expected := `protocol bgp bgp_alice from upstream {
  neighbor 10.0.0.1 as 65001;
  passive yes;
}
`
	assert.Equal(t, expected, out)
}

func TestBird_MultiplePeers(t *testing.T) {
	f := NewBird()
	f.AddData("65001", "bgp_alice", "upstream", "10.0.0.1", false)
	f.AddData("65002", "bgp_bob", "peers", "fe80::2%icvpn", false)

	out, err := f.Finalize()
	require.NoError(t, err)

	expected := `protocol bgp bgp_alice from upstream {
  neighbor 10.0.0.1 as 65001;
}

protocol bgp bgp_bob from peers {
  neighbor fe80::2%icvpn as 65002;
}
`
	assert.Equal(t, expected, out)
	assert.NotContains(t, out, "passive")
}

func TestBird_NameTruncation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short name", input: "bgp_alice", expected: "bgp_alice"},
		{name: "exactly 32", input: strings.Repeat("a", 32), expected: strings.Repeat("a", 32)},
		{name: "33 is truncated", input: strings.Repeat("b", 33), expected: strings.Repeat("b", 32)},
		{
			name:     "long host name",
			input:    "icvpn_freifunk_hamburg_gateway_number_one",
			expected: "icvpn_freifunk_hamburg_gateway_n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewBird()
			f.AddData("65001", tt.input, "peers", "10.0.0.1", false)

			out, err := f.Finalize()
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "protocol bgp "+tt.expected+" from peers {"), out)
		})
	}
}

func TestBird_IsNotCommenter(t *testing.T) {
	var f Formatter = NewBird()
	_, ok := f.(Commenter)
	assert.False(t, ok)
}

func TestQuagga_PassivePeer(t *testing.T) {
	f := NewQuagga()
	f.AddData("65001", "bgp_alice", "upstream", "10.0.0.1", true)

	out, err := f.Finalize()
	require.NoError(t, err)

	expected := `neighbor 10.0.0.1 remote-as 65001
neighbor 10.0.0.1 description bgp_alice
neighbor 10.0.0.1 peer-group upstream
neighbor 10.0.0.1 passive
`
	assert.Equal(t, expected, out)
	assert.NotContains(t, out, "{")
	assert.NotContains(t, out, "}")
	assert.Equal(t, 4, strings.Count(out, "neighbor 10.0.0.1 "))
}

func TestQuagga_ActivePeerNoTruncation(t *testing.T) {
	name := strings.Repeat("x", 40)
	f := NewQuagga()
	f.AddData("65001", name, "peers", "2001:db8::1", false)

	out, err := f.Finalize()
	require.NoError(t, err)

	assert.Contains(t, out, "neighbor 2001:db8::1 description "+name+"\n")
	assert.NotContains(t, out, "passive")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestQuagga_AddComment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "single line", text: "community ffhh", expected: "! community ffhh\n"},
		{name: "multi line", text: "generated\ndo not edit", expected: "! generated\n! do not edit\n"},
		{name: "trailing newline", text: "generated\n", expected: "! generated\n"},
		{name: "crlf", text: "a\r\nb", expected: "! a\n! b\n"},
		{name: "blank line kept", text: "a\n\nb", expected: "! a\n! \n! b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewQuagga()
			f.AddComment(tt.text)

			out, err := f.Finalize()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestQuagga_CommentsInterleaved(t *testing.T) {
	f := NewQuagga()
	f.AddComment("ffhh")
	f.AddData("65052", "hamburg01", "peers", "10.207.0.5", false)

	out, err := f.Finalize()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "! ffhh", lines[0])
	assert.Equal(t, "neighbor 10.207.0.5 remote-as 65052", lines[1])
}

func TestFormatter_Empty(t *testing.T) {
	for _, kind := range []Kind{Bird, Quagga} {
		t.Run(string(kind), func(t *testing.T) {
			f, err := New(kind)
			require.NoError(t, err)

			out, err := f.Finalize()
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestFormatter_SingleUse(t *testing.T) {
	for _, kind := range []Kind{Bird, Quagga} {
		t.Run(string(kind), func(t *testing.T) {
			f, err := New(kind)
			require.NoError(t, err)

			f.AddData("65001", "a", "peers", "10.0.0.1", false)
			_, err = f.Finalize()
			require.NoError(t, err)

			_, err = f.Finalize()
			assert.ErrorIs(t, err, ErrFinalized)

			assert.Panics(t, func() {
				f.AddData("65001", "b", "peers", "10.0.0.2", false)
			})
		})
	}
}
