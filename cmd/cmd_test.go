package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	tests := [][]string{
		{"analyze"},
		{"project"},
		{"history"},
		{"files"},
		{"suggest"},
		{"clear"},
		{"dashboard"},
		{"export"},
		{"health-model"},
		{"mcp"},
		{"version"},
		{"store", "status"},
		{"store", "clear"},
		{"store", "migrate"},
	}
	for _, args := range tests {
		t.Run(args[len(args)-1], func(t *testing.T) {
			c, _, err := rootCmd.Find(args)
			require.NoError(t, err)
			assert.Equal(t, args[len(args)-1], c.Name())
		})
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		args []string
		flag string
	}{
		{[]string{"analyze"}, "explain"},
		{[]string{"analyze"}, "metrics-file"},
		{[]string{"files"}, "all"},
		{[]string{"clear"}, "all"},
		{[]string{"store", "migrate"}, "target-version"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			c, _, err := rootCmd.Find(tt.args)
			require.NoError(t, err)
			assert.NotNil(t, c.LocalFlags().Lookup(tt.flag))
		})
	}

	for _, name := range []string{"complexity-threshold", "duplication-threshold", "auto-record", "store-backend", "workspace", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "codepulse CLI")
	assert.Contains(t, buf.String(), "Version: dev")
}

func TestArgsValidation(t *testing.T) {
	require.Error(t, suggestCmd.Args(suggestCmd, nil))
	require.NoError(t, suggestCmd.Args(suggestCmd, []string{"a.js"}))
	require.Error(t, clearCmd.Args(clearCmd, []string{"a.js", "b.js"}))
}
