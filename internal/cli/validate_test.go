package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, "menukit.cue", `
max_id_length: 90
log: level: "debug"
menus: {
	counter: id: "c"
	"settings.notes": version: 2
}
`)

	out, err := execute(t, "validate", path, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" is valid")
	assert.Contains(t, out, "identifier limit: 90")
	assert.Contains(t, out, "menu overrides:   2")
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "limit out of range",
			content: "\nmax_id_length: 500\n",
			message: "max_id_length",
		},
		{
			name:    "unknown field",
			content: "colour: \"red\"\n",
			message: "colour",
		},
		{
			name:    "override for unknown menu",
			content: "menus: nope: id: \"x\"\n",
			message: "override for an unregistered menu",
		},
		{
			name:    "id clash",
			content: "menus: counter: id: \"browse\"\n",
			message: "already used",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "menukit.cue", tt.content)

			out, err := execute(t, "validate", path, "--format", "json")
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp struct {
				Status string           `json:"status"`
				Data   ValidationResult `json:"data"`
				Error  *CLIError        `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, ErrCodeInvalidConf, resp.Error.Code)
			assert.False(t, resp.Data.Valid)
			require.Len(t, resp.Data.Errors, 1)
			assert.Contains(t, resp.Data.Errors[0].Message, tt.message)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "read config")
}
