package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func promptCmd(input string, yes bool) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "import"}
	cmd.Flags().Bool("yes", false, "")
	if yes {
		_ = cmd.Flags().Set("yes", "true")
	}
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func counted(n int, err error) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, err }
}

func TestConfirmReplace(t *testing.T) {
	lockErr := errors.New("database is locked")

	tests := []struct {
		name       string
		count      func(context.Context) (int, error)
		input      string
		yes        bool
		want       bool
		wantPrompt string
	}{
		{"empty bank", counted(0, nil), "", false, true, ""},
		{"declined", counted(5, nil), "n\n", false, false, "Replace 5 stored questions"},
		{"accepted", counted(5, nil), "y\n", false, true, "Replace 5 stored questions"},
		{"count failure asks", counted(0, lockErr), "\n", false, false, "Could not count stored questions (database is locked)"},
		{"count failure accepted", counted(0, lockErr), "yes\n", false, true, "Could not count stored questions"},
		{"count failure with --yes", counted(0, lockErr), "", true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := promptCmd(tt.input, tt.yes)
			assert.Equal(t, tt.want, confirmReplace(cmd, tt.count, 3))
			if tt.wantPrompt == "" {
				assert.Empty(t, out.String())
			} else {
				assert.Contains(t, out.String(), tt.wantPrompt)
			}
		})
	}
}

func TestConfirm_EndOfInputDeclines(t *testing.T) {
	cmd, _ := promptCmd("", false)
	assert.False(t, confirm(cmd, "Delete everything?"))
}
