package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/graphua/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "no arguments leaves everything unset",
			args: nil,
			want: &app.Config{},
		},
		{
			name: "config flag and positional paths",
			args: []string{"-config", "a.hcl,b.yaml", "-config", "dir", "extra.hcl"},
			want: &app.Config{ConfigPaths: []string{"a.hcl", "b.yaml", "dir", "extra.hcl"}},
		},
		{
			name: "every flag",
			args: []string{
				"-listen", ":9000", "-healthcheck-port", "9001", "-log-format", "TEXT",
				"-log-level", "debug", "-workers", "3", "-event-queue", "16", "-namespace", "2",
			},
			want: &app.Config{
				Listen: ":9000", HealthcheckPort: 9001, LogFormat: "text",
				LogLevel: "debug", Workers: 3, EventQueue: 16, Namespace: 2,
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml"}, wantErr: "invalid log format"},
		{name: "bad namespace", args: []string{"-namespace", "-4"}, wantErr: "namespace"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}

			// Act
			cfg, exit, err := Parse(tc.args, out)

			// Assert
			if tc.wantErr != "" {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, cfg); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
