/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainCmd(t *testing.T) {
	file := filepath.Join(t.TempDir(), "travelsvc.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
env: dev
problems:
  upstream_routes:
    - prefix: /trips/*/legs
      status: 502
`), 0o600))

	tests := []struct {
		path string
		want string
	}{
		{"/trips/42/legs", `source=route pattern="/trips/*/legs" -> 502 Generic`},
		{"/trips/42", "source=builtin -> 404 Generic"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"explain", "--config", file, "--path", tt.path})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), `kind="upstream.call"`)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRootCmd_BadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, cmd.Execute())
}
