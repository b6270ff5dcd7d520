package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/domain"
	"terroir/internal/importer"
)

const answer = "Sure! Here it is:\n```json\n" + `{
  'dimensions': {'hydrology': {'description': 'Rivers and springs of the valley', 'data': {'rivers': ['Drôme'],}}},
  'sources': [{'title': 'Atlas des eaux', 'url': 'https://example.org/atlas', 'kind': 'documentation', 'reliability': 85}],
}` + "\n```"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSanitizeCmd(t *testing.T) {
	out, err := execute(t, "{'a': True, 'b': None,}", "sanitize")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": true, "b": null}`, out)
}

func TestPreviewCmd_JSON(t *testing.T) {
	out, err := execute(t, answer, "preview", "-")
	require.NoError(t, err)

	var pv importer.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &pv))
	assert.True(t, pv.Validation.Valid)
	assert.True(t, pv.Sanitized.Extracted)
}

func TestPreviewCmd_CheckFailsOnInvalid(t *testing.T) {
	_, err := execute(t, answer, "preview", "--strict", "--territory", "drome", "--dossier", "2026", "--check", "--format", "yaml")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestPreviewCmd_BadFormat(t *testing.T) {
	_, err := execute(t, answer, "preview", "--format", "pdf")
	assert.Error(t, err)
}

func TestPreviewCmd_XLSXNeedsOutput(t *testing.T) {
	_, err := execute(t, answer, "preview", "--format", "xlsx")
	assert.EqualError(t, err, "xlsx output requires -o <file>")
}

func TestCommitCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "store.db")

	out, err := execute(t, answer, "commit", "--territory", "drome", "--dossier", "2026", "--db", db, "--actor", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "committed drome/2026 revision 1")

	out, err = execute(t, answer, "commit", "--territory", "drome", "--dossier", "2026", "--db", db, "--actor", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "revision 2")

	_, err = execute(t, answer, "commit", "--territory", "drome", "--dossier", "2026", "--db", db, "--strict")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCommitCmd_RequiresTargets(t *testing.T) {
	_, err := execute(t, answer, "commit", "--db", filepath.Join(t.TempDir(), "store.db"))
	assert.Error(t, err)
}

func TestRulesCmd(t *testing.T) {
	out, err := execute(t, "", "rules")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "KEY"))
	assert.Contains(t, out, "syn.dimension.shape")
}
