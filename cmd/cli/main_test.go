package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "goancova/internal/errors"
	"goancova/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoresCSV = `score,reaction,age,condition
1,9,20,control
2,7,25,control
3,8,30,control
4,3,21,treatment
5,2,26,treatment
6,4,33,treatment
`

func writeScores(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte(scoresCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPValueCommand(t *testing.T) {
	out, err := run(t, "pvalue", "3", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, "p = 0.384900 (exact 0.192450)\n", out)

	out, err = run(t, "pvalue", "1000", "5", "10")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "p = 0.9467"))
	assert.Contains(t, out, "series hit the iteration cap")

	_, err = run(t, "pvalue", "x", "2", "3")
	assert.Error(t, err)
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "describe", writeScores(t))
	require.NoError(t, err)
	assert.Contains(t, out, "| score | numerical | 6 | 3.5000 |")
	assert.Contains(t, out, "| condition | categorical | 6 | 2 levels |")
}

func TestAnovaCommandJSON(t *testing.T) {
	out, err := run(t, "anova", writeScores(t), "--factor", "condition", "--dv", "score", "--dv", "reaction", "--json")
	require.NoError(t, err)

	var records []models.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "scores.csv", records[0].Dataset)
	assert.InDelta(t, 13.5, records[0].Rows[0].F, 1e-9)
	assert.Equal(t, "reaction", records[1].Dependent)
}

func TestAncovaCommandHTML(t *testing.T) {
	out, err := run(t, "ancova", writeScores(t), "--factor", "condition", "--covariate", "age", "--dv", "score", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "age (covariate)")
}

func TestWideCommand(t *testing.T) {
	out, err := run(t, "wide", writeScores(t), "--column", "score", "--column", "reaction")
	require.NoError(t, err)
	assert.Contains(t, out, "## ANOVA across score, reaction")
}

func TestAssumptionsCommand(t *testing.T) {
	out, err := run(t, "assumptions", writeScores(t), "--factor", "condition", "--dv", "score")
	require.NoError(t, err)
	assert.Contains(t, out, "## Assumptions for score by condition")
	assert.Contains(t, out, "Levene F(1, 4)")
}

func TestGenerateCommand(t *testing.T) {
	out, err := run(t, "generate", "--subjects", "10", "--seed", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "subject,condition,age,member,score", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "subject_0001,control,"))

	path := filepath.Join(t.TempDir(), "trial.csv")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))
	out, err = run(t, "ancova", path, "--factor", "condition", "--covariate", "age", "--dv", "score", "--json")
	require.NoError(t, err)

	var records []models.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Len(t, records[0].Rows, 2)
}

func TestCommandErrors(t *testing.T) {
	path := writeScores(t)

	_, err := run(t, "anova", path, "--factor", "condition")
	assert.Error(t, err)

	_, err = run(t, "anova", path, "--factor", "condition", "--dv", "condition")
	assert.Error(t, err)

	_, err = run(t, "describe", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestAlphaOutOfRange(t *testing.T) {
	path := writeScores(t)

	for _, alpha := range []string{"0", "1", "2", "-0.5", "NaN"} {
		_, err := run(t, "anova", path, "--factor", "condition", "--dv", "score", "--alpha="+alpha)
		require.Error(t, err, alpha)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err), alpha)
	}

	_, err := run(t, "anova", path, "--factor", "condition", "--dv", "score", "--alpha", "0.01")
	assert.NoError(t, err)
}
