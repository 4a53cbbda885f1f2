package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/market-stats/pkg/transaction"
)

const history = `[
  {"name": "Key", "price": 10.0, "currency": "USD", "listed_on": "01 Jan 2024", "acted_on": "01 Mar 2024"},
  {"name": "Sword", "price": 5.0, "currency": "USD", "listed_on": "10 Feb 2024", "acted_on": "12 Feb 2024"},
  {"name": "Sword", "price": 7.0, "listed_on": "11 Feb 2024", "acted_on": "15 Feb 2024"}
]`

func writeHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	rootCmd := newRootCmd()
	assert.Equal(t, "market-stats", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "marketplace transaction")
	assert.Contains(t, rootCmd.Long, "Market Stats")

	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"report", "chart", "export", "history"})
}

func TestReportCommand(t *testing.T) {
	input := writeHistory(t, history)

	out, _, err := execute(t, "report", "--input", input, "--currency", "EUR")
	require.NoError(t, err)

	assert.Contains(t, out, "TOTAL PRICE")
	assert.Contains(t, out, "22.00 EUR")
	assert.Contains(t, out, "Sword")
	assert.Contains(t, out, "2024-Jan")
	assert.Contains(t, out, "2024-Mar")
}

func TestRootCommand_ReportAndCharts(t *testing.T) {
	input := writeHistory(t, history)
	outDir := filepath.Join(t.TempDir(), "charts")

	out, _, err := execute(t, "--input", input, "--out-dir", outDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "MONTH")

	for _, name := range []string{"total_price_by_name.png", "total_price_by_month.png"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size())
	}
}

func TestChartCommand_EmptyInput(t *testing.T) {
	input := writeHistory(t, `[]`)
	outDir := t.TempDir()

	_, logs, err := execute(t, "chart", "--input", input, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, logs, "No records")
}

func TestExportAndHistoryCommands(t *testing.T) {
	input := writeHistory(t, history)
	db := filepath.Join(t.TempDir(), "stats.db")

	out, _, err := execute(t, "export", "--input", input, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved run 1")

	out, _, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, input)
	assert.Contains(t, out, "22.00 USD")
}

func TestReportCommand_InvalidDate(t *testing.T) {
	input := writeHistory(t, `[{"name": "Key", "price": 1, "listed_on": "2024-01-01", "acted_on": "01 Mar 2024"}]`)

	_, _, err := execute(t, "report", "--input", input)
	require.Error(t, err)
	assert.ErrorIs(t, err, transaction.ErrDateFormat)
}

func TestReportCommand_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "report", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCommand_SingleItem(t *testing.T) {
	input := writeHistory(t, `[
  {"name": "Sword", "price": 5.0, "listed_on": "01 Jan 2024", "acted_on": "02 Jan 2024"},
  {"name": "Sword", "price": 7.0, "listed_on": "03 Jan 2024", "acted_on": "04 Jan 2024"}
]`)
	outDir := t.TempDir()

	out, _, err := execute(t, "--input", input, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "12.00 USD")

	for _, name := range []string{"total_price_by_name.png", "total_price_by_month.png"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size())
	}
}

func TestChartCommand_AllSpansReversed(t *testing.T) {
	input := writeHistory(t, `[
  {"name": "Key", "price": 3.0, "listed_on": "01 Mar 2024", "acted_on": "01 Jan 2024"},
  {"name": "Case", "price": 1.0, "listed_on": "01 Jun 2024", "acted_on": "01 May 2024"}
]`)
	outDir := t.TempDir()

	_, logs, err := execute(t, "chart", "--input", input, "--out-dir", outDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "total_price_by_name.png"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "total_price_by_month.png"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, logs, "skipping month chart")
	assert.NotContains(t, logs, "by_month=")
}

func TestReportCommand_Item(t *testing.T) {
	input := writeHistory(t, history)

	out, _, err := execute(t, "report", "--input", input, "--item", "Key")
	require.NoError(t, err)
	assert.Contains(t, out, "10.00 USD")
	assert.NotContains(t, out, "Sword")
	assert.Contains(t, out, "2024-Mar")

	_, _, err = execute(t, "report", "--input", input, "--item", "Shield")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no records named "Shield"`)
}
