package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = "Txn Date,Particulars,Debit\n" +
	"2023-12-30,Rent,25000\n" +
	"2024-01-05,Coffee Shop,150.00\n" +
	"2024-01-06,Salary Credit,-5000\n" +
	"N/A,Groceries,300\n" +
	"2024-02-10,Coffee Shop,\"1,200.00\"\n"

// workspace moves into a temp dir holding the sample statement.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte(statement), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLedgerCommand(t *testing.T) {
	dir := workspace(t)

	out, err := run(t, "ledger", "jan.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "jan_ledger.csv (3 kept, 2 dropped)")

	data, err := os.ReadFile(filepath.Join(dir, "jan_ledger.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Description,Amount,Year,Month Number,Month", lines[0])
	assert.Equal(t, "2024-02-10,Coffee Shop,1200.00,2024,2,Feb", lines[3])
}

func TestLedgerCommand_Stdout(t *testing.T) {
	workspace(t)

	out, err := run(t, "ledger", "jan.csv", "-o", "-", "--no-header")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2023-12-30,Rent,25000.00"), out)
}

func TestLedgerCommand_Errors(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("Date,Memo\n2024-01-01,Tea\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing amount column", []string{"ledger", "bad.csv"}, "1 of 1 statements failed"},
		{"one of two fails", []string{"ledger", "jan.csv", "bad.csv"}, "1 of 2 statements failed"},
		{"output with many inputs", []string{"ledger", "jan.csv", "bad.csv", "-o", "x.csv"}, "single statement"},
		{"no args", []string{"ledger"}, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSummaryCommand(t *testing.T) {
	workspace(t)

	out, err := run(t, "summary", "jan.csv", "--budget", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "amount=2 date=0 description=1")
	assert.Contains(t, out, "Rs. 26,350.00")
	assert.Contains(t, out, "Year 2024")
	assert.Contains(t, out, "over-budget")
	assert.Contains(t, out, "under-budget")

	out, err = run(t, "summary", "jan.csv", "--year", "2023", "--search", "rent")
	require.NoError(t, err)
	assert.Contains(t, out, `Year 2023 matching "rent"`)
}

func TestSummaryCommand_BadFlags(t *testing.T) {
	workspace(t)

	_, err := run(t, "summary", "jan.csv", "--budget", "lots")
	assert.ErrorContains(t, err, "invalid --budget")
	_, err = run(t, "summary", "jan.csv", "--year", "-3")
	assert.ErrorContains(t, err, "invalid --year")
}

func TestReportCommand(t *testing.T) {
	dir := workspace(t)

	out, err := run(t, "report", "jan.csv", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Finance_Report_2024.pdf")

	data, err := os.ReadFile(filepath.Join(dir, "Finance_Report_2024.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestConfigCommands(t *testing.T) {
	dir := workspace(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote uft.yaml")
	assert.FileExists(t, filepath.Join(dir, "uft.yaml"))

	_, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, "--config", "uft.yaml", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "budget_limit: 25000")
}

func TestInvalidConfigRejected(t *testing.T) {
	workspace(t)

	_, err := run(t, "summary", "jan.csv", "--log-level", "loud")
	assert.ErrorContains(t, err, "log.level")
}
