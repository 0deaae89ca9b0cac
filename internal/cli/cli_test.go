package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/pii-scanner/internal/config"
	"github.com/digimosa/pii-scanner/internal/models"
	"github.com/digimosa/pii-scanner/internal/scanner"
	"github.com/digimosa/pii-scanner/internal/session"
	"github.com/digimosa/pii-scanner/internal/stats"
	"github.com/digimosa/pii-scanner/internal/storage"
)

type testEnv struct {
	config    string
	db        string
	allowlist string
	root      string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		config:    filepath.Join(dir, "config.yaml"),
		db:        filepath.Join(dir, "scans.db"),
		allowlist: filepath.Join(dir, "allowlist.yaml"),
		root:      filepath.Join(dir, "share"),
	}
	body := fmt.Sprintf(`
scan:
  workers: 2
  analyze_permissions: false
allowlist:
  path: %q
storage:
  db_path: %q
logging:
  level: error
  format: json
`, env.allowlist, env.db)
	require.NoError(t, os.WriteFile(env.config, []byte(body), 0o644))

	require.NoError(t, os.MkdirAll(env.root, 0o755))
	files := map[string]string{
		"contacts.txt": "Contact: jean.dupont@example.com",
		"notes.log":    "nothing personal here",
		"paiement.csv": "iban;FR7630006000011234567890189",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(env.root, name), []byte(body), 0o644))
	}
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandContainsTopLevelCommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"scan", "history", "watch", "allowlist", "cache", "version"} {
		assert.NotNil(t, findCommand(root, name), name)
	}
	assert.NotNil(t, findCommand(findCommand(root, "allowlist"), "add"))
	assert.NotNil(t, findCommand(findCommand(root, "cache"), "clear"))
}

func findCommand(parent *cobra.Command, name string) *cobra.Command {
	if parent == nil {
		return nil
	}
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, BuildVersion+"\n", out)
}

func TestScan_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "--config", env.config, "scan", env.root, "--json", "-q")
	require.NoError(t, err)

	var res session.Results
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 3, res.Statistics.TotalFilesScanned)
	assert.Equal(t, 2, res.Statistics.FilesWithPii)

	types := make(map[string]bool)
	for _, f := range res.Findings {
		types[f.PiiType] = true
	}
	assert.True(t, types["Email"])
	assert.True(t, types["IBAN_FR"])
}

func TestScan_HumanOutput(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "--config", env.config, "scan", env.root, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "STATISTIQUES DU SCAN")
	assert.Contains(t, out, "paiement.csv")
	assert.Contains(t, out, "HIGH")
}

func TestScan_InvalidRoot(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "scan", filepath.Join(env.root, "missing"), "-q")
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrInvalidRoot)
}

func TestScan_InvalidProfile(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "scan", env.root, "--profile", "mars", "-q")
	require.Error(t, err)
}

func TestScan_RespectsAllowlist(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "allowlist", "add", "jean.dupont@example.com")
	require.NoError(t, err)

	out, err := execute(t, "--config", env.config, "scan", env.root, "--json", "-q")
	require.NoError(t, err)

	var res session.Results
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	for _, f := range res.Findings {
		assert.NotEqual(t, "jean.dupont@example.com", f.Match)
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "scan", env.root, "-q")
	require.NoError(t, err)

	out, err := execute(t, "--config", env.config, "history", "--json")
	require.NoError(t, err)
	var scans []storage.ScanModel
	require.NoError(t, json.Unmarshal([]byte(out), &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, storage.StatusCompleted, scans[0].Status)
	assert.EqualValues(t, 3, scans[0].TotalFiles)

	out, err = execute(t, "--config", env.config, "history", scans[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, scans[0].ID)
	assert.Contains(t, out, "jean.dupont@example.com")

	_, err = execute(t, "--config", env.config, "history", "--delete", scans[0].ID)
	require.NoError(t, err)
	_, err = execute(t, "--config", env.config, "history", scans[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProgressPrinter_ThrottlesButAlwaysPrintsFinal(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf, 0.001)

	p.OnProgress("0123456789", scanner.Progress{Processed: 1, Total: 10})
	p.OnProgress("0123456789", scanner.Progress{Processed: 2, Total: 10})
	p.OnProgress("0123456789", scanner.Progress{Processed: 10, Total: 10})
	p.Complete("0123456789")

	out := buf.String()
	assert.Contains(t, out, "[01234567] 1/10 files")
	assert.NotContains(t, out, "2/10")
	assert.Contains(t, out, "10/10 files (100%)")
	assert.True(t, strings.HasSuffix(out, "scan completed\n"))
}

func TestApp_ReloadSwitchesProfile(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := loadConfig(&GlobalOptions{ConfigPath: env.config})
	require.NoError(t, err)

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "standard", a.det.Profile())

	next := config.DefaultConfig()
	next.Scan.Profile = "benin"
	next.Scan.Workers = 7
	a.reload(next)
	assert.Equal(t, "benin", a.det.Profile())
	assert.Equal(t, 7, a.cfg.Scan.Workers)

	bad := config.DefaultConfig()
	bad.Scan.Profile = "mars"
	a.reload(bad)
	assert.Equal(t, "benin", a.det.Profile())
}

func TestCacheClear_RequiresRedis(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "cache", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis_url")

	t.Setenv("PII_SCANNER_CACHE_REDIS_URL", "redis://127.0.0.1:1/0")
	_, err = execute(t, "--config", env.config, "cache", "clear")
	assert.Error(t, err)
}

func TestPrintResults_StaleFileWarning(t *testing.T) {
	old := time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC)
	findings := []models.Finding{
		{FilePath: "/share/archive.txt", PiiType: "Email", Match: "a@example.com", LastAccessedDate: &old},
		{FilePath: "/share/fresh.txt", PiiType: "Email", Match: "b@example.com"},
	}
	res := session.Results{
		ID:         "scan-1",
		Findings:   findings,
		Statistics: stats.CalculateAt(findings, 2, time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)),
	}

	var buf bytes.Buffer
	printResults(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "Données dormantes")
	assert.Contains(t, out, "/share/archive.txt : Ce fichier contient 1 PII mais n'a pas été ouvert depuis plus de 5 ans")
	assert.NotContains(t, out, "/share/fresh.txt : ")
}
