package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/auth"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func sources(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	seg := filepath.Join(dir, "resum.json")
	st := filepath.Join(dir, "estacions.json")
	require.NoError(t, os.WriteFile(seg, []byte(`[
		{"TRAM": "T1", "VIA": 1, "PK INICI": 0, "PK FINAL": 1, "PREVISIO": 2020},
		{"TRAM": "T1", "VIA": 2, "PK INICI": 0, "PK FINAL": 3, "PREVISIO": 2031}
	]`), 0o644))
	require.NoError(t, os.WriteFile(st, []byte(`[{"TRAM": "T1", "NOM": "Bonanova", "PK": 0.5}]`), 0o644))
	return []string{
		"--db-path", filepath.Join(dir, "cli.db"),
		"--segments-url", seg,
		"--stations-url", st,
	}
}

func TestImportAndSummary(t *testing.T) {
	src := sources(t)

	out, err := run(t, append([]string{"import"}, src...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "2 segments (0 rejected), 1 stations")

	out, err = run(t, append([]string{"summary", "T1", "--auto-import=false"}, src...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "4000 m")
	assert.Contains(t, out, "25 %")

	out, err = run(t, append([]string{"summary", "--auto-import=false"}, src...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "LINIA COMPLETA")

	_, err = run(t, append([]string{"summary", "T9", "--auto-import=false"}, src...)...)
	assert.Error(t, err)
}

func TestSummary_EmptyStore(t *testing.T) {
	src := sources(t)

	_, err := run(t, append([]string{"summary", "--auto-import=false"}, src...)...)
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--jwt-secret", "cli-secret", "--subject", "ops", "--ttl", "1h")
	require.NoError(t, err)

	sub, err := auth.Verify("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)
}

func TestToken_DefaultSecret(t *testing.T) {
	_, err := run(t, "token", "--subject", "ops")
	assert.ErrorContains(t, err, "built-in jwt secret")

	out, err := run(t, "token", "--subject", "ops", "--allow-default-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "token", "--window-size", "0")
	assert.Error(t, err)

	_, err = run(t, "token", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renovacio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt-secret: from-file\n"), 0o644))

	out, err := run(t, "token", "--config", path, "--ttl", time.Minute.String())
	require.NoError(t, err)

	_, err = auth.Verify("from-file", strings.TrimSpace(out))
	assert.NoError(t, err)
}

func TestWriteSectionSummary(t *testing.T) {
	var buf bytes.Buffer
	err := writeSectionSummary(&buf, models.SectionSummary{
		Section:       "T3",
		RecordCount:   2,
		TotalMeters:   1500,
		ReferenceYear: 2025,
		Overdue:       models.AggregateFigure{Meters: 0, Defined: false},
		Windows: []models.WindowFigure{
			{From: 2025, To: 2029, AggregateFigure: models.AggregateFigure{Meters: 1500, Display: 100, Defined: true}},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Previst abans de 2025")
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "2025-2029")
	assert.Contains(t, out, "100 %")
}
