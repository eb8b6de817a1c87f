package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loayabdalslam/Orchestrator/pkg/codereview"
	"github.com/loayabdalslam/Orchestrator/pkg/config"
)

func newCreateCommand(opts *createOptions) *cobra.Command {
	c := &cobra.Command{Use: "create"}
	bindCreateFlags(c, opts)
	return c
}

func TestApplyOverrides(t *testing.T) {
	var opts createOptions
	c := newCreateCommand(&opts)
	require.NoError(t, c.Flags().Parse([]string{
		"-o", "out", "--concurrency", "4", "--timeout", "30s",
		"-p", "ollama", "-m", "llama3", "--no-name-generation",
		"-f", "Authentication", "-f", "Docker",
	}))

	cfg := config.Default()
	require.NoError(t, applyOverrides(c, cfg, opts))
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.False(t, cfg.NameGeneration)
	assert.Equal(t, []string{"Authentication", "Docker"}, opts.features)
	for _, role := range []config.Role{config.RolePlanner, config.RoleDeveloper, config.RoleDeployer} {
		assert.Equal(t, "ollama", cfg.Agent(role).Provider)
		assert.Equal(t, "llama3", cfg.Agent(role).Model)
	}
}

func TestApplyOverridesKeepsConfigWhenUnset(t *testing.T) {
	var opts createOptions
	c := newCreateCommand(&opts)
	require.NoError(t, c.Flags().Parse(nil))

	cfg := config.Default()
	cfg.Concurrency = 2
	require.NoError(t, applyOverrides(c, cfg, opts))
	assert.Equal(t, 2, cfg.Concurrency)
	assert.True(t, cfg.NameGeneration)
}

func TestApplyOverridesRejectsUnknownProvider(t *testing.T) {
	var opts createOptions
	c := newCreateCommand(&opts)
	require.NoError(t, c.Flags().Parse([]string{"-p", "bard"}))
	assert.Error(t, applyOverrides(c, config.Default(), opts))
}

func TestChooseReviewer(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func(io.Reader) bool { return false }

	r, err := chooseReviewer(createOptions{autoApprove: true}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &codereview.AutoReviewer{}, r)

	r, err = chooseReviewer(createOptions{reviewURL: "ws://localhost:9000/review"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &codereview.WebSocketReviewer{}, r)

	_, err = chooseReviewer(createOptions{}, strings.NewReader(""), io.Discard)
	assert.ErrorIs(t, err, errNoTerminal)

	isTerminal = func(io.Reader) bool { return true }
	r, err = chooseReviewer(createOptions{}, strings.NewReader(""), io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &codereview.ConsoleReviewer{}, r)
}

func TestLoadConfigAppliesPersistentFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(func() {
		debugOutput = false
		noColor = false
	})

	c := &cobra.Command{Use: "x"}
	c.Flags().BoolVar(&debugOutput, "debug", false, "")
	c.Flags().BoolVar(&noColor, "no-color", false, "")
	require.NoError(t, c.Flags().Parse([]string{"--debug", "--no-color"}))

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.NoColor)
}

func TestVersionOutput(t *testing.T) {
	var buf bytes.Buffer
	printVersionInfo(&buf)
	assert.Contains(t, buf.String(), "orchestrator version dev")
	assert.Contains(t, buf.String(), "Platform: ")
}

func TestMigrateListsPending(t *testing.T) {
	dir := t.TempDir()
	migDir := filepath.Join(dir, "migrations")
	require.NoError(t, os.MkdirAll(migDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(migDir, "002_b.sh"), []byte("true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(migDir, "001_a.sh"), []byte("true\n"), 0644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"log_file: "+filepath.Join(dir, "events.log")+"\n"+
			"migrations:\n  dir: "+migDir+"\n  state_file: "+filepath.Join(dir, "state.yaml")+"\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"migrate", "--list", "--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		listPending = false
		configFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "001_a.sh\n002_b.sh\n", out.String())
}
