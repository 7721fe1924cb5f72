package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "report", "export"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "attrition-dashboard", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.Equal(t, version, rootCmd.Version)
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "root command should have --config flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestRootCommand_ConfigFileIsLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  path: /srv/hr/employees.csv\nlog:\n  level: warn\n  format: console\n"), 0o644))

	oldFile, oldCfg := cfgFile, cfg
	t.Cleanup(func() { cfgFile, cfg = oldFile, oldCfg })
	cfgFile = path

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, "/srv/hr/employees.csv", cfg.Data.Path)
	assert.Equal(t, "warn", cfg.Log.Level)

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestReportCommand_Flags(t *testing.T) {
	for _, name := range []string{"department", "education", "rows"} {
		assert.NotNil(t, reportCmd.Flags().Lookup(name), "report should have --%s flag", name)
	}
	assert.Equal(t, "20", reportCmd.Flags().Lookup("rows").DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"department", "education", "out"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s flag", name)
	}
	out := exportCmd.Flags().Lookup("out")
	assert.Equal(t, []string{"true"}, out.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}
