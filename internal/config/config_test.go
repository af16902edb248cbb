package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.MainBranch)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "v", cfg.TagPrefix)
	assert.Equal(t, "release-", cfg.BranchPrefix)
	assert.Equal(t, "VERSION", cfg.VersionFile)
	assert.Equal(t, "CHANGELOG.md", cfg.ChangelogFile)
	assert.Empty(t, cfg.DescriptorFile)
	assert.Equal(t, 7, cfg.ChangelogAnchorLine)
	assert.False(t, cfg.SkipConfirmations)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)

	content := "main_branch: trunk\ntag_prefix: \"\"\ndescriptor_file: chip.core\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".relkit.yml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "trunk", cfg.MainBranch)
	assert.Empty(t, cfg.TagPrefix)
	assert.Equal(t, "chip.core", cfg.DescriptorFile)
	assert.Equal(t, "origin", cfg.Remote, "unset keys keep defaults")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".relkit.yml"), []byte("main_branch: trunk\n"), 0o644))
	t.Setenv("RELKIT_MAIN_BRANCH", "develop")
	t.Setenv("RELKIT_SKIP_CONFIRMATIONS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.MainBranch)
	assert.True(t, cfg.SkipConfirmations)
}

func TestLoad_CustomPathMustExist(t *testing.T) {
	chdirTemp(t)

	_, err := Load("nope.yml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Configuration{
		MainBranch:          "main",
		Remote:              "origin",
		VersionFile:         "VERSION",
		ChangelogFile:       "CHANGELOG.md",
		ChangelogAnchorLine: 7,
	}

	tests := map[string]struct {
		mutate  func(c *Configuration)
		wantErr bool
	}{
		"valid":               {mutate: func(c *Configuration) {}, wantErr: false},
		"empty main branch":   {mutate: func(c *Configuration) { c.MainBranch = "" }, wantErr: true},
		"empty remote":        {mutate: func(c *Configuration) { c.Remote = "" }, wantErr: true},
		"empty version file":  {mutate: func(c *Configuration) { c.VersionFile = "" }, wantErr: true},
		"empty changelog":     {mutate: func(c *Configuration) { c.ChangelogFile = "" }, wantErr: true},
		"negative anchor":     {mutate: func(c *Configuration) { c.ChangelogAnchorLine = -1 }, wantErr: true},
		"zero anchor allowed": {mutate: func(c *Configuration) { c.ChangelogAnchorLine = 0 }, wantErr: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReleaseFiles(t *testing.T) {
	cfg := Configuration{VersionFile: "VERSION", ChangelogFile: "CHANGELOG.md"}
	assert.Equal(t, []string{"VERSION", "CHANGELOG.md"}, cfg.ReleaseFiles())
	assert.Equal(t, []string{"VERSION"}, cfg.VersionArtifacts())

	cfg.DescriptorFile = "chip.core"
	assert.Equal(t, []string{"VERSION", "CHANGELOG.md", "chip.core"}, cfg.ReleaseFiles())
	assert.Equal(t, []string{"VERSION", "chip.core"}, cfg.VersionArtifacts())
}

// chdirTemp switches the working directory to a fresh temp dir so the
// default project config lookup cannot pick up a real .relkit.yml.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
