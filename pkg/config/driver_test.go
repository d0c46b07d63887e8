package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDriverConfig() *DriverConfig {
	return &DriverConfig{
		StorageID:   3,
		CantoName:   "acme",
		CantoDomain: "canto.com",
		AppID:       "app",
		AppSecret:   "secret",
	}
}

func TestDriverConfigDefaults(t *testing.T) {
	c := validDriverConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, "admin", c.Scope)
	assert.Equal(t, "folder", c.RootFolderScheme)
	assert.Equal(t, "ROOT", c.RootFolder)
	assert.Equal(t, "inline", c.ContentDisposition)
	assert.Equal(t, 2000, c.MasterImageSize)
	assert.Equal(t, 2505600*time.Second, c.SessionTokenLifetime)
	assert.Equal(t, "https://acme.canto.com", c.BaseURL())
	assert.Equal(t, "https://oauth.canto.com", c.OAuthURL())
	assert.Equal(t, "acme.canto.com", c.TenantDomain())
}

func TestDriverConfigRejectsInvalid(t *testing.T) {
	cases := map[string]func(c *DriverConfig){
		"missing storage":     func(c *DriverConfig) { c.StorageID = 0 },
		"missing name":        func(c *DriverConfig) { c.CantoName = "" },
		"missing secret":      func(c *DriverConfig) { c.AppSecret = "" },
		"bad root scheme":     func(c *DriverConfig) { c.RootFolderScheme = "image" },
		"bad disposition":     func(c *DriverConfig) { c.ContentDisposition = "download" },
		"mdc without domain":  func(c *DriverConfig) { c.MdcActive = true; c.MdcAwsAccountID = "42" },
		"mdc without account": func(c *DriverConfig) { c.MdcActive = true; c.MdcDomainName = "mdc.example.com" },
		"mapping not json":    func(c *DriverConfig) { c.MetadataExportMapping = "{nope" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validDriverConfig()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestDriverConfigAcceptsMdc(t *testing.T) {
	c := validDriverConfig()
	c.MdcActive = true
	c.MdcDomainName = "mdc.example.com"
	c.MdcAwsAccountID = "123456"
	assert.NoError(t, c.Validate())
}

func TestLoadDriverConfigsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.json")
	content := `[{"storageId": 7, "cantoName": "acme", "cantoDomain": "canto.de", "appId": "a", "appSecret": "s", "sessionTokenLifetime": 60}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	configs, err := LoadDriverConfigsFile(path)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 7, configs[0].StorageID)
	assert.Equal(t, time.Minute, configs[0].SessionTokenLifetime)
	assert.NoError(t, configs[0].Validate())
}

func writeDriversFile(t *testing.T, content string) {
	path := filepath.Join(t.TempDir(), "drivers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CANTO_DRIVERS_FILE", path)
}

func TestLoadDriverConfigsFailsOnMalformedFile(t *testing.T) {
	t.Setenv("CANTO_NAME", "acme")
	writeDriversFile(t, `[{"storageId": 7,`)

	configs, err := LoadDriverConfigs()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Nil(t, configs)
}

func TestLoadDriverConfigsFailsOnMissingFile(t *testing.T) {
	t.Setenv("CANTO_DRIVERS_FILE", filepath.Join(t.TempDir(), "absent.json"))

	_, err := LoadDriverConfigs()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDriverConfigsValidatesEntries(t *testing.T) {
	writeDriversFile(t, `[{"storageId": 7, "cantoName": "acme", "cantoDomain": "canto.de", "appId": "a"}]`)
	_, err := LoadDriverConfigs()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	writeDriversFile(t, `[
		{"storageId": 7, "cantoName": "acme", "cantoDomain": "canto.de", "appId": "a", "appSecret": "s"},
		{"storageId": 7, "cantoName": "other", "cantoDomain": "canto.de", "appId": "b", "appSecret": "t"}
	]`)
	_, err = LoadDriverConfigs()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestLoadDriverConfigsAppliesDefaults(t *testing.T) {
	writeDriversFile(t, `[{"storageId": 7, "cantoName": "acme", "cantoDomain": "canto.de", "appId": "a", "appSecret": "s"}]`)

	configs, err := LoadDriverConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, DefaultScope, configs[0].Scope)
	assert.Equal(t, DefaultRootFolder, configs[0].RootFolder)
	assert.Equal(t, DefaultSessionTokenLifetime, configs[0].SessionTokenLifetime)
}
