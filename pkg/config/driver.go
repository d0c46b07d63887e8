package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	DefaultRootFolder           = "ROOT"
	DefaultScope                = "admin"
	DefaultContentDisposition   = "inline"
	DefaultMasterImageSize      = 2000
	DefaultSessionTokenLifetime = 2505600 * time.Second // 29 days, tokens are issued for 30
)

// DriverConfig is the configuration of one remote storage
type DriverConfig struct {
	StorageID   int    `json:"storageId" validate:"required,gt=0"`
	CantoName   string `json:"cantoName" validate:"required"`
	CantoDomain string `json:"cantoDomain" validate:"required,hostname"`
	AppID       string `json:"appId" validate:"required"`
	AppSecret   string `json:"appSecret" validate:"required"`
	UserID      string `json:"userId"`
	Scope       string `json:"scope" validate:"omitempty,oneof=admin contributor consumer"`

	RootFolderScheme string `json:"rootFolderScheme" validate:"omitempty,oneof=folder album"`
	RootFolder       string `json:"rootFolder"`

	MdcActive       bool   `json:"mdcActive"`
	MdcDomainName   string `json:"mdcDomainName" validate:"required_if=MdcActive true"`
	MdcAwsAccountID string `json:"mdcAwsAccountId" validate:"required_if=MdcActive true"`

	ContentDisposition    string        `json:"contentDisposition" validate:"omitempty,oneof=inline attachment"`
	MasterImageSize       int           `json:"masterImageSize" validate:"gte=0"`
	SessionTokenLifetime  time.Duration `json:"sessionTokenLifetime" validate:"gte=0"`
	FallbackFilePath      string        `json:"fallbackFilePath"`
	MetadataExportMapping string        `json:"metadataExportMapping" validate:"omitempty,json"`

	// Overrides for the derived endpoints, mostly useful against test servers
	APIBaseURL   string `json:"apiBaseUrl" validate:"omitempty,url"`
	OAuthBaseURL string `json:"oauthBaseUrl" validate:"omitempty,url"`
}

var validate = validator.New()

// ApplyDefaults fills optional fields with their default values
func (c *DriverConfig) ApplyDefaults() {
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.RootFolderScheme == "" {
		c.RootFolderScheme = "folder"
	}
	if c.RootFolder == "" {
		c.RootFolder = DefaultRootFolder
	}
	if c.ContentDisposition == "" {
		c.ContentDisposition = DefaultContentDisposition
	}
	if c.MasterImageSize == 0 {
		c.MasterImageSize = DefaultMasterImageSize
	}
	if c.SessionTokenLifetime == 0 {
		c.SessionTokenLifetime = DefaultSessionTokenLifetime
	}
}

// Validate applies defaults and rejects missing or malformed settings.
// It writes c, so it must not run on a configuration shared between requests.
func (c *DriverConfig) Validate() error {
	c.ApplyDefaults()

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: storage %d: field %s failed on %q",
				ErrInvalidConfiguration, c.StorageID, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return nil
}

// BaseURL returns the REST endpoint of the tenant
func (c *DriverConfig) BaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return fmt.Sprintf("https://%s.%s", c.CantoName, c.CantoDomain)
}

// OAuthURL returns the OAuth endpoint of the tenant's region
func (c *DriverConfig) OAuthURL() string {
	if c.OAuthBaseURL != "" {
		return c.OAuthBaseURL
	}
	return "https://oauth." + c.CantoDomain
}

// TenantDomain is the host serving the tenant's assets
func (c *DriverConfig) TenantDomain() string {
	return c.CantoName + "." + c.CantoDomain
}

// LoadDriverConfigs loads storage configurations from CANTO_DRIVERS_FILE
// or, when unset, a single storage from CANTO_* variables. Every returned
// configuration carries its defaults and has been validated.
func LoadDriverConfigs() ([]*DriverConfig, error) {
	if path := getEnv("CANTO_DRIVERS_FILE", ""); path != "" {
		configs, err := LoadDriverConfigsFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return configs, ValidateDriverConfigs(configs)
	}

	if _, ok := os.LookupEnv("CANTO_NAME"); !ok {
		return nil, nil
	}

	configs := []*DriverConfig{{
		StorageID:             getEnvAsInt("CANTO_STORAGE_ID", 1),
		CantoName:             getEnv("CANTO_NAME", ""),
		CantoDomain:           getEnv("CANTO_DOMAIN", "canto.com"),
		AppID:                 getEnv("CANTO_APP_ID", ""),
		AppSecret:             getEnv("CANTO_APP_SECRET", ""),
		UserID:                getEnv("CANTO_USER_ID", ""),
		Scope:                 getEnv("CANTO_SCOPE", DefaultScope),
		RootFolderScheme:      getEnv("CANTO_ROOT_FOLDER_SCHEME", "folder"),
		RootFolder:            getEnv("CANTO_ROOT_FOLDER", DefaultRootFolder),
		MdcActive:             getEnvAsBool("CANTO_MDC_ACTIVE", false),
		MdcDomainName:         getEnv("CANTO_MDC_DOMAIN", ""),
		MdcAwsAccountID:       getEnv("CANTO_MDC_AWS_ACCOUNT_ID", ""),
		ContentDisposition:    getEnv("CANTO_CONTENT_DISPOSITION", DefaultContentDisposition),
		MasterImageSize:       getEnvAsInt("CANTO_MASTER_IMAGE_SIZE", DefaultMasterImageSize),
		SessionTokenLifetime:  getEnvAsDuration("CANTO_SESSION_TOKEN_LIFETIME", DefaultSessionTokenLifetime),
		FallbackFilePath:      getEnv("CANTO_FALLBACK_FILE", ""),
		MetadataExportMapping: getEnv("CANTO_METADATA_EXPORT_MAPPING", ""),
	}}
	return configs, ValidateDriverConfigs(configs)
}

// ValidateDriverConfigs applies defaults to and validates every configuration,
// rejecting storage ids used twice
func ValidateDriverConfigs(configs []*DriverConfig) error {
	seen := make(map[int]bool, len(configs))
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.StorageID] {
			return fmt.Errorf("%w: storage %d configured twice", ErrInvalidConfiguration, c.StorageID)
		}
		seen[c.StorageID] = true
	}
	return nil
}

// LoadDriverConfigsFile reads a JSON array of storage configurations.
// sessionTokenLifetime is given in seconds.
func LoadDriverConfigsFile(path string) ([]*DriverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		DriverConfig
		SessionTokenLifetime int64 `json:"sessionTokenLifetime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	configs := make([]*DriverConfig, 0, len(raw))
	for i := range raw {
		c := raw[i].DriverConfig
		c.SessionTokenLifetime = time.Duration(raw[i].SessionTokenLifetime) * time.Second
		configs = append(configs, &c)
	}

	return configs, nil
}
