package drive

import (
	"time"

	"github.com/transpoze/drivegate/internal/bytesize"
)

// Backend names accepted by Config.Backend.
const (
	BackendGoogle = "google"
	BackendMemory = "memory"
)

// Config configures the Drive client.
type Config struct {
	// Backend selects the implementation: "google" talks to Drive v3,
	// "memory" keeps everything in-process (local development, demos).
	Backend string `mapstructure:"backend" validate:"required,oneof=google memory" yaml:"backend"`

	// CredentialsFile is a service-account JSON key. When empty, Application
	// Default Credentials are used.
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`

	// Impersonate is the user a domain-wide-delegated service account acts as.
	Impersonate string `mapstructure:"impersonate" validate:"omitempty,email" yaml:"impersonate"`

	// Timeout bounds every HTTP request made to Drive. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0" yaml:"timeout"`

	// PageSize is the list page size (Drive allows up to 1000).
	PageSize int64 `mapstructure:"page_size" validate:"min=1,max=1000" yaml:"page_size"`

	// UploadChunkSize is the resumable upload chunk size.
	UploadChunkSize bytesize.ByteSize `mapstructure:"upload_chunk_size" yaml:"upload_chunk_size"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendGoogle
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.PageSize == 0 {
		c.PageSize = 100
	}
	if c.UploadChunkSize == 0 {
		c.UploadChunkSize = 8 * bytesize.MiB
	}
}
