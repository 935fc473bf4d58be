// Package gateway implements the REST operations on top of the Drive client,
// the folder resolver, the uploader, the transcoder and the staging area.
//
// Handlers translate HTTP to and from the methods here and never touch the
// lower packages directly. Every method returns *errors.GatewayError values
// so the HTTP layer can map them to status codes.
package gateway

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/folders"
	"github.com/transpoze/drivegate/pkg/staging"
	"github.com/transpoze/drivegate/pkg/transcode"
	"github.com/transpoze/drivegate/pkg/uploads"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "drivegate"

// Deps are the collaborators a Service is built from.
type Deps struct {
	Client     drive.Client
	Cache      folders.Cache // nil means an unbounded in-memory cache
	Transcoder transcode.Transcoder
	Staging    *staging.Area
	Version    string

	FolderMetrics folders.Metrics
	UploadMetrics uploads.Metrics
}

// Service is the gateway.
type Service struct {
	client     drive.Client
	resolver   *folders.Resolver
	hierarchy  *folders.HierarchyBuilder
	uploader   *uploads.Uploader
	transcoder transcode.Transcoder
	staging    *staging.Area
	validate   *validator.Validate
	version    string
	started    time.Time
}

// New builds a Service. Client, Transcoder and Staging are required.
func New(d Deps) (*Service, error) {
	switch {
	case d.Client == nil:
		return nil, errors.New("gateway: drive client is required")
	case d.Transcoder == nil:
		return nil, errors.New("gateway: transcoder is required")
	case d.Staging == nil:
		return nil, errors.New("gateway: staging area is required")
	}

	resolver := folders.NewResolver(d.Client, d.Cache, d.FolderMetrics)
	version := d.Version
	if version == "" {
		version = "dev"
	}

	return &Service{
		client:     d.Client,
		resolver:   resolver,
		hierarchy:  folders.NewHierarchyBuilder(resolver),
		uploader:   uploads.New(d.Client, d.UploadMetrics),
		transcoder: d.Transcoder,
		staging:    d.Staging,
		validate:   validator.New(),
		version:    version,
		started:    time.Now(),
	}, nil
}

// Resolver exposes the folder resolver, mainly for the CLI.
func (s *Service) Resolver() *folders.Resolver {
	return s.resolver
}

// Staging exposes the staging area handlers stream multipart bodies into.
func (s *Service) Staging() *staging.Area {
	return s.staging
}

// CacheSize returns the number of cached path entries.
func (s *Service) CacheSize() int {
	return s.resolver.Cache().Len()
}

// requireName rejects empty or whitespace-only names.
func requireName(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return gwerrors.NewInvalidArgumentsError(op, field+" is required")
	}
	return nil
}

// requireEmail rejects missing or malformed addresses.
func (s *Service) requireEmail(op, field, value string) error {
	if value == "" {
		return gwerrors.NewInvalidArgumentsError(op, field+" is required")
	}
	if err := s.validate.Var(value, "email"); err != nil {
		return gwerrors.NewInvalidArgumentsError(op, field+" is not a valid email address")
	}
	return nil
}

// parseRole applies the reader default and rejects unknown roles.
func parseRole(op, value string) (drive.Role, error) {
	if value == "" {
		return drive.RoleReader, nil
	}
	role := drive.Role(value)
	if !role.IsValid() {
		names := make([]string, len(drive.ValidRoles))
		for i, r := range drive.ValidRoles {
			names[i] = string(r)
		}
		return "", gwerrors.NewInvalidArgumentsError(op,
			"invalid role, must be one of: "+strings.Join(names, ", "))
	}
	return role, nil
}
