package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpoze/drivegate/pkg/drive/memory"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

func TestLiveness_Connected(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "drivegate", resp.Service)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "connected", resp.DriveConnection)
	assert.Equal(t, "ok", resp.DriveAPIStatus)
	assert.Empty(t, resp.DriveError)
	require.NotNil(t, resp.User)
	assert.Equal(t, "gateway@memory.local", resp.User.Email)
	require.NotNil(t, resp.StorageQuota)
	assert.NotZero(t, resp.Memory.Alloc)
	assert.GreaterOrEqual(t, resp.Uptime, 0.0)
}

func TestLiveness_DriveDownStillOK(t *testing.T) {
	f := newFixture(t)
	f.client.FailOn(memory.OpAbout, gwerrors.NewRemoteUnavailableError("test", errors.New("401 unauthorized")))

	w := f.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "disconnected", resp.DriveConnection)
	assert.Equal(t, "error", resp.DriveAPIStatus)
	assert.Contains(t, resp.DriveError, "401 unauthorized")
	assert.Nil(t, resp.User)
	assert.Nil(t, resp.StorageQuota)
}

func TestReadiness(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[Response](t, w).Status)

	f.client.FailOn(memory.OpAbout, gwerrors.NewRemoteUnavailableError("test", errors.New("down")))

	w = f.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[Response](t, w)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Error, "drive unreachable")
}
