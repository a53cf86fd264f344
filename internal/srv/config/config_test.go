package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultParam(t *testing.T) {
	param, err := ParseServerParam(ParamDefaultFile)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if param.Cadence() != time.Second {
		t.Errorf("Expected 1s cadence, got %v", param.Cadence())
	}
	if param.AmbientWeather {
		t.Errorf("Expected ambient weather to be off by default")
	}
	if param.SurfaceParam.Width != 320 || param.SurfaceParam.Height != 320 {
		t.Errorf("Unexpected surface %dx%d", param.SurfaceParam.Width, param.SurfaceParam.Height)
	}
	if !strings.HasPrefix(param.SyncParam.ClientId, "sunface-") {
		t.Errorf("Expected a generated client id, got %q", param.SyncParam.ClientId)
	}
	if param.SyncParam.MaxPending != 8 {
		t.Errorf("Expected 8 pending requests, got %d", param.SyncParam.MaxPending)
	}
	if param.SyncParam.ConnectTimeoutDuration() != 10*time.Second {
		t.Errorf("Unexpected connect timeout %v", param.SyncParam.ConnectTimeoutDuration())
	}
}

func TestZeroValuesGetDefaults(t *testing.T) {
	param, err := ParseServerParam([]byte("sync:\n  broker: tcp://broker:1883\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if param.CadenceMs != defaultCadenceMs {
		t.Errorf("Expected default cadence, got %d", param.CadenceMs)
	}
	if param.SyncParam.ConnectTimeout != defaultConnectTimeout {
		t.Errorf("Expected default connect timeout, got %d", param.SyncParam.ConnectTimeout)
	}
	if param.ApiParam.SslPort != defaultSslPort {
		t.Errorf("Expected default port, got %d", param.ApiParam.SslPort)
	}
}

func TestInvalidParams(t *testing.T) {
	for name, raw := range map[string]string{
		"negative cadence": "cadence_ms: -5\nsync:\n  broker: tcp://b:1883\n",
		"missing broker":   "sync:\n  qos: 1\n",
		"bad qos":          "sync:\n  broker: tcp://b:1883\n  qos: 3\n",
		"missing api key":  "sync:\n  broker: tcp://b:1883\napi:\n  enabled: true\n",
		"bad port":         "sync:\n  broker: tcp://b:1883\napi:\n  ssl_port: 70000\n",
		"negative surface": "surface:\n  width: -1\nsync:\n  broker: tcp://b:1883\n",
		"not yaml":         "cadence_ms: [",
	} {
		if _, err := ParseServerParam([]byte(raw)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestNewServerConfigCreatesParamFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "sunface")

	serverConfig := NewServerConfig(configDir, false, true)
	if _, err := os.Stat(serverConfig.GetCompleteParamFilename()); err != nil {
		t.Fatalf("Expected param file to be created: %v", err)
	}

	reloaded := NewServerConfig(configDir, false, true)
	if reloaded.SyncParam.ClientId != serverConfig.SyncParam.ClientId {
		t.Errorf("Expected the generated client id to be kept, got %q and %q", serverConfig.SyncParam.ClientId, reloaded.SyncParam.ClientId)
	}
	if reloaded.GetCompleteAssetsDir() != filepath.Join(configDir, "assets") {
		t.Errorf("Unexpected assets dir %s", reloaded.GetCompleteAssetsDir())
	}
}
