package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

const (
	defaultCadenceMs      = 1000
	defaultSurfaceSize    = 320
	defaultQos            = 1
	defaultConnectTimeout = 10
	defaultMaxPending     = 8
	defaultSslPort        = 8443
)

type ServerParam struct {
	CadenceMs      int64        `yaml:"cadence_ms"`
	AmbientWeather bool         `yaml:"ambient_weather"`
	AssetsDir      string       `yaml:"assets_dir"`
	SurfaceParam   SurfaceParam `yaml:"surface"`
	ButtonsParam   ButtonsParam `yaml:"buttons"`
	SyncParam      SyncParam    `yaml:"sync"`
	ApiParam       ApiParam     `yaml:"api"`
}

type SurfaceParam struct {
	Width            int64 `yaml:"width"`
	Height           int64 `yaml:"height"`
	Round            bool  `yaml:"round"`
	LowBitColor      bool  `yaml:"low_bit_color"`
	BurnInProtection bool  `yaml:"burn_in_protection"`
}

// ButtonsParam names the gpio pin of each button. An empty name disables
// the button.
type ButtonsParam struct {
	Mode    string `yaml:"mode"`
	Screen  string `yaml:"screen"`
	Weather string `yaml:"weather"`
}

type SyncParam struct {
	Broker         string `yaml:"broker"`
	ClientId       string `yaml:"client_id"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TopicPrefix    string `yaml:"topic_prefix"`
	Qos            int64  `yaml:"qos"`
	ConnectTimeout int64  `yaml:"connect_timeout"`
	MaxPending     int64  `yaml:"max_pending"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}

// ParseServerParam interprets a param file and checks it.
func ParseServerParam(raw []byte) (*ServerParam, error) {
	param := &ServerParam{}
	if err := yaml.Unmarshal(raw, param); err != nil {
		return nil, fmt.Errorf("unable to interpret param file: %w", err)
	}
	if err := param.Validate(); err != nil {
		return nil, err
	}
	return param, nil
}

// Validate replaces zero values with defaults and rejects values the server
// can't run with.
func (p *ServerParam) Validate() error {
	if p.CadenceMs == 0 {
		p.CadenceMs = defaultCadenceMs
	}
	if p.CadenceMs < 0 {
		return fmt.Errorf("cadence_ms must be positive, got %d", p.CadenceMs)
	}

	if p.SurfaceParam.Width == 0 {
		p.SurfaceParam.Width = defaultSurfaceSize
	}
	if p.SurfaceParam.Height == 0 {
		p.SurfaceParam.Height = defaultSurfaceSize
	}
	if p.SurfaceParam.Width < 0 || p.SurfaceParam.Height < 0 {
		return fmt.Errorf("invalid surface size %dx%d", p.SurfaceParam.Width, p.SurfaceParam.Height)
	}

	if err := p.SyncParam.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if p.ApiParam.SslPort == 0 {
		p.ApiParam.SslPort = defaultSslPort
	}
	if p.ApiParam.SslPort < 0 || p.ApiParam.SslPort > 65535 {
		return fmt.Errorf("api: invalid ssl_port %d", p.ApiParam.SslPort)
	}
	if p.ApiParam.Enabled && p.ApiParam.ApiKey == "" {
		return fmt.Errorf("api: api_key is required when the api is enabled")
	}

	return nil
}

func (s *SyncParam) validate() error {
	if s.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if _, err := url.Parse(s.Broker); err != nil {
		return fmt.Errorf("invalid broker %s: %w", s.Broker, err)
	}
	if s.ClientId == "" {
		s.ClientId = "sunface-" + uuid.NewString()
	}
	if s.Qos < 0 || s.Qos > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", s.Qos)
	}
	if s.ConnectTimeout == 0 {
		s.ConnectTimeout = defaultConnectTimeout
	}
	if s.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must be positive, got %d", s.ConnectTimeout)
	}
	if s.MaxPending == 0 {
		s.MaxPending = defaultMaxPending
	}
	if s.MaxPending < 0 {
		return fmt.Errorf("max_pending must be positive, got %d", s.MaxPending)
	}
	return nil
}

func (p *ServerParam) Cadence() time.Duration {
	return time.Duration(p.CadenceMs) * time.Millisecond
}

func (s SyncParam) ConnectTimeoutDuration() time.Duration {
	return time.Duration(s.ConnectTimeout) * time.Second
}
