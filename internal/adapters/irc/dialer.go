package irc

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/supervisor"
)

const handshakeTimeout = 10 * time.Second

// Dialer opens registered Sessions to the configured network.
type Dialer struct {
	cfg *Config
	log *slog.Logger

	// tlsConfig overrides the TLS client config, for tests.
	tlsConfig *tls.Config
}

var _ supervisor.Dialer = (*Dialer)(nil)

// NewDialer creates a Dialer for cfg. Empty fields fall back to DefaultConfig.
func NewDialer(cfg *Config) *Dialer {
	return &Dialer{
		cfg: withDefaults(cfg),
		log: logging.WithComponent("irc.dialer"),
	}
}

// Dial connects and completes registration.
func (d *Dialer) Dial(ctx context.Context) (supervisor.Session, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	sess := newSession(conn, d.cfg)
	regCtx, cancel := context.WithTimeout(ctx, d.cfg.RegisterTimeout)
	defer cancel()
	if err := sess.register(regCtx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return sess, nil
}

func (d *Dialer) connect(ctx context.Context) (lineConn, error) {
	if d.cfg.WebSocketURL != "" {
		d.log.Info("Connecting", slog.String("url", d.cfg.WebSocketURL))
		ws := websocket.Dialer{
			Subprotocols:     []string{wsSubprotocol},
			HandshakeTimeout: handshakeTimeout,
			TLSClientConfig:  d.tlsConfig,
			Proxy:            http.ProxyFromEnvironment,
		}
		conn, _, err := ws.DialContext(ctx, d.cfg.WebSocketURL, nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial %s: %w", d.cfg.WebSocketURL, err)
		}
		return &wsConn{conn: conn}, nil
	}

	d.log.Info("Connecting", slog.String("server", d.cfg.Server), slog.Bool("tls", d.cfg.TLS))
	netDialer := &net.Dialer{Timeout: handshakeTimeout, KeepAlive: 30 * time.Second}
	if d.cfg.TLS {
		tlsCfg := d.tlsConfig
		if tlsCfg == nil {
			host, _, err := net.SplitHostPort(d.cfg.Server)
			if err != nil {
				return nil, fmt.Errorf("server address %q: %w", d.cfg.Server, err)
			}
			tlsCfg = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		td := &tls.Dialer{NetDialer: netDialer, Config: tlsCfg}
		raw, err := td.DialContext(ctx, "tcp", d.cfg.Server)
		if err != nil {
			return nil, fmt.Errorf("tls dial %s: %w", d.cfg.Server, err)
		}
		return newTCPConn(raw), nil
	}

	raw, err := netDialer.DialContext(ctx, "tcp", d.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.cfg.Server, err)
	}
	return newTCPConn(raw), nil
}

func withDefaults(cfg *Config) *Config {
	def := DefaultConfig()
	if cfg == nil {
		return def
	}
	c := *cfg
	if c.Server == "" && c.WebSocketURL == "" {
		c.Server = def.Server
		c.TLS = def.TLS
	}
	if c.Nick == "" {
		c.Nick = def.Nick
	}
	if c.User == "" {
		c.User = c.Nick
	}
	if c.RealName == "" {
		c.RealName = def.RealName
	}
	if c.RegisterTimeout <= 0 {
		c.RegisterTimeout = def.RegisterTimeout
	}
	if c.Flood == nil {
		c.Flood = def.Flood
	}
	return &c
}
