package irc

import "time"

// Config holds IRC connection settings.
type Config struct {
	Server          string        `yaml:"server"`           // host:port
	TLS             bool          `yaml:"tls"`              // dial Server over TLS
	WebSocketURL    string        `yaml:"websocket_url"`    // ws(s):// gateway, used instead of Server when set
	Nick            string        `yaml:"nick"`             // wanted nick; "_" is appended while taken
	User            string        `yaml:"user"`             // ident
	RealName        string        `yaml:"realname"`         // gecos
	Password        string        `yaml:"password"`         // server password (PASS), optional
	Rooms           []string      `yaml:"rooms"`            // joined on every connect
	RegisterTimeout time.Duration `yaml:"register_timeout"` // time allowed until RPL_WELCOME
	Flood           *FloodConfig  `yaml:"flood"`            // outbound flood control
}

// DefaultConfig returns a Config for Libera.Chat over TLS.
func DefaultConfig() *Config {
	return &Config{
		Server:          "irc.libera.chat:6697",
		TLS:             true,
		Nick:            "gcibot",
		User:            "gcibot",
		RealName:        "Google Code-in task bot",
		RegisterTimeout: 30 * time.Second,
		Flood:           DefaultFloodConfig(),
	}
}

// Numerics and commands the adapter reacts to.
const (
	rplWelcome          = "001"
	errErroneousNick    = "432"
	errNicknameInUse    = "433"
	errPasswdMismatch   = "464"
	errYoureBannedCreep = "465"
)

// maxTextLength keeps PRIVMSG lines well under the 512 byte line limit once
// the server adds our prefix.
const maxTextLength = 400

// wsSubprotocol is the IRCv3 WebSocket text subprotocol.
const wsSubprotocol = "text.ircv3.net"
