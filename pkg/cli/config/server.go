package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Server holds the HTTP listener and request policy settings
type Server struct {
	addr     string
	safeMode bool
}

func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("POLYCONN_ADDR"),
			Destination: &x.addr,
		},
		&cli.BoolFlag{
			Name:        "safe-mode",
			Usage:       "Reject every DELETE request",
			Sources:     cli.EnvVars("POLYCONN_SAFE_MODE"),
			Destination: &x.safeMode,
		},
	}
}

func (x Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Bool("safe_mode", x.safeMode),
	)
}

func (x *Server) Addr() string { return x.addr }

func (x *Server) SafeMode() bool { return x.safeMode }
