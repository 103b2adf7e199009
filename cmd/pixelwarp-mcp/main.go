package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/pixelwarp-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// logLevel maps PIXELWARP_MCP_LOG_LEVEL to a slog level. Unknown or empty
// values select info.
func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pixelwarp-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("pixelwarp-mcp - MCP server for perspective, bulge and mesh warps, palettes and masks")
			fmt.Println()
			fmt.Println("Usage: pixelwarp-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PIXELWARP_MCP_LOG_LEVEL=debug|info|warn|error    Log level (default info)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Log to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("PIXELWARP_MCP_LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	logger.Debug("starting", "name", server.Name, "version", Version, "built", BuildTime, "commit", GitCommit)

	srv := server.NewWithLogger(logger)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
