// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edustack/edustack-api/internal/auth"
)

func main() {
	privatePath := flag.String("private", "keys/private.pem", "private key output path")
	publicPath := flag.String("public", "keys/public.pem", "public key output path")
	force := flag.Bool("force", false, "overwrite existing keys")
	flag.Parse()

	if !*force {
		if _, err := os.Stat(*privatePath); err == nil {
			slog.Error("private key already exists, pass -force to overwrite",
				"path", *privatePath)
			os.Exit(1)
		}
	}

	for _, p := range []string{*privatePath, *publicPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			slog.Error("create key directory", "path", p, "error", err)
			os.Exit(1)
		}
	}

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		slog.Error("key generation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("ES256 key pair written",
		"private", *privatePath,
		"public", *publicPath,
	)
}
