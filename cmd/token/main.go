package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/erp/einvoice/internal/infrastructure/auth"
	"github.com/erp/einvoice/internal/infrastructure/config"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// token mints bearer tokens for systems calling the gateway API. It signs
// with the jwt.secret and jwt.issuer the server validates against.
func main() {
	var (
		subject string
		ttl     time.Duration
		scope   string
	)
	flag.StringVar(&subject, "subject", "", "Calling system, recorded as the token subject (required)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.StringVar(&scope, "scope", "", "Comma separated scopes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The token is the only thing written to stdout
	logCfg := logger.ConfigForEnvironment(cfg.App.Env)
	logCfg.Output = "stderr"
	log, closeLog, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if subject == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is not set")
	}

	var scopes []string
	for _, s := range strings.Split(scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}

	token, err := auth.NewJWTService(cfg.JWT).GenerateToken(subject, ttl, scopes...)
	if err != nil {
		log.Fatal("Failed to sign token", zap.Error(err))
	}
	if !cfg.JWT.Enabled {
		log.Warn("jwt.enabled is false; the server will not check this token")
	}
	log.Info("Token issued",
		zap.String("subject", subject),
		zap.Duration("ttl", ttl),
		zap.Strings("scope", scopes),
	)
	fmt.Println(token)
}
