package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"testing"

	"github.com/campi/campi/test/e2e/infra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

type configuration struct {
	CampiBinary  string
	CampiAddress string
	AdminAddress string
	Workers      int
	JWTSecret    string
	InfraMode    string // "process" or "external"
}

var (
	cfg          configuration
	infraManager infra.InfraManager
)

func (c configuration) Validate() error {
	if c.InfraMode != "process" && c.InfraMode != "external" {
		return fmt.Errorf("invalid infra-mode %q: must be 'process' or 'external'", c.InfraMode)
	}
	if c.InfraMode == "process" && c.CampiBinary == "" {
		return fmt.Errorf("campi binary is required in process mode")
	}
	if _, _, err := net.SplitHostPort(c.CampiAddress); err != nil {
		return fmt.Errorf("failed to parse campi address: %v", err)
	}
	if _, _, err := net.SplitHostPort(c.AdminAddress); err != nil {
		return fmt.Errorf("failed to parse admin address: %v", err)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.InfraMode, "infra-mode", "process", "Infrastructure mode: 'process' (run the binary) or 'external' (already running)")
	flag.StringVar(&cfg.CampiBinary, "campi-binary", "./bin/campi", "Path to the campi binary")
	flag.StringVar(&cfg.CampiAddress, "campi-address", "127.0.0.1:49000", "Camera server address")
	flag.StringVar(&cfg.AdminAddress, "admin-address", "127.0.0.1:8000", "Admin api address")
	flag.IntVar(&cfg.Workers, "workers", 4, "Pool size campi is started with")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "e2e-secret", "Admin api secret; empty disables auth")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	switch cfg.InfraMode {
	case "process":
		infraManager = infra.NewProcessInfraManager(cfg.CampiBinary)
	case "external":
		infraManager = infra.NewExternalInfraManager(cfg.JWTSecret)
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "E2E Suite") {
		os.Exit(1)
	}
}
