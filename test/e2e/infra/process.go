package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// ProcessInfraManager runs campi as a child process.
type ProcessInfraManager struct {
	binary string
	cmd    *exec.Cmd
	done   chan error
	secret string
}

func NewProcessInfraManager(binary string) *ProcessInfraManager {
	return &ProcessInfraManager{binary: binary}
}

func (p *ProcessInfraManager) StartCampi(cfg CampiConfig) error {
	args := []string{
		"run",
		"--server-address", cfg.Address,
		"--admin-address", cfg.AdminAddress,
		"--pool-workers", strconv.Itoa(cfg.Workers),
		"--log-format", "json",
	}
	if cfg.JWTSecret != "" {
		args = append(args, "--auth-enabled", "--auth-jwt-secret", cfg.JWTSecret)
	}
	p.secret = cfg.JWTSecret

	p.cmd = exec.Command(p.binary, args...)
	p.cmd.Stdout = os.Stdout
	p.cmd.Stderr = os.Stderr
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.binary, err)
	}

	p.done = make(chan error, 1)
	go func() { p.done <- p.cmd.Wait() }()

	zap.S().Infow("campi started", "pid", p.cmd.Process.Pid, "args", args)

	return waitForPort(cfg.Address, 10*time.Second)
}

// StopCampi sends SIGTERM, so the instance goes through its graceful drain.
func (p *ProcessInfraManager) StopCampi() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	select {
	case err := <-p.done:
		return err
	case <-time.After(30 * time.Second):
		_ = p.cmd.Process.Kill()
		return errors.New("campi did not stop in time")
	}
}

func (p *ProcessInfraManager) GenerateToken(subject string) (string, error) {
	return signToken(p.secret, subject)
}

func waitForPort(addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, conn.Close()
	}, backoff.WithBackOff(b))
	if err != nil {
		return fmt.Errorf("campi not reachable on %s: %w", addr, err)
	}
	return nil
}
