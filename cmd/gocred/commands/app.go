package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/internal/backend"
	"github.com/MrEthical07/goCred/internal/config"
	"github.com/MrEthical07/goCred/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app bundles everything a command needs to talk to the store.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *backend.Backend
	engine  *goCred.Engine
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	be, err := backend.Open(cfg.Backend)
	if err != nil {
		return nil, err
	}

	engine, err := goCred.New().
		WithConfig(cfg.Engine()).
		WithStore(be.Store).
		WithLogger(logger).
		Build()
	if err != nil {
		_ = be.Close()
		return nil, err
	}

	engineCfg := cfg.Engine()
	for _, w := range engineCfg.Lint() {
		logger.Warn("configuration warning", "code", w.Code, "severity", w.Severity.String(), "detail", w.Message)
	}

	return &app{cfg: cfg, logger: logger, backend: be, engine: engine}, nil
}

func (a *app) Close() {
	if a == nil {
		return
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("closing backend failed", "error", err)
	}
}

// secretReader reads passwords from a terminal without echo, or one per
// line from stdin when stdin is not a terminal or --password-stdin is set.
type secretReader struct {
	in        io.Reader
	prompts   io.Writer
	fromStdin bool
	lines     *bufio.Reader
}

func newSecretReader(cmd *cobra.Command) *secretReader {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		fromStdin = true
	}
	return &secretReader{in: in, prompts: cmd.ErrOrStderr(), fromStdin: fromStdin}
}

func (s *secretReader) read(prompt string) (string, error) {
	if s.fromStdin {
		if s.lines == nil {
			s.lines = bufio.NewReader(s.in)
		}
		line, err := s.lines.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(s.prompts, prompt)
	f := s.in.(*os.File)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(s.prompts)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// readNew reads a new password, asking twice on a terminal.
func (s *secretReader) readNew(prompt string) (string, error) {
	first, err := s.read(prompt)
	if err != nil {
		return "", err
	}
	if s.fromStdin {
		return first, nil
	}
	second, err := s.read("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
