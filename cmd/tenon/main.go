package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/tenonchecker/internal/config"
	"github.com/hamed0406/tenonchecker/internal/logging"
	"github.com/hamed0406/tenonchecker/internal/tenon"
)

// optFlags collects repeated -opt key=value pairs.
type optFlags tenon.Options

func (o optFlags) String() string { return fmt.Sprint(map[string]string(o)) }

func (o optFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	o[k] = val
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("tenon", flag.ContinueOnError)
	configPath := fs.String("config", "tenon.yaml", "path to YAML config file")
	mode := fs.String("mode", "auto", "auto|url|src|fragment")
	level := fs.String("level", "", "conformance level forwarded to Tenon (e.g. AA)")
	opts := optFlags{}
	fs.Var(opts, "opt", "extra request field key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: tenon [flags] <url|html|->")
	}

	kind, ok := tenon.ParseKind(*mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	target := fs.Arg(0)
	if target == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		target = strings.TrimSpace(string(b))
	}
	if *level != "" {
		opts["level"] = *level
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := tenon.New(cfg.Tenon(), tenon.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := client.Check(context.Background(), kind, target, tenon.Options(opts))
	if err != nil {
		logger.Warn("cli_check_failed", zap.String("mode", kind.String()), zap.Error(err))
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
