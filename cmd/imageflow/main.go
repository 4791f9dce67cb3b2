// =============================================================================
// ImageFlow CLI
// =============================================================================
// Usage:
//
//	imageflow generate -prompt "a lighthouse" -out lighthouse.webp
//	imageflow batch -file batch.yaml
//	imageflow chat
//	imageflow chain -file chain.yaml
//	imageflow version
//
// Every command accepts -config <path>.
// =============================================================================
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow"
	"github.com/BaSui01/imageflow/config"
	"github.com/BaSui01/imageflow/internal/server"
	"github.com/BaSui01/imageflow/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "generate":
		return runGenerate(ctx, args[1:], stdout, stderr)
	case "batch":
		return runBatch(ctx, args[1:], stdout, stderr)
	case "chat":
		return runChat(ctx, args[1:], stdin, stdout, stderr)
	case "chain":
		return runChain(ctx, args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 2
	}
}

// =============================================================================
// Commands
// =============================================================================

func runGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Image prompt")
	out := fs.String("out", "", "Output filename")
	dir := fs.String("dir", "", "Output directory (default: output.base_dir)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *prompt == "" || *out == "" {
		fmt.Fprintln(stderr, "generate requires -prompt and -out")
		return 2
	}

	return withClient(ctx, *configPath, stderr, func(client *imageflow.Client) int {
		req := types.NewGenerationRequest(*prompt, *out)
		req.OutputDir = *dir
		outcome := client.GenerateRequest(ctx, req)
		writeJSON(stdout, outcome)
		if !outcome.Success {
			return 1
		}
		return 0
	})
}

func runBatch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	file := fs.String("file", "", "Batch YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "batch requires -file")
		return 2
	}

	return withClient(ctx, *configPath, stderr, func(client *imageflow.Client) int {
		spec, err := loadBatchFile(*file, client.Config())
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load batch: %v\n", err)
			return 1
		}

		outcomes, err := client.Batch(ctx, spec)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid batch: %v\n", err)
			return 1
		}
		writeJSON(stdout, outcomes)

		stats := client.Stats()
		fmt.Fprintf(stderr, "%d succeeded, %d failed\n", stats.Succeeded, stats.Failed)
		if stats.Failed > 0 {
			return 1
		}
		return 0
	})
}

func runChat(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	return withClient(ctx, *configPath, stderr, func(client *imageflow.Client) int {
		memory := client.Config().Agent.MemoryEnabled
		if memory {
			if err := client.LoadSession(ctx); err != nil {
				client.Logger().Warn("failed to load session", zap.Error(err))
			}
		}

		scanner := bufio.NewScanner(stdin)
		for ctx.Err() == nil && scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}
			writeJSON(stdout, client.Chat(ctx, line))
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		}

		if memory {
			if err := client.SaveSession(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintf(stderr, "Failed to save session: %v\n", err)
				return 1
			}
		}
		return 0
	})
}

func runChain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chain", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	file := fs.String("file", "", "Chain YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "chain requires -file")
		return 2
	}

	return withClient(ctx, *configPath, stderr, func(client *imageflow.Client) int {
		steps, err := loadChainFile(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load chain: %v\n", err)
			return 1
		}
		writeJSON(stdout, client.RunChain(ctx, steps))
		return 0
	})
}

// =============================================================================
// Helpers
// =============================================================================

// withClient loads config, builds the client, serves metrics when
// configured and runs fn.
func withClient(ctx context.Context, configPath string, stderr io.Writer, fn func(*imageflow.Client) int) int {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger := imageflow.NewLogger(cfg.Log)
	client, err := imageflow.NewClient(cfg, imageflow.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Metrics.Addr
		metricsServer := server.NewManager(srvCfg, logger)
		if err := metricsServer.Start(); err != nil {
			logger.Warn("metrics server not started", zap.Error(err))
		} else {
			defer metricsServer.Shutdown(context.Background())
		}
	}

	logger.Debug("running command",
		zap.String("version", Version),
		zap.String("config", configPath),
	)
	return fn(client)
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "ImageFlow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ImageFlow - prompt to image files

Usage:
  imageflow <command> [options]

Commands:
  generate  Generate one image (-prompt, -out, -dir)
  batch     Run a batch file (-file batch.yaml)
  chat      Chat with the image agent, one request per line
  chain     Run a tool chain file (-file chain.yaml)
  version   Show version information
  help      Show this help message

Common options:
  -config <path>   Path to configuration file (YAML)

Examples:
  imageflow generate -prompt "a lighthouse at dusk" -out lighthouse.webp
  imageflow batch -file batch.yaml -config imageflow.yaml
  echo "enhance a red fox" | imageflow chat
  imageflow version`)
}
