package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomctl/loom/internal/config"
	"github.com/loomctl/loom/internal/logger"
	"github.com/loomctl/loom/internal/orchestrator"
	"github.com/loomctl/loom/internal/sandbox"
	"github.com/loomctl/loom/internal/tools"
	"github.com/loomctl/loom/internal/transport"
	"github.com/loomctl/loom/internal/workspace"
	"github.com/spf13/cobra"
)

func runTask(cmd *cobra.Command, args []string) error {
	repoRoot, err := filepath.Abs(directory)
	if err != nil {
		return err
	}
	repoRoot = findGitRoot(repoRoot)
	if repoRoot == "" {
		return fmt.Errorf("could not find a git repository under %s", directory)
	}

	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Model.Default = modelFlag
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "Error: %s\n", e)
		}
		return fmt.Errorf("%d configuration error(s)", len(errs))
	}

	descriptors, err := loadDescriptors()
	if err != nil {
		return fmt.Errorf("loading prompt descriptors: %w", err)
	}

	ui := newTerminalUI()

	task := strings.Join(args, " ")
	if task == "" {
		fmt.Print("Describe the task: ")
		task, err = bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		task = strings.TrimSpace(task)
	}

	for task != "" {
		if err := runOneSession(repoRoot, cfg, descriptors, ui, task); err != nil {
			return err
		}

		fmt.Print("\nNext task (blank to exit): ")
		next, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return nil
		}
		task = strings.TrimSpace(next)
	}
	return nil
}

// runOneSession prepares a fresh workspace, drives the Orchestrator
// through one task to completion or deferral, and tears down its
// per-session components.
func runOneSession(repoRoot string, cfg *config.Config, descriptors map[string]config.Descriptor, ui *terminalUI, task string) error {
	session, err := workspace.Prepare(repoRoot)
	if err != nil {
		return fmt.Errorf("preparing session workspace: %w", err)
	}

	logDir := filepath.Join(repoRoot, workspace.StateDirName, fmt.Sprintf("%d", session.ID))
	log := logger.New(logDir)
	defer log.Close()

	client, err := transport.New(cfg.Model, cfg.Retry, log)
	if err != nil {
		return fmt.Errorf("configuring model transport: %w", err)
	}

	// A missing container runtime only disables the RUN tool (handleRun
	// reports it as unavailable per command); it shouldn't block tasks
	// that never need a sandbox.
	sandboxRunner, err := sandbox.NewRunner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; the RUN tool will be unavailable this session.\n", err)
		sandboxRunner = nil
	}

	orch := orchestrator.New(session, repoRoot, cfg, log, client, tools.NewRegistry(), sandboxRunner, ui, descriptors)
	orch.SetTitleGenerator(transport.NewTitleGenerator(context.Background(), cfg.Model.TitleProvider))
	return orch.Run(task)
}

func loadConfig(repoRoot string) (*config.Config, error) {
	path := filepath.Join(repoRoot, configPath)
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func findGitRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
