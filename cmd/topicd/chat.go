package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/topicd/internal/command"
	"github.com/fyrsmithlabs/topicd/internal/config"
	"github.com/fyrsmithlabs/topicd/internal/embeddings"
	"github.com/fyrsmithlabs/topicd/internal/logging"
	"github.com/fyrsmithlabs/topicd/internal/project"
	"github.com/fyrsmithlabs/topicd/internal/router"
	"github.com/fyrsmithlabs/topicd/internal/summarizer"
	"github.com/fyrsmithlabs/topicd/internal/topic"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session on stdin.

Messages are routed into topics by embedding similarity. Commands of the
form "open <path>", "read <path>", or "find <path>" attach file content
to the conversation; a leading "!" sends input untouched. Configured
project directories are scanned and watched for structural changes.

Examples:
  # Chat with defaults
  topicd chat

  # Chat with a config file
  topicd chat --config ~/.config/topicd/config.yaml`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	embedder, err := embeddings.NewService(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}
	cache := embeddings.NewCache(embedder, logger.Named("embeddings"))

	llm, err := summarizer.NewAnthropicClient(cfg.Summarizer)
	if err != nil {
		return fmt.Errorf("initializing summarizer: %w", err)
	}

	r := router.New(cache, llm, cfg.Router, logger.Named("router"))
	defer r.Close()

	watchers, err := registerProjects(ctx, r, cfg.Projects, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, w := range watchers {
			w.Stop()
		}
	}()

	return chatLoop(ctx, r, llm, logger)
}

// registerProjects scans each configured project directory, registers its
// folder structure with the router, and watches it for changes.
func registerProjects(ctx context.Context, r *router.Router, roots []string, logger *zap.Logger) ([]*project.Watcher, error) {
	var watchers []*project.Watcher
	for _, root := range roots {
		name := project.Name(root)

		tree, err := project.Scan(root)
		if err != nil {
			return nil, fmt.Errorf("scanning project %s: %w", root, err)
		}
		r.RegisterProject(name, tree)

		w, err := project.NewWatcher(root, func(tree *topic.Tree) {
			r.RegisterProject(name, tree)
		}, logger.Named("watcher"))
		if err != nil {
			return nil, fmt.Errorf("watching project %s: %w", root, err)
		}
		w.Start(ctx)
		watchers = append(watchers, w)

		logger.Info("registered project",
			zap.String("name", name),
			zap.String("root", root))
	}
	return watchers, nil
}

// chatLoop reads lines from stdin, routes them, and prints replies until
// EOF or cancellation.
func chatLoop(ctx context.Context, r *router.Router, llm summarizer.Client, logger *zap.Logger) error {
	proc := command.NewProcessor(logger.Named("command"))
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Print("> ")
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		res := proc.HandleCommand(input)
		if res.Action != nil {
			attachTarget(ctx, r, res.Action.Target, logger)
		}

		messages := r.BuildPrompt(ctx, res.Input)

		reply, err := llm.Respond(ctx, messages)
		if err != nil {
			logger.Error("model request failed", zap.Error(err))
			fmt.Println("System: request failed, try again")
			fmt.Print("> ")
			continue
		}

		r.RouteMessage(ctx, topic.RoleAssistant, reply, nil)
		fmt.Printf("\n%s\n\n> ", reply)
	}

	r.Wait()
	return scanner.Err()
}

// attachTarget adds a file's content, or a folder's structure, to the
// current topic.
func attachTarget(ctx context.Context, r *router.Router, target string, logger *zap.Logger) {
	info, err := os.Stat(target)
	if err != nil {
		logger.Warn("target vanished", zap.String("target", target), zap.Error(err))
		return
	}

	if info.IsDir() {
		tree, err := project.Scan(target)
		if err != nil {
			logger.Warn("could not scan folder", zap.String("target", target), zap.Error(err))
			return
		}
		name := project.Name(target)
		r.RegisterProject(name, tree)
		r.AddFolderStructure(tree, r.Current().Name())
		return
	}

	content, err := os.ReadFile(target)
	if err != nil {
		logger.Warn("could not read file", zap.String("target", target), zap.Error(err))
		return
	}
	r.AddFile(ctx, target, string(content))
}
