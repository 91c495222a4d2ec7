package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/tuannm99/novagrid/internal"
	"github.com/tuannm99/novagrid/internal/column"
)

func isQuit(line string) bool {
	switch strings.TrimSpace(line) {
	case `\q`, "quit", "exit":
		return true
	}
	return false
}

func main() {
	flags := pflag.CommandLine
	var (
		configPath = flags.String("config", "", "config file (yaml)")
		oneShot    = flags.StringP("command", "c", "", "run commands separated by ';' and exit")
	)
	flags.String("history", defaultHistoryPath(), "history file path")
	flags.Int("history-max", 2000, "max history lines loaded into memory")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Int("width", column.DefaultWidth, "default column width")
	pflag.Parse()

	cfg, err := internal.LoadConfig(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	model := column.NewModel(
		column.WithWidth(cfg.Grid.DefaultWidth),
		column.WithHeaderRenderer(cfg.Grid.HeaderRenderer),
	)
	fsys := afero.NewOsFs()
	s := newSession(fsys, model, logger)

	if file := pflag.Arg(0); file != "" {
		if err := s.exec(`\load `+file, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	// one-shot mode
	if strings.TrimSpace(*oneShot) != "" {
		for _, cmd := range strings.Split(*oneShot, ";") {
			if err := s.exec(cmd, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	h := NewHistory(fsys, cfg.Repl.HistoryFile)
	if err := h.Load(cfg.Repl.HistoryMax); err != nil {
		logger.Warn("gridctl.history.load", "path", cfg.Repl.HistoryFile, "err", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Repl.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	// preload history into readline (so ↑ works immediately)
	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isQuit(line) {
			return
		}
		if line == `\history` {
			h.Print(os.Stdout, 50)
			continue
		}

		if err := h.Append(line); err != nil {
			logger.Debug("gridctl.history.append", "err", err)
		}
		_ = rl.SaveHistory(compactOneLine(line))

		if err := s.exec(line, os.Stdout); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
