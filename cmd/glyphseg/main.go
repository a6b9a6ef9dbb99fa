// Copyright 2026 The GlyphSeg Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the glyphseg dictionary server and CLI [DBG]
application.

GlyphSeg validates candidate word readings against a compacted word graph
built from a plain word list, applies ambiguity rules distilled from
classifier confusion data, and serves dictionary queries over MessagePack
IPC for integration with recognition pipelines.

# Usage

Start the server with a word list:

	glyphseg -words /data/words.txt

Load ambiguity rules and enable debug mode:

	glyphseg -words /data/words.txt -ambigs /data/ambigs.txt -d

Run in CLI mode for interactive testing:

	glyphseg -words /data/words.txt -c

# Configuration

Runtime configuration is managed through a TOML file:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60

	[dict]
	max_edges = 10000000
	word_list_path = "/data/words.txt"

	[ambig]
	rules_path = "/data/ambigs.txt"
	use_definite_ambigs = false

	[search]
	max_states = 30
	segcost_bias = 0.125
	dangerous_delta = 0.5

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See pkg/server
for the message shapes. A lookup request:

	{"id": "req1", "cmd": "lookup", "w": "segment"}

# CLI Mode

CLI mode provides an interactive interface for checking words against the
loaded graph and inspecting the ambiguity rules they trigger. It is
primarily intended for development and testing.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/internal/cli"
	ilog "github.com/typefrag/glyphseg/internal/logger"
	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/config"
	"github.com/typefrag/glyphseg/pkg/server"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

const (
	Version = "0.3.0-beta"
	AppName = "glyphseg"
	gh      = "https://github.com/typefrag/glyphseg"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	wordsPath := flag.String("words", "", "Word list file, one word per line")
	ambigsPath := flag.String("ambigs", "", "Ambiguity rules file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Custom config file path")
	definite := flag.Bool("definite", false, "Enable the 1-to-1 definite ambiguity side table")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	words := *wordsPath
	if words == "" {
		words = appConfig.Dict.WordListPath
	}
	rules := *ambigsPath
	if rules == "" {
		rules = appConfig.Ambig.RulesPath
	}

	cs := charset.New()
	trie := wordgraph.NewTrie(appConfig.Dict.MaxEdges)
	store := wordgraph.NewWordStore()

	if words != "" {
		count, err := wordgraph.LoadWordListFile(words, cs, trie, store)
		if err != nil {
			log.Fatalf("Failed to load word list %s: %v", words, err)
		}
		log.Debugf("Loaded %d words, %d trie edges", count, trie.NumEdges())
	} else {
		log.Warn("No word list specified, running with empty dict...")
	}

	dawg := trie.Compact()
	log.Debugf("Compacted graph: %d nodes, %d edges", dawg.NumNodes(), dawg.NumEdges())

	table := ambig.NewTable()
	if rules != "" {
		opts := ambig.LoadOptions{
			UseDefiniteAmbigsForClassifier: *definite || appConfig.Ambig.UseDefiniteAmbigs,
		}
		table, err = ambig.LoadFile(rules, cs, opts)
		if err != nil {
			log.Fatalf("Failed to load ambiguity rules %s: %v", rules, err)
		}
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(cs, dawg, store, table,
			appConfig.Server.MinPrefix, appConfig.Server.MaxPrefix, appConfig.Server.MaxLimit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(cs, dawg, store, table, appConfig.Server)

	showStartupInfo(words, store.Len(), dawg.NumEdges())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	logger := ilog.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["version"] = lipgloss.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ GlyphSeg ] Dictionary-validated glyph segmentation!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(wordList string, words, edges int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " GlyphSeg ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("word list: ( %s )", wordList)
	log.Infof("words: [ %d ], edges: [ %d ]", words, edges)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
