// Copyright 2026 The LexServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the LexServe dictionary session server and CLI
[DBG] application.

LexServe answers word lookups and typing completions for text editors. It
loads a dictionary once at startup, builds a frequency-ranked prefix trie
with a bounded edit-distance fuzzy matcher over it, and then serves
hover, signature help and completion requests over a binary IPC session.

The server mode speaks length-prefixed msgpack over stdin/stdout and
follows an initialize/shutdown/exit lifecycle; document text is pushed by
the client through open/change/close notifications and queried by cursor
position. CLI mode skips the protocol entirely and reads prefixes and
lookup commands from a prompt.

# Usage

Start the server with a dictionary file:

	lexserve -dict /path/to/dictionary.json

Use a SQLite dictionary with a frequency list and debug logging:

	lexserve -dict words.sqlite -freq frequencies.txt -d

Run in CLI mode for interactive testing:

	lexserve -dict dictionary.json -c

JSON dictionaries map each word to its parts of speech and definition
strings and are served from memory. Paths ending in .db, .sqlite or
.sqlite3 open an indexed SQLite database instead, which answers prefix
and fuzzy queries with its own indexes rather than the in-process trie.

# Configuration

Runtime configuration is a TOML file created with defaults on first run:

	[dict]
	path = "dictionary.json"
	frequency_path = "frequencies.txt"

	[completion]
	enabled = true
	max_distance = 2
	max_results = 24

	[formatting]
	word_format = "**{word}**"
	part_of_speech_format = "_{part}_"
	definition_format = "{num}. {definition}"
	example_format = "   > Example: _{example}_"

	[server]
	max_prefix = 60

The -dict and -freq flags override the corresponding config values.

# IPC Protocol

Frames are a 4-byte little-endian length followed by one msgpack map.
Send a completion request:

	{"id": 7, "m": "textDocument/completion", "uri": "file:///a.md", "ln": 2, "ch": 14}

Receive ranked suggestions with timing in microseconds:

	{"id": 7, "s": [{"w": "passing", "r": 1}, {"w": "passion", "r": 2}], "c": 2, "t": 180}

In-flight requests can be abandoned with {"m": "$/cancelRequest", "cid": 7}.
The protocol details live in pkg/server.

# Command Line Flags

The following flags control application behavior:

	-config string
	    Path to a TOML config file (default: platform config dir)
	-dict string
	    Dictionary file, JSON or SQLite (overrides config)
	-freq string
	    Frequency list, text or SQLite (overrides config)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-version
	    Show current version

All logging goes to stderr; stdout is reserved for protocol frames.
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

	"github.com/lexserve/lexserve/internal/cli"
	"github.com/lexserve/lexserve/internal/logger"
	"github.com/lexserve/lexserve/internal/utils"
	"github.com/lexserve/lexserve/pkg/config"
	"github.com/lexserve/lexserve/pkg/dictionary"
	"github.com/lexserve/lexserve/pkg/server"
	"github.com/lexserve/lexserve/pkg/session"
)

const (
	Version = "0.3.0-beta"
	AppName = "lexserve"
	gh      = "https://github.com/lexserve/lexserve"
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
	configPath := flag.String("config", "", "Path to a TOML config file")
	dictPath := flag.String("dict", "", "Dictionary file, JSON or SQLite (overrides config)")
	freqPath := flag.String("freq", "", "Frequency list, text or SQLite (overrides config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")

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
	log.SetOutput(os.Stderr)

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	if *dictPath != "" {
		cfg.Dict.Path = *dictPath
	}
	if *freqPath != "" {
		cfg.Dict.FrequencyPath = *freqPath
	}

	// Any load failure here is fatal: a session without a vocabulary
	// cannot answer anything.
	dictFile := utils.ExpandHome(cfg.Dict.Path)
	freqFile := utils.ExpandHome(cfg.Dict.FrequencyPath)
	store, err := dictionary.Open(dictFile)
	if err != nil {
		log.Fatalf("Failed to open dictionary at (%s): %v", dictFile, err)
	}
	freqs, err := dictionary.LoadFrequencies(freqFile)
	if err != nil {
		log.Fatalf("Failed to load frequencies from (%s): %v", freqFile, err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		engine, search, err := session.BuildVocabulary(store, freqs)
		if err != nil {
			log.Fatalf("Failed to build vocabulary: %v", err)
		}
		inputHandler := cli.NewInputHandler(cfg, store, engine, search)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	disp, err := session.New(cfg, store, freqs)
	if err != nil {
		log.Fatalf("Failed to build session: %v", err)
	}

	showStartupInfo(dictFile)

	log.Debug("spawning IPC")
	srv := server.NewServer(disp)
	os.Exit(srv.Run())
}

// printVersion renders the styled -version output.
func printVersion() {
	vlog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ LexServe ] Dictionary lookups and completions for your editor!")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dictPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " LexServe ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("dictionary: ( %s )", dictPath)
	log.Info("status: waiting for initialize")
	fmt.Fprintln(os.Stderr, "==========")

	log.SetLevel(currentLevel)
}
