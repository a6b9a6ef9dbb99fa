// Package cli handles cmd line input for DBG and testing the loaded
// dictionary and ambiguity tables in real-time
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/typefrag/glyphseg/internal/logger"

	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

var clog = logger.Default("cli")

// InputHandler processes user input from stdin, validating each typed word
// against the word graph and reporting matching ambiguity rules and prefix
// completions.
type InputHandler struct {
	cs              *charset.Charset
	dawg            *wordgraph.Dawg
	store           *wordgraph.WordStore
	ambigs          *ambig.Table
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(cs *charset.Charset, dawg *wordgraph.Dawg, store *wordgraph.WordStore, ambigs *ambig.Table, minLength, maxLength, limit int) *InputHandler {
	return &InputHandler{
		cs:              cs,
		dawg:            dawg,
		store:           store,
		ambigs:          ambigs,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	clog.Print("GlyphSeg dictionary CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	clog.Print("type a word and press Enter to check it (Ctrl+C to exit):")

	for {
		clog.Print("> ")
		word, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		h.handleInput(word)
	}
}

// handleInput checks a single word: graph validity, prefix status, the
// ambiguity rules its characters trigger, and completions from the raw
// word store.
func (h *InputHandler) handleInput(word string) {
	if len(word) < h.minPrefixLength {
		clog.Errorf("Word too short: %s", word)
		return
	}
	if len(word) > h.maxPrefixLength {
		clog.Errorf("Word too long: %s", word)
		return
	}

	start := time.Now()
	ids, ok := h.cs.IDsOfString(word)
	if !ok {
		clog.Warnf("'%s' contains characters outside the loaded charset", word)
		return
	}

	valid := h.dawg.Accepts(ids)
	_, isPrefix := h.dawg.IsPrefix(ids)
	elapsed := time.Since(start)
	clog.Debugf("Took [ %v ] for word '%s'", elapsed, word)

	clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", word)
	switch {
	case valid && isPrefix:
		clog.Printf("%s is a word and a prefix of longer words", clWord)
	case valid:
		clog.Printf("%s is a word", clWord)
	case isPrefix:
		clog.Printf("%s is a prefix, not a word", clWord)
	default:
		clog.Printf("%s is not in the dictionary", clWord)
	}

	h.printAmbigs(ids)

	completions := h.store.SuggestPrefix(word, h.suggestLimit)
	if len(completions) == 0 {
		return
	}
	clog.Printf("Found %d completions for '%s':", len(completions), word)
	for i, w := range completions {
		clog.Printf("%2d. %s", i+1, w)
	}
}

// printAmbigs lists every ambiguity rule matching a window of the word.
func (h *InputHandler) printAmbigs(ids []charset.CharID) {
	for off := range ids {
		for _, spec := range h.ambigs.Lookup(ids[off]) {
			if !spec.MatchWrongNgram(ids, off) {
				continue
			}
			clog.Printf("ambiguity at %d: %q -> %q (%s)",
				off, h.cs.StringOfIDs(spec.WrongNgram),
				h.cs.StringOf(spec.CorrectNgramID), spec.Type)
		}
	}
}
