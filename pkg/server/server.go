package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/config"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

// Server handles the IPC for dictionary queries
type Server struct {
	cs     *charset.Charset
	dawg   *wordgraph.Dawg
	store  *wordgraph.WordStore
	ambigs *ambig.Table
	cfg    config.ServerConfig

	dec *msgpack.Decoder
	enc *msgpack.Encoder
}

// NewServer creates a dictionary query server using stdin/stdout for IPC
func NewServer(cs *charset.Charset, dawg *wordgraph.Dawg, store *wordgraph.WordStore, ambigs *ambig.Table, cfg config.ServerConfig) *Server {
	s := &Server{
		cs:     cs,
		dawg:   dawg,
		store:  store,
		ambigs: ambigs,
		cfg:    cfg,
	}
	s.dec = msgpack.NewDecoder(os.Stdin)
	s.enc = msgpack.NewEncoder(os.Stdout)
	return s
}

// NewServerIO is NewServer over explicit streams, for tests and embedding.
func NewServerIO(cs *charset.Charset, dawg *wordgraph.Dawg, store *wordgraph.WordStore, ambigs *ambig.Table, cfg config.ServerConfig, r io.Reader, w io.Writer) *Server {
	s := NewServer(cs, dawg, store, ambigs, cfg)
	s.dec = msgpack.NewDecoder(r)
	s.enc = msgpack.NewEncoder(w)
	return s
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting server.")

	// Signal that the server is ready
	s.sendResponse(StatusResponse{
		Status: "ready",
		Words:  s.store.Len(),
		Edges:  s.dawg.NumEdges(),
	})

	for {
		var request Request
		if err := s.dec.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches on the command field
func (s *Server) handleRequest(request Request) {
	switch request.Cmd {
	case "lookup":
		s.handleLookup(request)
	case "prefix":
		s.handlePrefix(request)
	case "ambigs":
		s.handleAmbigs(request)
	case "health":
		s.sendResponse(StatusResponse{
			ID:     request.ID,
			Status: "ok",
			Words:  s.store.Len(),
			Edges:  s.dawg.NumEdges(),
		})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown command: %s", request.Cmd), 400)
	}
}

// handleLookup validates one word against the word graph.
func (s *Server) handleLookup(request Request) {
	if request.Word == "" {
		s.sendError(request.ID, "Missing 'w' parameter", 400)
		log.Debug("Word is empty in lookup request")
		return
	}

	start := time.Now()
	ids, ok := s.cs.IDsOfString(request.Word)
	valid, isPrefix := false, false
	if ok {
		valid = s.dawg.Accepts(ids)
		_, isPrefix = s.dawg.IsPrefix(ids)
	}
	elapsed := time.Since(start)

	s.sendResponse(LookupResponse{
		ID:        request.ID,
		Word:      request.Word,
		Valid:     valid,
		IsPrefix:  isPrefix,
		TimeTaken: elapsed.Milliseconds(),
	})
}

// handlePrefix returns ranked completions from the raw word store.
func (s *Server) handlePrefix(request Request) {
	prefix := request.Prefix
	if prefix == "" {
		s.sendError(request.ID, "Missing 'p' parameter", 400)
		log.Debug("Prefix is empty in request")
		return
	}
	if len(prefix) < s.cfg.MinPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix must be at least %d characters", s.cfg.MinPrefix), 400)
		log.Debug("Prefix is too short in request")
		return
	}
	if len(prefix) > s.cfg.MaxPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.cfg.MaxPrefix), 400)
		log.Debug("Prefix is too long in request")
		return
	}

	limit := request.Limit
	if limit < 1 || limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	start := time.Now()
	words := s.store.SuggestPrefix(prefix, limit)
	elapsed := time.Since(start)

	suggestions := make([]PrefixSuggestion, len(words))
	for i, w := range words {
		suggestions[i] = PrefixSuggestion{Word: w, Rank: i + 1}
	}
	s.sendResponse(PrefixResponse{
		ID:          request.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Milliseconds(),
	})
}

// handleAmbigs dumps the ambiguity rules starting with one character.
func (s *Server) handleAmbigs(request Request) {
	if request.Char == "" {
		s.sendError(request.ID, "Missing 'ch' parameter", 400)
		return
	}
	if !s.cs.Contains(request.Char) {
		s.sendError(request.ID, fmt.Sprintf("Unknown character: %s", request.Char), 404)
		return
	}

	start := time.Now()
	specs := s.ambigs.Lookup(s.cs.IDOf(request.Char))
	entries := make([]AmbigEntry, 0, len(specs))
	for _, spec := range specs {
		entries = append(entries, AmbigEntry{
			Wrong:   s.cs.StringOfIDs(spec.WrongNgram),
			Correct: s.cs.StringOf(spec.CorrectNgramID),
			Type:    spec.Type.String(),
		})
	}
	elapsed := time.Since(start)

	s.sendResponse(AmbigResponse{
		ID:        request.ID,
		Entries:   entries,
		Count:     len(entries),
		TimeTaken: elapsed.Milliseconds(),
	})
}

// sendResponse encodes one msgpack message onto the output stream.
func (s *Server) sendResponse(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
