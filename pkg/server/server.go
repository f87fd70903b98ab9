package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lexserve/lexserve/internal/utils"
	"github.com/lexserve/lexserve/pkg/document"
	"github.com/lexserve/lexserve/pkg/session"
)

// maxFrameSize caps a single inbound payload. A longer length prefix is
// treated as a corrupt stream, not an allocation request.
const maxFrameSize = 16 << 20

// Server reads frames from r, routes them through the dispatcher and
// writes response frames to w. Notifications and state transitions are
// handled on the read loop so their effects are ordered; lookups run on
// their own goroutines and can be cancelled by id.
type Server struct {
	disp *session.Dispatcher
	r    io.Reader
	w    io.Writer

	writeMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	inflight map[uint32]inflightEntry
	wg       sync.WaitGroup
}

// inflightEntry ties a cancel func to the registration that created it,
// so releasing a finished request can never unregister a newer one that
// reused its id.
type inflightEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

// NewServer wires a dispatcher to stdin/stdout.
func NewServer(disp *session.Dispatcher) *Server {
	return NewServerWithIO(disp, os.Stdin, os.Stdout)
}

// NewServerWithIO wires a dispatcher to an arbitrary frame stream.
func NewServerWithIO(disp *session.Dispatcher, r io.Reader, w io.Writer) *Server {
	return &Server{
		disp:     disp,
		r:        r,
		w:        w,
		inflight: make(map[uint32]inflightEntry),
	}
}

// Run processes frames until exit or stream loss and returns the process
// exit code: 0 for an exit preceded by shutdown, 1 otherwise.
func (s *Server) Run() int {
	log.Debug("Server loop started")
	for {
		payload, err := s.readFrame()
		if err != nil {
			s.wg.Wait()
			s.disp.Exit()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warn("Input stream closed before exit notification")
			} else {
				log.Errorf("Reading frame: %v", err)
			}
			return 1
		}

		var req Request
		if err := msgpack.Unmarshal(payload, &req); err != nil {
			log.Errorf("Decoding request: %v", err)
			s.writeError(0, &session.Error{Code: session.CodeParse, Message: "undecodable request"})
			continue
		}

		if req.Method == "exit" {
			s.wg.Wait()
			if s.disp.Exit() {
				return 0
			}
			return 1
		}
		s.route(req)
	}
}

// route handles ordered work inline and spawns the rest.
func (s *Server) route(req Request) {
	switch req.Method {
	case "textDocument/didOpen":
		if err := s.disp.DidOpen(req.URI, req.Text, req.Version); err != nil {
			log.Warnf("didOpen %s: %v", req.URI, err)
		}
	case "textDocument/didChange":
		if err := s.disp.DidChange(req.URI, req.Text, req.Version); err != nil {
			log.Warnf("didChange %s: %v", req.URI, err)
		}
	case "textDocument/didClose":
		if err := s.disp.DidClose(req.URI); err != nil {
			log.Warnf("didClose %s: %v", req.URI, err)
		}
	case "$/cancelRequest":
		s.cancel(req.CancelID)

	case "initialize":
		start := time.Now()
		res, err := s.disp.Initialize()
		if err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		s.writeResponse(InitializeResponse{
			ID:           req.ID,
			Words:        res.Words,
			CompletionOn: res.CompletionEnabled,
			TimeTaken:    time.Since(start).Microseconds(),
		})
	case "shutdown":
		if err := s.disp.Shutdown(); err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		s.writeResponse(Ack{ID: req.ID, Status: "ok"})
	case "workspace/executeCommand":
		start := time.Now()
		enabled, err := s.disp.ExecuteCommand(req.Command, req.Enabled)
		if err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		s.writeResponse(CommandResponse{ID: req.ID, Enabled: enabled, TimeTaken: time.Since(start).Microseconds()})

	case "textDocument/hover", "textDocument/signatureHelp", "textDocument/completion":
		s.dispatchAsync(req)

	default:
		s.writeError(req.ID, &session.Error{
			Code:    session.CodeBadRequest,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		})
	}
}

// dispatchAsync runs one lookup request on its own goroutine with a
// cancellable context registered under the request id.
func (s *Server) dispatchAsync(req Request) {
	ctx, release := s.register(req.ID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer release()
		s.handleLookup(ctx, req)
	}()
}

// register tracks a cancellable context under id. A reused id simply
// displaces the older registration as the cancel target; the returned
// release only unregisters its own entry.
func (s *Server) register(id uint32) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.inflight[id] = inflightEntry{cancel: cancel, gen: gen}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if e, ok := s.inflight[id]; ok && e.gen == gen {
			delete(s.inflight, id)
		}
		s.mu.Unlock()
		cancel()
	}
	return ctx, release
}

func (s *Server) cancel(id uint32) {
	s.mu.Lock()
	entry, ok := s.inflight[id]
	s.mu.Unlock()
	if ok {
		log.Debugf("Cancelling request %d", id)
		entry.cancel()
	}
}

func (s *Server) handleLookup(ctx context.Context, req Request) {
	start := time.Now()
	pos := document.Position{Line: req.Line, Character: req.Character}

	switch req.Method {
	case "textDocument/hover":
		content, _, err := s.disp.Hover(ctx, req.URI, pos)
		if err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		s.writeResponse(HoverResponse{ID: req.ID, Content: content, TimeTaken: time.Since(start).Microseconds()})

	case "textDocument/signatureHelp":
		content, _, err := s.disp.SignatureHelp(ctx, req.URI, pos)
		if err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		s.writeResponse(HoverResponse{ID: req.ID, Content: content, TimeTaken: time.Since(start).Microseconds()})

	case "textDocument/completion":
		items, err := s.disp.Completion(ctx, req.URI, pos)
		if err != nil {
			s.writeError(req.ID, session.AsError(err))
			return
		}
		ranks := utils.CreateRankList(len(items))
		suggestions := make([]CompletionSuggestion, len(items))
		for i, it := range items {
			suggestions[i] = CompletionSuggestion{Word: it.Word, Rank: ranks[i], Detail: it.Detail}
		}
		s.writeResponse(CompletionResponse{
			ID:          req.ID,
			Suggestions: suggestions,
			Count:       len(suggestions),
			TimeTaken:   time.Since(start).Microseconds(),
		})
	}
}

func (s *Server) writeResponse(response any) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writeFrame(data); err != nil {
		log.Errorf("Writing frame: %v", err)
	}
}

func (s *Server) writeError(id uint32, perr *session.Error) {
	s.writeResponse(ErrorResponse{ID: id, Error: perr.Message, Code: int(perr.Code)})
}

func (s *Server) readFrame() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(s.r, head[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head[:])
	if size == 0 || size > maxFrameSize {
		return nil, fmt.Errorf("frame size %d out of range", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(s.r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Server) writeFrame(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], uint32(len(payload)))
	if _, err := s.w.Write(head[:]); err != nil {
		return err
	}
	_, err := s.w.Write(payload)
	return err
}
