package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

// connDeadline bounds one request/response exchange.
const connDeadline = 30 * time.Second

// Handler answers IPC requests. The daemon implements it.
type Handler interface {
	// GetStatus returns the current reconciler status.
	GetStatus() *StatusData

	// GetRecentLogs returns up to count recent log entries.
	GetRecentLogs(count int) []LogEntryData

	// ReloadConfig re-reads the config file and applies it.
	ReloadConfig() *ReloadConfigData

	// SetHotspot queues a manual enable or disable.
	SetHotspot(enabled bool) *SetHotspotData

	// Shutdown gracefully stops the daemon.
	Shutdown() error
}

// Server handles IPC requests from clients.
type Server struct {
	handler  Handler
	logger   *logging.Logger
	address  string
	listener net.Listener

	// authorize vets modify requests on platforms that can identify the
	// caller. Nil allows everything.
	authorize func(conn net.Conn, op MessageType) error

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer creates an IPC server on the default address.
func NewServer(handler Handler, logger *logging.Logger) *Server {
	return NewServerWithAddress(DefaultAddress(), handler, logger)
}

// NewServerWithAddress creates an IPC server on a custom pipe name or
// socket path.
func NewServerWithAddress(address string, handler Handler, logger *logging.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler: handler,
		logger:  logger,
		address: address,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Address returns the pipe name or socket path the server listens on.
func (s *Server) Address() string {
	return s.address
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info().Str("address", s.address).Msg("IPC server started")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and waits for open connections to finish.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Debug().Msg("Stopping IPC server")
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		s.cleanup()
		s.logger.Info().Msg("IPC server stopped")
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			s.logger.Warn().Err(err).Msg("Failed to accept IPC connection")
			// A closed listener keeps failing; back off instead of spinning.
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection reads one request and writes one response.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(connDeadline))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			s.logger.Warn().Err(err).Msg("Failed to read IPC request")
		}
		return
	}

	req, err := DecodeRequest(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode IPC request")
		s.sendResponse(conn, NewErrorResponse("invalid request format"))
		return
	}

	s.logger.Debug().Str("type", string(req.Type)).Msg("Received IPC request")

	if isModifyRequest(req.Type) && s.authorize != nil {
		if err := s.authorize(conn, req.Type); err != nil {
			s.logger.Info().Str("type", string(req.Type)).Err(err).Msg("IPC request denied")
			s.sendResponse(conn, NewErrorResponse(err.Error()))
			return
		}
	}

	s.sendResponse(conn, s.handleRequest(req))
}

func isModifyRequest(t MessageType) bool {
	return t == MsgReloadConfig || t == MsgSetHotspot || t == MsgShutdown
}

// handleRequest dispatches a request to the handler.
func (s *Server) handleRequest(req *Request) *Response {
	switch req.Type {
	case MsgGetStatus:
		return NewStatusResponse(s.handler.GetStatus())

	case MsgGetRecentLogs:
		count := req.Count
		if count <= 0 {
			count = DefaultRecentLogs
		}
		return NewRecentLogsResponse(s.handler.GetRecentLogs(count))

	case MsgReloadConfig:
		return NewReloadConfigResponse(s.handler.ReloadConfig())

	case MsgSetHotspot:
		if req.Enabled == nil {
			return NewErrorResponse("SetHotspot requires enabled")
		}
		return NewSetHotspotResponse(s.handler.SetHotspot(*req.Enabled))

	case MsgShutdown:
		if err := s.handler.Shutdown(); err != nil {
			return NewErrorResponse(err.Error())
		}
		// Stop after the response has been written.
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.Stop()
		}()
		return NewOKResponse()

	default:
		return NewErrorResponse(fmt.Sprintf("unknown message type: %s", req.Type))
	}
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) {
	data, err := resp.Encode()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode IPC response")
		return
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send IPC response")
	}
}
