package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"eyra/internal/api"
	"eyra/internal/daemon"
	"eyra/internal/logging"
	"eyra/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Eyra", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.Checks = api.FromCheckResults(status.Checks)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) NextSession(req NextSessionRequest, resp *NextSessionResponse) error {
	if req.ReviewerID <= 0 {
		return fmt.Errorf("invalid reviewer id %d", req.ReviewerID)
	}
	handle, err := s.daemon.Service().NextSession(s.ctx, req.ReviewerID)
	if err != nil {
		return err
	}
	if handle == nil {
		resp.Assigned = false
		return nil
	}
	resp.Assigned = true
	resp.Assignment = api.FromSessionHandle(handle)
	return nil
}

func (s *service) SessionDescribe(req SessionDescribeRequest, resp *SessionDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	detail, err := s.daemon.Service().Session(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Detail = api.FromSessionDetail(detail)
	return nil
}

func (s *service) SessionRemove(req SessionRemoveRequest, resp *SessionRemoveResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	if err := s.daemon.Service().RemoveSession(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Deleted = true
	s.log().Info("session removed via IPC",
		logging.String(logging.FieldEventType, "session_remove"),
		logging.Int64(logging.FieldSession, req.ID))
	return nil
}

func (s *service) SessionRelease(req SessionReleaseRequest, resp *SessionReleaseResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	if err := s.daemon.Service().ReleaseSession(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Released = true
	return nil
}

func (s *service) RecordVerdict(req RecordVerdictRequest, resp *RecordVerdictResponse) error {
	result, err := s.daemon.Service().RecordVerdict(s.ctx, req.Verdict.ToVerdict())
	if err != nil {
		return err
	}
	resp.Result = api.FromVerdictResult(result)
	return nil
}

func (s *service) UndoVerdict(req UndoVerdictRequest, resp *UndoVerdictResponse) error {
	if req.VerificationID <= 0 {
		return fmt.Errorf("invalid verification id %d", req.VerificationID)
	}
	if err := s.daemon.Service().UndoVerdict(s.ctx, req.VerificationID); err != nil {
		return err
	}
	resp.Undone = true
	return nil
}

func (s *service) FlagPriority(req FlagPriorityRequest, resp *FlagPriorityResponse) error {
	if req.RecordingID <= 0 {
		return fmt.Errorf("invalid recording id %d", req.RecordingID)
	}
	session, err := s.daemon.Service().FlagRecordingPriority(s.ctx, req.RecordingID)
	if err != nil {
		return err
	}
	resp.SessionID = session.ID
	return nil
}

func (s *service) Stats(req StatsRequest, resp *StatsResponse) error {
	from, err := parseDate(req.From)
	if err != nil {
		return fmt.Errorf("invalid from date %q", req.From)
	}
	to, err := parseDate(req.To)
	if err != nil {
		return fmt.Errorf("invalid to date %q", req.To)
	}
	stats, err := s.daemon.Service().Stats(s.ctx, from, to)
	if err != nil {
		return err
	}
	resp.Stats = api.FromStats(stats)
	return nil
}

func (s *service) Export(_ ExportRequest, resp *ExportResponse) error {
	var buf strings.Builder
	if err := s.daemon.Service().ExportTSV(s.ctx, &buf); err != nil {
		return err
	}
	resp.TSV = buf.String()
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait > 30*time.Second {
		wait = 30 * time.Second
	}
	result, err := s.daemon.LogTail(s.ctx, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
