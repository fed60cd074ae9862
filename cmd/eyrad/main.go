package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"eyra/internal/config"
	"eyra/internal/daemon"
	"eyra/internal/ipc"
	"eyra/internal/logging"
	"eyra/internal/services/audiotrim"
	"eyra/internal/store"
	"eyra/internal/verify"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	opts := []verify.Option{}
	if cfg.Verification.TrimEnabled {
		opts = append(opts, verify.WithTrimmer(audiotrim.New(cfg.FFmpegBinary(), logger)))
	}
	service := verify.NewService(st, logger, opts...)

	d, err := daemon.New(cfg, st, service, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("eyrad shutting down")
}
