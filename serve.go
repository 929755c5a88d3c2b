package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"zelus/internal/catalog"
	"zelus/internal/config"
	"zelus/internal/logging"
	"zelus/internal/store"
	"zelus/internal/util"
	"zelus/internal/web"
)

func serve(conf *config.Config, log *logging.Logger) error {
	st, err := store.Open(context.Background(), conf.DBPath, conf.QueryTimeout.Duration(), log)
	if err != nil {
		return err
	}

	cat, err := catalog.New(conf.QueryDir)
	if err != nil {
		return util.ConcatErrors([]error{err, st.Close()})
	}

	server, err := web.NewServer(conf, st, cat, log)
	if err != nil {
		return util.ConcatErrors([]error{err, st.Close()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-signaled:
			log.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// The store is only closed once Serve has drained every request.
	serveErr := server.Serve(ctx)
	if err := util.ConcatErrors([]error{serveErr, st.Close()}); err != nil {
		return err
	}

	log.Info("shutdown complete")

	return nil
}
