package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	echoapi "github.com/trezcool/masomo-studio/apps/api/echo"
	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/draft"
	"github.com/trezcool/masomo-studio/core/explanation"
	logsvc "github.com/trezcool/masomo-studio/services/logger"
	"github.com/trezcool/masomo-studio/storage/cache/ristretto"
	"github.com/trezcool/masomo-studio/storage/drafts/bigcache"
	"github.com/trezcool/masomo-studio/storage/drafts/inmem"
	"github.com/trezcool/masomo-studio/storage/drafts/pebble"
	"github.com/trezcool/masomo-studio/storage/drafts/redis"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger, err := newLogger("API", conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	storageLogger, err := newLogger("STORAGE", conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}

	// set up storage
	drafts, err := newDraftsBackend(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up drafts backend: %v", err), err)
	}
	defer func() {
		if err = drafts.Close(context.Background()); err != nil {
			storageLogger.Error("Failed to close drafts backend", err)
		}
	}()

	var cache explanation.BlockCache = explanation.NopCache{}
	if conf.Cache.Enabled {
		rc, cErr := ristrettocache.New(ristrettocache.Config{NumCounters: conf.Cache.NumCounters, MaxCost: conf.Cache.MaxCost})
		if cErr != nil {
			logger.Fatal(fmt.Sprintf("setting up block cache: %v", cErr), cErr)
		}
		defer rc.Close()
		cache = rc
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	explanation.InitValidators(validate, translator)

	// set up services
	explSvc, err := explanation.NewService(explanation.Deps{
		Conf:     conf,
		Logger:   logger,
		Validate: validate,
		Drafts:   drafts,
		Cache:    cache,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up explanation service: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("drafts").Set(conf.Drafts.Backend)
	expvar.NewString("codec").Set(string(explSvc.DefaultFormat()))

	debugSrv := &http.Server{Addr: conf.Server.DebugHost, Handler: http.DefaultServeMux}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			ExplanationSvc: explSvc,
			Translator:     translator,
		},
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return serveDebug(debugSrv) })
	go server.Start()

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		select {
		case sErr := <-server.Errors():
			return errors.Wrap(sErr, "server error")

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		case <-ctx.Done():
			// debug server failed
		}

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		_ = debugSrv.Shutdown(sctx)

		// asking listener to shutdown and shed load
		if sErr := server.Shutdown(sctx); sErr != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", sErr), sErr)

			if sErr = server.Close(); sErr != nil {
				return errors.Wrap(sErr, "could not force stop server")
			}
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error(err.Error(), err)
		os.Exit(1)
	}
}

// serveDebug fails only when the debug listener does; a shut down server is not an error.
func serveDebug(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "debug server error")
	}
	return nil
}

func newLogger(prefix string, conf *core.Config) (core.Logger, error) {
	if conf.Log.Format == "json" {
		return logsvc.NewZapLogger(prefix, conf)
	}
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger, nil
}

func newDraftsBackend(ctx context.Context, conf *core.Config) (draft.Backend, error) {
	switch conf.Drafts.Backend {
	case "", "memory":
		return inmemdrafts.New(), nil
	case "bigcache":
		return bigcachedrafts.New(bigcachedrafts.Config{LifeWindow: conf.Drafts.TTL})
	case "redis":
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return redisdrafts.Dial(dctx, conf.Drafts.RedisAddr, conf.Drafts.RedisPassword, conf.Drafts.RedisDB)
	case "pebble":
		return pebbledrafts.Open(conf.Drafts.PebbleDir)
	default:
		return nil, errors.Errorf("unknown drafts backend %q", conf.Drafts.Backend)
	}
}
