package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/bastion/pkg/api"
	"github.com/cuemby/bastion/pkg/config"
	"github.com/cuemby/bastion/pkg/enforcer"
	"github.com/cuemby/bastion/pkg/events"
	"github.com/cuemby/bastion/pkg/hooks"
	"github.com/cuemby/bastion/pkg/lineage"
	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/metrics"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/storage"
	"github.com/cuemby/bastion/pkg/watcher"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Bastion enforcement daemon",
	Long: `Run the enforcement daemon: load the policy document, replay the
container registry, attach the lineage event sources, and serve the
control API.`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().String("config", "/etc/bastion/policy.yaml", "Policy document path")
	runCmd.Flags().String("data-dir", "/var/lib/bastion", "Registry data directory")
	runCmd.Flags().String("metrics-addr", "", "Prometheus listen address (e.g. :9878, empty = disabled)")
	runCmd.Flags().String("containerd-socket", "", "Containerd socket for the exit reaper (empty = default)")
	runCmd.Flags().Bool("no-reaper", false, "Disable the containerd exit reaper")
	runCmd.Flags().Duration("scan-interval", hooks.DefaultScanInterval, "Lineage /proc scan interval")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	containerdSocket, _ := cmd.Flags().GetString("containerd-socket")
	noReaper, _ := cmd.Flags().GetBool("no-reaper")
	scanInterval, _ := cmd.Flags().GetDuration("scan-interval")
	socketPath, _ := rootCmd.PersistentFlags().GetString("socket")

	logger := log.WithComponent("daemon")

	// Policy document and shared state.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st := state.NewWithCaps(cfg.Caps())
	if err := cfg.Apply(st); err != nil {
		return fmt.Errorf("apply policy: %w", err)
	}

	// Registry: reopen and replay before any event source attaches, so
	// containers that outlived a restart keep their registration. Only
	// container rows are replayed; process rows are not.
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListContainers()
	if err != nil {
		return fmt.Errorf("replay registry: %w", err)
	}
	for _, rec := range recs {
		if err := st.RegisterContainer(rec.ID, rec.Policy); err != nil {
			return fmt.Errorf("replay container %d: %w", rec.ID, err)
		}
	}
	if len(recs) > 0 {
		logger.Info().Int("containers", len(recs)).Msg("Registry replayed")
	}

	// Trace broker, feeding the debug log.
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	traceSub := broker.Subscribe()
	go func() {
		for trace := range traceSub {
			logger.Debug().
				Str("trace", string(trace.Type)).
				Str("hook", trace.Hook).
				Int32("pid", trace.PID).
				Str("verdict", trace.Verdict.String()).
				Msg(trace.Message)
		}
	}()

	enf := enforcer.New(st, lineage.NewTracker(st), broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Control API.
	apiSrv := api.NewServer(st, store, enf)
	if err := apiSrv.Start(socketPath); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := apiSrv.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Control API shutdown failed")
		}
	}()

	// Metrics.
	collector := metrics.NewCollector(st)
	collector.Start()
	defer collector.Stop()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			logger.Info().Str("addr", metricsAddr).Msg("Metrics listening")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Lineage event sources. The fork stream needs CAP_NET_ADMIN; if it
	// dies the scanner still covers, slower.
	runner := hooks.NewRunner(enf,
		hooks.NewProcConnector(),
		hooks.NewProcScanner(scanInterval),
	)
	go func() {
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Lineage runner stopped")
		}
	}()

	// Exit reaper.
	if !noReaper {
		reaper := watcher.New(st, store, containerdSocket)
		go func() {
			if err := reaper.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("Exit reaper stopped; reap through the control API")
			}
		}()
	}

	logger.Info().
		Str("config", configPath).
		Str("data_dir", dataDir).
		Msg("Bastion daemon started")

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	cancel()
	return nil
}
