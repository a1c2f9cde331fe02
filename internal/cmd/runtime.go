package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/gate"
	"github.com/promptgate/promptgate/internal/history"
	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/workflow"
)

// runtime wires the shared collaborators every subcommand needs: config,
// logger, inference client, gate policy, and the optional history store.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	client *llm.Client
	store  *history.Store
	policy gate.Policy
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagModel != "" {
		cfg.Endpoint.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.Endpoint.BaseURL = flagBaseURL
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Gate.Threshold = flagThreshold
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(llm.Config{
		BaseURL:     cfg.Endpoint.BaseURL,
		APIKey:      cfg.Endpoint.APIKey,
		Model:       cfg.Endpoint.Model,
		Temperature: cfg.Endpoint.Temperature,
		Timeout:     cfg.Timeout(),
	}, logger)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		client: client,
		policy: cfg.GatePolicy(),
	}

	if !cfg.History.Disabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		store, err := history.Open(path)
		if err != nil {
			// History is best-effort observability; a broken store must not
			// block the workflow itself.
			logger.Warn("history store unavailable", zap.Error(err))
		} else {
			rt.store = store
			client.SetRecorder(store)
		}
	}

	return rt, nil
}

func (r *runtime) failurePolicy() workflow.FailurePolicy {
	return r.cfg.FailurePolicy()
}

func (r *runtime) close() {
	if r.store != nil {
		_ = r.store.Close()
	}
	_ = r.logger.Sync()
}
