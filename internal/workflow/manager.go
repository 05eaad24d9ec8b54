package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"newsreel/internal/config"
	"newsreel/internal/queue"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// Manager drives queued render jobs through the pipeline stages. It polls the
// queue for items whose status matches a configured stage start status,
// transitions them to the stage's processing status, and runs the handler with
// heartbeat and cancellation supervision.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	stages       []pipelineStage
	statusOrder  []queue.Status
	stageByStart map[queue.Status]pipelineStage

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Estimator   stage.Handler
	Synthesizer stage.Handler
	Aligner     stage.Handler
	Planner     stage.Handler
	Compositor  stage.Handler
	Organizer   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the pipeline in execution order. Every stage is
// keyed by its start status so an interrupted job resumes exactly where the
// rollback transition left it.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stages = []pipelineStage{
		{name: "estimator", handler: set.Estimator, startStatus: queue.StatusPending, processingStatus: queue.StatusEstimating, doneStatus: queue.StatusScriptReady},
		{name: "synthesizer", handler: set.Synthesizer, startStatus: queue.StatusScriptReady, processingStatus: queue.StatusSynthesizing, doneStatus: queue.StatusAudioReady},
		{name: "aligner", handler: set.Aligner, startStatus: queue.StatusAudioReady, processingStatus: queue.StatusAligning, doneStatus: queue.StatusSubtitlesReady},
		{name: "planner", handler: set.Planner, startStatus: queue.StatusSubtitlesReady, processingStatus: queue.StatusPlanning, doneStatus: queue.StatusScenesReady},
		{name: "compositor", handler: set.Compositor, startStatus: queue.StatusScenesReady, processingStatus: queue.StatusRendering, doneStatus: queue.StatusRendered},
		{name: "organizer", handler: set.Organizer, startStatus: queue.StatusRendered, processingStatus: queue.StatusFinalizing, doneStatus: queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.statusOrder = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}

func withStageContext(ctx context.Context, stageName string, item *queue.Item, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if item != nil {
		ctx = services.WithJobID(ctx, item.ID)
	}
	if stageName != "" {
		ctx = services.WithStage(ctx, stageName)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}

func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
