package campaign

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/farxc/prestacao-contas/internal/campaign/converter"
	"github.com/farxc/prestacao-contas/internal/campaign/downloader"
	"github.com/farxc/prestacao-contas/internal/campaign/extract"
	"github.com/farxc/prestacao-contas/internal/campaign/files"
	"github.com/farxc/prestacao-contas/internal/campaign/load"
	"github.com/farxc/prestacao-contas/internal/campaign/normalize"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/google/uuid"
)

// State is a step of an ingestion run.
type State string

const (
	StateIdle        State = "Idle"
	StateDownloading State = "Downloading"
	StateParsing     State = "Parsing"
	StateNormalizing State = "Normalizing"
	StateExtracting  State = "Extracting"
	StateSchemaReady State = "SchemaReady"
	StateLoading     State = "Loading"
	StateReady       State = "Ready"
	StateFailed      State = "Failed"
)

// Run modes.
const (
	ModeForce = "force"
	ModeReuse = "reuse"
)

// StageError is returned by Run when a stage fails.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Options struct {
	SourcePath      string
	SourceURL       string
	Download        bool
	DownloadTimeout time.Duration
	Mode            string
	AmountPolicy    normalize.AmountPolicy
	Trigger         string
}

// Report summarizes a finished run.
type Report struct {
	RunID         string            `json:"run_id"`
	Skipped       bool              `json:"skipped"`
	RowsRead      int64             `json:"rows_read"`
	MalformedRows int64             `json:"malformed_rows"`
	SkippedRows   int64             `json:"skipped_rows"`
	InvalidDates  int64             `json:"invalid_dates"`
	Counts        store.TableCounts `json:"counts"`
	Duration      time.Duration     `json:"duration_ns"`
}

type Pipeline struct {
	storage   *store.Storage
	appLogger *logger.Logger

	run sync.Mutex

	mu    sync.RWMutex
	state State
}

func NewPipeline(storage *store.Storage, appLogger *logger.Logger) *Pipeline {
	return &Pipeline{
		storage:   storage,
		appLogger: appLogger,
		state:     StateIdle,
	}
}

// State returns the state of the current or last run.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.appLogger.Debug("Pipeline", "State changed: state=%s", s)
}

// Run performs one ingestion. Runs are serialized; a second caller waits for
// the first to finish. On failure the stored tables keep their previous
// contents and the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	const component = "Pipeline"

	p.run.Lock()
	defer p.run.Unlock()

	if opts.Mode == "" {
		opts.Mode = ModeForce
	}
	if opts.Trigger == "" {
		opts.Trigger = store.TriggerTypeManual
	}

	started := time.Now().UTC()
	run := &store.IngestionRun{
		ID:          uuid.NewString(),
		SourceFile:  opts.SourcePath,
		Mode:        opts.Mode,
		TriggerType: opts.Trigger,
		StartedAt:   started,
	}
	report := &Report{RunID: run.ID}

	p.setState(StateIdle)
	p.appLogger.Info(component, "Starting ingestion: id=%s source=%s mode=%s", run.ID, opts.SourcePath, opts.Mode)

	fail := func(stage State, err error) (*Report, error) {
		p.setState(StateFailed)
		p.recordFailure(ctx, run, stage, err, report)
		p.appLogger.Error(component, "Ingestion failed: id=%s stage=%s error=%v", run.ID, stage, err)
		return report, &StageError{Stage: stage, Err: err}
	}

	if opts.Mode == ModeReuse {
		reusable, err := p.reusable(ctx)
		if err != nil {
			return fail(StateIdle, err)
		}
		if reusable {
			report.Skipped = true
			p.recordSkip(ctx, run)
			p.setState(StateReady)
			p.appLogger.Info(component, "Reusing existing tables: id=%s", run.ID)
			return report, nil
		}
	}

	if opts.SourceURL != "" && (opts.Download || !fileExists(opts.SourcePath)) {
		p.setState(StateDownloading)
		dctx := ctx
		if opts.DownloadTimeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(ctx, opts.DownloadTimeout)
			defer cancel()
		}
		if _, err := downloader.FetchData(dctx, opts.SourceURL, opts.SourcePath, p.appLogger); err != nil {
			return fail(StateDownloading, fmt.Errorf("%w: %v", files.ErrSourceUnavailable, err))
		}
	}

	p.setState(StateParsing)
	frame, err := files.ReadFrame(opts.SourcePath)
	if err != nil {
		return fail(StateParsing, err)
	}
	for _, me := range frame.Malformed {
		p.appLogger.Debug(component, "Skipped %v", me)
	}
	report.RowsRead = int64(frame.RowsRead())
	report.MalformedRows = int64(len(frame.Malformed))
	p.appLogger.Info(component, "Source parsed: rows=%d malformed=%d", report.RowsRead, report.MalformedRows)

	if err := ctx.Err(); err != nil {
		return fail(StateParsing, err)
	}

	p.setState(StateNormalizing)
	normalized, err := normalize.NewNormalizer(opts.AmountPolicy, p.appLogger).Normalize(converter.FrameToRawExpenses(frame))
	if err != nil {
		return fail(StateNormalizing, err)
	}
	report.SkippedRows = int64(len(normalized.Skipped))
	report.InvalidDates = int64(normalized.InvalidDates)
	if len(normalized.Expenses) == 0 {
		return fail(StateNormalizing, fmt.Errorf("%w: every row was skipped", files.ErrEmptySource))
	}

	p.setState(StateExtracting)
	entities := extract.Entities(normalized.Expenses)
	report.Counts = entities.Counts()
	if report.Counts.Total() == 0 {
		return fail(StateExtracting, fmt.Errorf("%w: no row carries a key", files.ErrEmptySource))
	}

	if err := p.storage.Schema.Ensure(ctx); err != nil {
		return fail(StateSchemaReady, err)
	}
	p.setState(StateSchemaReady)

	p.setState(StateLoading)
	run.Status = store.StatusSuccess
	run.RowsRead = report.RowsRead
	run.MalformedRows = report.MalformedRows
	run.SkippedRows = report.SkippedRows
	run.TableCounts = report.Counts
	run.FinishedAt = time.Now().UTC()
	if err := load.LoadEntities(ctx, entities, run, p.storage, p.appLogger); err != nil {
		return fail(StateLoading, err)
	}

	report.Duration = run.FinishedAt.Sub(started)
	p.setState(StateReady)
	p.appLogger.Info(component, "Ingestion completed: id=%s rows=%d duration=%s", run.ID, report.Counts.Total(), report.Duration)
	return report, nil
}

// reusable reports whether a previous successful run left populated tables.
func (p *Pipeline) reusable(ctx context.Context) (bool, error) {
	if err := p.storage.Schema.EnsureLedger(ctx); err != nil {
		return false, err
	}
	if _, err := p.storage.IngestionHistory.LatestSuccessful(ctx); err != nil {
		if errors.Is(err, store.ErrNoRuns) {
			return false, nil
		}
		return false, err
	}

	exists, err := p.storage.Schema.Exists(ctx)
	if err != nil || !exists {
		return false, err
	}
	counts, err := p.storage.Schema.Counts(ctx)
	if err != nil {
		return false, err
	}
	return counts.Total() > 0, nil
}

func (p *Pipeline) recordFailure(ctx context.Context, run *store.IngestionRun, stage State, cause error, report *Report) {
	stageName := string(stage)
	msg := cause.Error()
	run.Status = store.StatusFailure
	run.FailedStage = &stageName
	run.Error = &msg
	run.RowsRead = report.RowsRead
	run.MalformedRows = report.MalformedRows
	run.SkippedRows = report.SkippedRows
	run.TableCounts = store.TableCounts{}
	run.FinishedAt = time.Now().UTC()
	p.record(ctx, run)
}

func (p *Pipeline) recordSkip(ctx context.Context, run *store.IngestionRun) {
	run.Status = store.StatusSkipped
	run.FinishedAt = time.Now().UTC()
	p.record(ctx, run)
}

// record writes run outside of a load, ignoring cancellation of ctx.
func (p *Pipeline) record(ctx context.Context, run *store.IngestionRun) {
	const component = "Pipeline"

	ctx = context.WithoutCancel(ctx)
	if err := p.storage.Schema.EnsureLedger(ctx); err != nil {
		p.appLogger.Error(component, "Failed to create run ledger: id=%s error=%v", run.ID, err)
		return
	}
	if err := p.storage.IngestionHistory.InsertIngestionRun(ctx, run); err != nil {
		p.appLogger.Error(component, "Failed to record run: id=%s status=%s error=%v", run.ID, run.Status, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
