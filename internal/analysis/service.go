package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"codegate/internal/githost"
	"codegate/internal/lint"
	"codegate/internal/taskctx"
)

// Config tunes one Service. Zero values pick the defaults.
type Config struct {
	// FetchTimeout bounds the whole FETCHING_FILES stage.
	FetchTimeout time.Duration
	// PersistTimeout bounds the PERSISTING stage.
	PersistTimeout time.Duration
	// AnalyzeConcurrency bounds parallel per-file analysis.
	AnalyzeConcurrency int
}

const (
	defaultFetchTimeout       = 60 * time.Second
	defaultPersistTimeout     = 10 * time.Second
	defaultAnalyzeConcurrency = 4
)

func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = defaultPersistTimeout
	}
	if c.AnalyzeConcurrency <= 0 {
		c.AnalyzeConcurrency = defaultAnalyzeConcurrency
	}
	return c
}

// Service coordinates one analysis run per request: resolve context, fetch
// changed files, analyze, score, persist. It holds no cross-request state,
// so concurrent runs for the same task are independent and may each produce
// a report.
type Service struct {
	tasks     taskctx.Store
	fetcher   CommitFetcher
	analyzer  Analyzer
	creds     CredentialDecrypter
	reports   ReportStore
	snapshots SnapshotStore
	logger    *slog.Logger
	cfg       Config
}

// NewService wires a pipeline service. snapshots may be nil to disable
// archiving; a nil logger falls back to slog.Default().
func NewService(
	tasks taskctx.Store,
	fetcher CommitFetcher,
	analyzer Analyzer,
	creds CredentialDecrypter,
	reports ReportStore,
	snapshots SnapshotStore,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:     tasks,
		fetcher:   fetcher,
		analyzer:  analyzer,
		creds:     creds,
		reports:   reports,
		snapshots: snapshots,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// run is one pipeline instance.
type run struct {
	state  State
	logger *slog.Logger
}

func (r *run) to(next State) {
	r.logger.Debug("pipeline transition", "from", r.state, "to", next)
	r.state = next
}

func (r *run) fail(err error) error {
	r.logger.Warn("pipeline failed", "state", r.state, "err", err)
	r.state = StateFailed
	return err
}

// RunAnalysis executes one full pipeline run for the task and returns the
// persisted report with its defects. No report exists for a run that fails
// before persisting.
func (s *Service) RunAnalysis(ctx context.Context, taskID, userID int64) (Report, error) {
	r := &run{
		state: StateInit,
		logger: s.logger.With(
			"run_id", uuid.NewString(),
			"task_id", taskID,
		),
	}
	r.logger.Info("starting analysis run")

	// INIT -> LOADING_CONTEXT
	r.to(StateLoadingContext)
	task, err := s.tasks.FindTask(ctx, taskID, userID)
	if err != nil {
		return Report{}, r.fail(mapTaskErr(err))
	}
	if task.CommitHash == "" {
		return Report{}, r.fail(ErrValidation("task has no linked commit hash", nil))
	}
	if task.LinesOfCode <= 0 {
		return Report{}, r.fail(ErrValidation("task has no recorded lines-of-code baseline", nil))
	}

	repo, token, err := s.resolveRepository(ctx, r, task)
	if err != nil {
		return Report{}, r.fail(err)
	}

	// LOADING_CONTEXT -> FETCHING_FILES
	r.to(StateFetchingFiles)
	files, err := s.fetchFiles(ctx, r, repo, token, task.CommitHash)
	if err != nil {
		return Report{}, r.fail(err)
	}

	// FETCHING_FILES -> ANALYZING
	r.to(StateAnalyzing)
	defects := s.analyzeFiles(ctx, r, files)

	// ANALYZING -> SCORING
	r.to(StateScoring)
	score := Score(defects, task.LinesOfCode)
	decision := Decide(score)
	r.logger.Info("scored run",
		"defects", len(defects), "lines_of_code", task.LinesOfCode,
		"quality_score", score, "decision", decision)

	// SCORING -> PERSISTING
	r.to(StatePersisting)
	pctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()
	stored, err := s.reports.Create(pctx, Report{
		TaskID:       task.ID,
		CommitHash:   task.CommitHash,
		QualityScore: score,
		Decision:     decision,
	}, defects)
	if err != nil {
		return Report{}, r.fail(fmt.Errorf("persist report: %w", err))
	}

	// PERSISTING -> DONE: re-read what was written.
	final, err := s.reports.GetByID(pctx, stored.ID)
	if err != nil {
		return Report{}, r.fail(fmt.Errorf("read back report %d: %w", stored.ID, err))
	}
	r.to(StateDone)
	r.logger.Info("analysis run complete", "report_id", final.ID)

	s.archiveSnapshots(ctx, r, final.ID, files)
	return final, nil
}

// resolveRepository picks the repository linked to the task's project and
// unlocks its credential. A project with no stored credential is the public
// repository case and is fine; a credential that will not decrypt is not.
func (s *Service) resolveRepository(ctx context.Context, r *run, task taskctx.Task) (taskctx.Repository, string, error) {
	repos, err := s.tasks.ListRepositories(ctx, task.ProjectID)
	if err != nil {
		return taskctx.Repository{}, "", fmt.Errorf("list repositories: %w", err)
	}
	if len(repos) == 0 {
		return taskctx.Repository{}, "", ErrNotFound("no repository linked to the task's project", nil)
	}
	if len(repos) > 1 {
		r.logger.Debug("project has multiple repositories, using the first",
			"project_id", task.ProjectID, "repositories", len(repos))
	}
	repo := repos[0]

	token := ""
	if repo.EncryptedToken != "" {
		token, err = s.creds.Decrypt(repo.EncryptedToken)
		if err != nil {
			return taskctx.Repository{}, "", ErrValidation("repository credential cannot be decrypted", err)
		}
	}
	return repo, token, nil
}

func (s *Service) fetchFiles(ctx context.Context, r *run, repo taskctx.Repository, token, commitHash string) ([]githost.CommitFile, error) {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	ref, err := s.fetcher.RepoByID(fctx, repo.GithubRepoID, token)
	if err != nil {
		return nil, mapHostErr(err)
	}
	r.logger.Info("fetching commit files",
		"owner", ref.Owner, "repo", ref.Name, "commit", commitHash)

	files, err := s.fetcher.CommitFiles(fctx, ref.Owner, ref.Name, commitHash, token)
	if err != nil {
		return nil, mapHostErr(err)
	}
	if len(files) == 0 {
		return nil, ErrValidation("commit contains no eligible source files", nil)
	}
	return files, nil
}

// analyzeFiles runs the engine over every fetched file, in parallel up to
// the configured bound, and flattens the findings into defect candidates.
// Analysis of one file never fails the run; the engine itself degrades to
// zero findings on bad input.
func (s *Service) analyzeFiles(ctx context.Context, r *run, files []githost.CommitFile) []Defect {
	var (
		mu      sync.Mutex
		defects []Defect
	)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.AnalyzeConcurrency)
	for _, file := range files {
		g.Go(func() error {
			findings := s.analyzer.Analyze(file.Path, file.Content)
			if len(findings) == 0 {
				return nil
			}
			batch := make([]Defect, 0, len(findings))
			for _, f := range findings {
				sev := severityOf(f.Severity)
				batch = append(batch, Defect{
					RuleType:      ClassifyRule(f.RuleID),
					Message:       f.Message,
					FilePath:      file.Path,
					LineNumber:    f.Line,
					Severity:      sev,
					PenaltyPoints: Weight(sev),
				})
			}
			mu.Lock()
			defects = append(defects, batch...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Parallel analysis returns in arbitrary order; fix it for persistence.
	sort.SliceStable(defects, func(i, j int) bool {
		if defects[i].FilePath != defects[j].FilePath {
			return defects[i].FilePath < defects[j].FilePath
		}
		return defects[i].LineNumber < defects[j].LineNumber
	})
	r.logger.Info("analysis finished", "files", len(files), "findings", len(defects))
	return defects
}

// archiveSnapshots persists the analyzed sources for audit. Best-effort: a
// failed write is logged and forgotten.
func (s *Service) archiveSnapshots(ctx context.Context, r *run, reportID int64, files []githost.CommitFile) {
	if s.snapshots == nil {
		return
	}
	for _, f := range files {
		if err := s.snapshots.Put(ctx, reportID, f.Path, []byte(f.Content)); err != nil {
			r.logger.Warn("failed to archive file snapshot",
				"report_id", reportID, "file", f.Path, "err", err)
		}
	}
}

// ListReports returns a task's reports newest first, scoped to the acting
// user.
func (s *Service) ListReports(ctx context.Context, taskID, userID int64) ([]Report, error) {
	if _, err := s.tasks.FindTask(ctx, taskID, userID); err != nil {
		return nil, mapTaskErr(err)
	}
	reports, err := s.reports.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListDefects returns a report's defects ordered severity descending then
// line ascending, scoped to the acting user.
func (s *Service) ListDefects(ctx context.Context, reportID, userID int64) ([]Defect, error) {
	rep, err := s.reports.GetByID(ctx, reportID)
	if errors.Is(err, ErrReportNotFound) {
		return nil, ErrNotFound("report not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if _, err := s.tasks.FindTask(ctx, rep.TaskID, userID); err != nil {
		return nil, mapTaskErr(err)
	}
	return rep.Defects, nil
}

func severityOf(s lint.Severity) Severity {
	switch s {
	case lint.SeverityError:
		return SeverityError
	default:
		return SeverityWarning
	}
}

func mapTaskErr(err error) error {
	switch {
	case errors.Is(err, taskctx.ErrTaskNotFound):
		return ErrNotFound("task not found", err)
	case errors.Is(err, taskctx.ErrNoAccess):
		return ErrAuthorization("acting user has no access to the task", err)
	default:
		return fmt.Errorf("resolve task: %w", err)
	}
}

func mapHostErr(err error) error {
	switch {
	case errors.Is(err, githost.ErrNotFound):
		return ErrNotFound("commit or repository not found upstream", err)
	case errors.Is(err, githost.ErrAuth):
		return ErrValidation("hosting credential rejected", err)
	case errors.Is(err, githost.ErrUnavailable):
		return ErrUpstream("hosting API unavailable", err)
	default:
		return ErrUpstream("hosting API error", err)
	}
}
