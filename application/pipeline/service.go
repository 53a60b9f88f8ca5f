// Package pipeline drives a directory of videos through extraction,
// transcription, translation and optional persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"video-translator/domain/batch"
	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// AudioSource lends a transient audio artifact for the duration of fn
type AudioSource interface {
	WithAudio(ctx context.Context, video *media.VideoFile, fn func(*media.AudioArtifact) error) error
}

// Service orchestrates batch runs. The Configuration is copied at construction,
// so a run never sees later changes.
type Service struct {
	lister      media.DirectoryLister
	audio       AudioSource
	transcriber speech.Transcriber
	translator  speech.Translator
	writer      batch.ResultWriter
	reports     batch.ReportWriter
	locker      OutputLocker
	cfg         batch.Configuration
	workers     int
	output      io.Writer
	log         logrus.FieldLogger
	now         func() time.Time
	newRunID    func() string
}

// Option configures a Service
type Option func(*Service)

// OutputLocker takes exclusive use of an output directory and returns its release
type OutputLocker func(outputDir string) (unlock func() error, err error)

// WithWorkers sets how many files are processed concurrently. Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithReportWriter enables report.json in the output directory
func WithReportWriter(w batch.ReportWriter) Option {
	return func(s *Service) {
		s.reports = w
	}
}

// WithOutputLocker holds the output directory for the length of each batch that
// writes results. It is only taken once discovery has found work.
func WithOutputLocker(l OutputLocker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithLogger sets the structured logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRunID overrides the run identifier generator (for testing)
func WithRunID(gen func() string) Option {
	return func(s *Service) {
		s.newRunID = gen
	}
}

// NewService creates a new pipeline service
func NewService(
	lister media.DirectoryLister,
	audio AudioSource,
	transcriber speech.Transcriber,
	translator speech.Translator,
	writer batch.ResultWriter,
	cfg batch.Configuration,
	output io.Writer,
	opts ...Option,
) *Service {
	if output == nil {
		output = io.Discard
	}
	s := &Service{
		lister:      lister,
		audio:       audio,
		transcriber: transcriber,
		translator:  translator,
		writer:      writer,
		cfg:         cfg,
		workers:     1,
		output:      &syncWriter{w: output},
		log:         logrus.StandardLogger(),
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configuration returns the configuration this service runs with
func (s *Service) Configuration() batch.Configuration {
	return s.cfg
}

// Run processes every eligible video in inputDir. An empty outputDir is preview
// mode: results live only in the returned report.
//
// Per-file failures are recorded in the report and never returned as errors.
// The error is non-nil for batch-level problems (invalid configuration, unreadable
// input directory) and when ctx was cancelled, in which case the partial report
// is returned as well.
func (s *Service) Run(ctx context.Context, inputDir, outputDir string) (*batch.BatchReport, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	videos, err := s.Discover(inputDir)
	if err != nil {
		return nil, err
	}

	report := s.newReport(inputDir, outputDir)
	if len(videos) == 0 {
		report.NoFilesFound = true
		report.FinishedAt = s.now()
		fmt.Fprintf(s.output, "No video files found in %s\n", inputDir)
		s.log.WithField("input_dir", inputDir).Info("No video files found")
		return report, nil
	}

	return s.run(ctx, report, videos)
}

// RunFiles processes an explicit list of video paths as one batch
func (s *Service) RunFiles(ctx context.Context, paths []string, outputDir string) (*batch.BatchReport, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	videos := make([]*media.VideoFile, 0, len(paths))
	for _, p := range paths {
		v, err := media.NewVideoFile(p)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	inputDir := ""
	if len(paths) > 0 {
		inputDir = filepath.Dir(paths[0])
	}
	report := s.newReport(inputDir, outputDir)
	if len(videos) == 0 {
		report.NoFilesFound = true
		report.FinishedAt = s.now()
		return report, nil
	}
	return s.run(ctx, report, videos)
}

func (s *Service) newReport(inputDir, outputDir string) *batch.BatchReport {
	return &batch.BatchReport{
		RunID:     s.newRunID(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		StartedAt: s.now(),
	}
}

func (s *Service) run(ctx context.Context, report *batch.BatchReport, videos []*media.VideoFile) (*batch.BatchReport, error) {
	if !report.Preview() && s.locker != nil {
		unlock, err := s.locker(report.OutputDir)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	log := s.log.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"files":   len(videos),
		"workers": s.workers,
		"preview": report.Preview(),
	})
	log.Info("Batch started")
	fmt.Fprintf(s.output, "Found %d video file(s) in %s\n", len(videos), report.InputDir)
	if report.Preview() {
		fmt.Fprintln(s.output, "Preview mode: results will not be written")
	}
	fmt.Fprintln(s.output)

	outcomes := s.processAll(ctx, report.OutputDir, videos)

	for _, o := range outcomes {
		if o != nil {
			report.Outcomes = append(report.Outcomes, o)
		}
	}
	report.FinishedAt = s.now()
	report.Cancelled = ctx.Err() != nil

	if report.Cancelled {
		skipped := len(videos) - report.Len()
		fmt.Fprintf(s.output, "\nInterrupted: %d file(s) not started\n", skipped)
		log.WithField("skipped", skipped).Warn("Batch interrupted")
	}

	if !report.Preview() && s.reports != nil {
		if path, err := s.reports.WriteReport(report.OutputDir, report); err != nil {
			log.WithError(err).Error("Failed to write batch report")
		} else {
			log.WithField("path", path).Debug("Batch report written")
		}
	}

	log.WithFields(logrus.Fields{
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"duration":  report.Duration().String(),
	}).Info("Batch finished")

	if report.Cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// processAll runs the files through a bounded worker pool. Outcomes land at the
// index of their video, so the result keeps discovery order regardless of which
// worker finishes first. Unstarted files leave a nil slot.
func (s *Service) processAll(ctx context.Context, outputDir string, videos []*media.VideoFile) []*batch.PipelineOutcome {
	outcomes := make([]*batch.PipelineOutcome, len(videos))

	// in-flight files finish on their own per-call timeouts after an interrupt
	fileCtx := context.WithoutCancel(ctx)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.workers, len(videos)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.processFile(fileCtx, i, len(videos), videos[i], outputDir)
			}
		}()
	}

feed:
	for i := range videos {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// processFile walks one video through the stage machine. It never returns an
// error: every failure is recorded in the outcome.
func (s *Service) processFile(ctx context.Context, index, total int, video *media.VideoFile, outputDir string) *batch.PipelineOutcome {
	start := s.now()
	p := &progress{
		out:    s.output,
		prefix: fmt.Sprintf("[%d/%d] %s", index+1, total, video.Name),
		log:    s.log.WithField("file", video.Name),
		stage:  batch.StageDiscovered,
	}

	outcome := s.stages(ctx, p, video, outputDir)
	outcome.Duration = s.now().Sub(start)

	if outcome.Status.Failed() {
		p.printf("FAILED (%s): %s", outcome.Status, outcome.ErrorDetail)
		p.log.WithError(outcome.Err()).WithField("status", outcome.Status).Warn("File failed")
	} else {
		p.printf("done in %s", formatDuration(outcome.Duration))
		p.log.WithField("duration", outcome.Duration.String()).Info("File processed")
	}
	p.advance(batch.StageDone)
	return outcome
}

func (s *Service) stages(ctx context.Context, p *progress, video *media.VideoFile, outputDir string) *batch.PipelineOutcome {
	var transcript *speech.TranscriptResult

	p.advance(batch.StageExtracting)
	p.printf("extracting audio")
	err := s.audio.WithAudio(ctx, video, func(audio *media.AudioArtifact) error {
		p.advance(batch.StageTranscribing)
		p.printf("transcribing with %s", s.cfg.TranscriptionModel())
		t, err := s.transcriber.Transcribe(ctx, audio, s.cfg.TranscriptionModel(), s.cfg.Language())
		if err != nil {
			return asKind(err, speech.ErrTranscription)
		}
		if t == nil {
			return speech.NewTranscriptionError("transcribe "+video.Name, speech.ReasonEmptyResponse, errNoResult)
		}
		transcript = t
		return nil
	})
	if err != nil {
		stage := p.stage
		if stage == batch.StageExtracting {
			err = asKind(err, speech.ErrExtraction)
		}
		return batch.NewFailedOutcome(video.Path, stage, nil, err)
	}
	transcript.SourceFile = video.Path

	p.advance(batch.StageTranslating)
	p.printf("translating with %s", s.cfg.TranslationModel())
	translation, err := s.translator.Translate(ctx, transcript.RawText, s.cfg.TranslationModel(), s.cfg.Prompt())
	if err != nil {
		return batch.NewFailedOutcome(video.Path, batch.StageTranslating, transcript, asKind(err, speech.ErrTranslation))
	}
	if translation == nil {
		err := speech.NewTranslationError("translate "+video.Name, speech.ReasonEmptyResponse, errNoResult)
		return batch.NewFailedOutcome(video.Path, batch.StageTranslating, transcript, err)
	}
	translation.SourceFile = video.Path

	outcome := batch.NewSuccessOutcome(video.Path, transcript, translation)
	if outputDir == "" {
		return outcome
	}

	p.advance(batch.StageWriting)
	written, err := s.writer.Write(outputDir, outcome)
	if err != nil {
		outcome.MarkWriteFailed(asKind(err, speech.ErrPersistence))
		return outcome
	}
	outcome.Written = written
	for _, w := range written {
		p.printf("saved %s", w)
	}
	return outcome
}

// errNoResult marks a capability that returned neither a result nor an error
var errNoResult = errors.New("no result returned")

// asKind wraps err as the given kind unless it already is one of the known kinds
func asKind(err error, kind error) error {
	for _, k := range []error{speech.ErrExtraction, speech.ErrTranscription, speech.ErrTranslation, speech.ErrPersistence, speech.ErrConfiguration} {
		if errors.Is(err, k) {
			return err
		}
	}
	return &speech.StageError{Kind: kind, Err: err}
}

// progress tracks one file's stage and prints prefixed progress lines
type progress struct {
	out    io.Writer
	prefix string
	log    logrus.FieldLogger
	stage  batch.Stage
}

func (p *progress) advance(next batch.Stage) {
	if !p.stage.CanTransition(next) {
		p.log.WithFields(logrus.Fields{"from": p.stage, "to": next}).Error("Invalid stage transition")
	}
	p.stage = next
	p.log.WithField("stage", next).Debug("Stage changed")
}

func (p *progress) printf(format string, args ...any) {
	fmt.Fprintf(p.out, "%s: %s\n", p.prefix, fmt.Sprintf(format, args...))
}

// syncWriter serializes writes from concurrent workers
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
