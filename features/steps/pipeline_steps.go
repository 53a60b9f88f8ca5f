//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-translator/cmd"
	"video-translator/domain/batch"
	"video-translator/domain/media"
	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/filesystem"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
)

// pipelineContext holds test state for batch scenarios
type pipelineContext struct {
	tempDir   string
	inputDir  string
	outputDir string
	cfg       *config.Config

	lister      *stubLister
	audio       *stubAudio
	transcriber *stubTranscriber
	translator  *stubTranslator

	output   *bytes.Buffer
	report   *batch.BatchReport
	previous *batch.BatchReport
	err      error
}

var SharedPipelineContext = &pipelineContext{}

// --- Stubs ---

type stubLister struct {
	files []string
}

func (s *stubLister) ListFiles(dir string) ([]string, error) {
	return s.files, nil
}

type stubAudio struct {
	mu        sync.Mutex
	failFor   map[string]bool
	extracted int
	released  int
}

func (s *stubAudio) WithAudio(ctx context.Context, video *media.VideoFile, fn func(*media.AudioArtifact) error) error {
	if s.failFor[video.Name] {
		return speech.NewExtractionError("extract "+video.Name, errors.New("no audio stream"))
	}
	s.mu.Lock()
	s.extracted++
	s.mu.Unlock()

	artifact := media.NewAudioArtifactWithRelease(video.Stem()+".wav", video.Path, func(string) error {
		s.mu.Lock()
		s.released++
		s.mu.Unlock()
		return nil
	})
	defer artifact.Release()
	return fn(artifact)
}

type stubTranscriber struct {
	mu    sync.Mutex
	text  string
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio *media.AudioArtifact, model, language string) (*speech.TranscriptResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &speech.TranscriptResult{SourceFile: audio.SourcePath, RawText: s.text, ModelUsed: model}, nil
}

type stubTranslator struct {
	mu    sync.Mutex
	text  string
	calls int
}

func (s *stubTranslator) Translate(ctx context.Context, text, model string, prompt speech.PromptTemplate) (*speech.TranslationResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &speech.TranslationResult{TranslatedText: s.text, ModelUsed: model, PromptUsed: prompt.String()}, nil
}

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedPipelineContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "pipeline-test-*")
		if err != nil {
			return c, err
		}
		*testCtx = pipelineContext{
			tempDir:     tempDir,
			inputDir:    filepath.Join(tempDir, "videos"),
			cfg:         config.Default(),
			lister:      &stubLister{},
			audio:       &stubAudio{failFor: make(map[string]bool)},
			transcriber: &stubTranscriber{text: "hello world"},
			translator:  &stubTranslator{text: "hola mundo"},
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	// Given
	ctx.Step(`^an input directory containing "([^"]*)"$`, testCtx.anInputDirectoryContaining)
	ctx.Step(`^the transcription service returns "([^"]*)"$`, testCtx.theTranscriptionServiceReturns)
	ctx.Step(`^the translation service returns "([^"]*)"$`, testCtx.theTranslationServiceReturns)
	ctx.Step(`^audio extraction fails for "([^"]*)"$`, testCtx.audioExtractionFailsFor)
	ctx.Step(`^the translation prompt file contains "([^"]*)"$`, testCtx.theTranslationPromptFileContains)

	// When
	ctx.Step(`^I run the batch in preview mode$`, testCtx.iRunTheBatchInPreviewMode)
	ctx.Step(`^I run the batch again in preview mode$`, testCtx.iRunTheBatchAgainInPreviewMode)
	ctx.Step(`^I run the batch with an output directory$`, testCtx.iRunTheBatchWithAnOutputDirectory)
	ctx.Step(`^I run the batch with (\d+) workers$`, testCtx.iRunTheBatchWithWorkers)

	// Then
	ctx.Step(`^the batch should succeed$`, testCtx.theBatchShouldSucceed)
	ctx.Step(`^the batch should fail with a configuration error$`, testCtx.theBatchShouldFailWithAConfigurationError)
	ctx.Step(`^the report should contain (\d+) outcomes?$`, testCtx.theReportShouldContainOutcomes)
	ctx.Step(`^the outcomes should be in order "([^"]*)"$`, testCtx.theOutcomesShouldBeInOrder)
	ctx.Step(`^"([^"]*)" should have status "([^"]*)"$`, testCtx.shouldHaveStatus)
	ctx.Step(`^the output file "([^"]*)" should contain "([^"]*)"$`, testCtx.theOutputFileShouldContain)
	ctx.Step(`^no result files should be written$`, testCtx.noResultFilesShouldBeWritten)
	ctx.Step(`^no API calls should be made$`, testCtx.noAPICallsShouldBeMade)
	ctx.Step(`^both runs should produce the same results$`, testCtx.bothRunsShouldProduceTheSameResults)
	ctx.Step(`^every extracted audio file should be released$`, testCtx.everyExtractedAudioFileShouldBeReleased)
	ctx.Step(`^the batch output should mention "([^"]*)"$`, testCtx.theBatchOutputShouldMention)
}

// --- Given ---

func (p *pipelineContext) anInputDirectoryContaining(list string) error {
	p.lister.files = splitList(list)
	return nil
}

func (p *pipelineContext) theTranscriptionServiceReturns(text string) error {
	p.transcriber.text = text
	return nil
}

func (p *pipelineContext) theTranslationServiceReturns(text string) error {
	p.translator.text = text
	return nil
}

func (p *pipelineContext) audioExtractionFailsFor(name string) error {
	p.audio.failFor[name] = true
	return nil
}

func (p *pipelineContext) theTranslationPromptFileContains(prompt string) error {
	path := filepath.Join(p.tempDir, "prompt.txt")
	if err := os.WriteFile(path, []byte(prompt), 0644); err != nil {
		return err
	}
	p.cfg.PromptFile = path
	return nil
}

// --- When ---

func (p *pipelineContext) deps() cmd.RunDependencies {
	writer := filesystem.NewResultWriter()
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	return cmd.RunDependencies{
		Lister:      p.lister,
		Audio:       p.audio,
		Transcriber: p.transcriber,
		Translator:  p.translator,
		Writer:      writer,
		Reports:     writer,
		Logger:      quiet,
	}
}

func (p *pipelineContext) run(input cmd.RunInput) error {
	input.InputDir = p.inputDir
	p.output.Reset()
	p.report, p.err = cmd.RunWithDependencies(context.Background(), p.cfg, p.deps(), input, p.output)
	return nil
}

func (p *pipelineContext) iRunTheBatchInPreviewMode() error {
	return p.run(cmd.RunInput{Preview: true})
}

func (p *pipelineContext) iRunTheBatchAgainInPreviewMode() error {
	p.previous = p.report
	return p.run(cmd.RunInput{Preview: true})
}

func (p *pipelineContext) iRunTheBatchWithAnOutputDirectory() error {
	p.outputDir = filepath.Join(p.tempDir, "results")
	return p.run(cmd.RunInput{OutputDir: p.outputDir})
}

func (p *pipelineContext) iRunTheBatchWithWorkers(workers int) error {
	return p.run(cmd.RunInput{Preview: true, Workers: workers})
}

// --- Then ---

func (p *pipelineContext) theBatchShouldSucceed() error {
	if p.err != nil {
		return fmt.Errorf("expected batch to succeed, got %v\nOutput: %s", p.err, p.output.String())
	}
	if p.report == nil {
		return fmt.Errorf("no report returned")
	}
	return nil
}

func (p *pipelineContext) theBatchShouldFailWithAConfigurationError() error {
	if !errors.Is(p.err, speech.ErrConfiguration) {
		return fmt.Errorf("expected a configuration error, got %v", p.err)
	}
	return nil
}

func (p *pipelineContext) theReportShouldContainOutcomes(n int) error {
	if p.report == nil {
		return fmt.Errorf("no report returned")
	}
	if p.report.Len() != n {
		return fmt.Errorf("expected %d outcomes, got %d", n, p.report.Len())
	}
	return nil
}

func (p *pipelineContext) theOutcomesShouldBeInOrder(list string) error {
	want := splitList(list)
	if p.report == nil || p.report.Len() != len(want) {
		return fmt.Errorf("expected %d outcomes, got %v", len(want), p.report)
	}
	for i, o := range p.report.Outcomes {
		if got := filepath.Base(o.SourceFile); got != want[i] {
			return fmt.Errorf("outcome %d is %q, want %q", i, got, want[i])
		}
	}
	return nil
}

func (p *pipelineContext) outcomeFor(name string) (*batch.PipelineOutcome, error) {
	if p.report == nil {
		return nil, fmt.Errorf("no report returned")
	}
	for _, o := range p.report.Outcomes {
		if filepath.Base(o.SourceFile) == name {
			return o, nil
		}
	}
	return nil, fmt.Errorf("no outcome for %q", name)
}

func (p *pipelineContext) shouldHaveStatus(name, status string) error {
	o, err := p.outcomeFor(name)
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected %s to have status %q, got %q (%s)", name, status, o.Status, o.ErrorDetail)
	}
	if o.Status.Failed() && (o.Translation != nil || len(o.Written) > 0) {
		return fmt.Errorf("failed outcome for %s carries results", name)
	}
	return nil
}

func (p *pipelineContext) theOutputFileShouldContain(name, expected string) error {
	data, err := os.ReadFile(filepath.Join(p.outputDir, name))
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if string(data) != expected {
		return fmt.Errorf("expected %s to contain %q, got %q", name, expected, data)
	}
	return nil
}

func (p *pipelineContext) noResultFilesShouldBeWritten() error {
	for _, o := range p.report.Outcomes {
		if len(o.Written) > 0 {
			return fmt.Errorf("preview wrote %v", o.Written)
		}
	}
	entries, _ := filepath.Glob(filepath.Join(p.tempDir, "*", "*.txt"))
	if len(entries) > 0 {
		return fmt.Errorf("unexpected files on disk: %v", entries)
	}
	return nil
}

func (p *pipelineContext) noAPICallsShouldBeMade() error {
	if p.transcriber.calls != 0 || p.translator.calls != 0 {
		return fmt.Errorf("expected no API calls, got %d transcription and %d translation", p.transcriber.calls, p.translator.calls)
	}
	if p.audio.extracted != 0 {
		return fmt.Errorf("expected no audio extraction, got %d", p.audio.extracted)
	}
	return nil
}

func (p *pipelineContext) bothRunsShouldProduceTheSameResults() error {
	if p.previous == nil || p.report == nil {
		return fmt.Errorf("expected two reports")
	}
	if p.previous.Len() != p.report.Len() {
		return fmt.Errorf("outcome counts differ: %d vs %d", p.previous.Len(), p.report.Len())
	}
	for i := range p.report.Outcomes {
		a, b := p.previous.Outcomes[i], p.report.Outcomes[i]
		if a.SourceFile != b.SourceFile || a.Status != b.Status {
			return fmt.Errorf("outcome %d differs: %s/%s vs %s/%s", i, a.SourceFile, a.Status, b.SourceFile, b.Status)
		}
		if a.Transcript.RawText != b.Transcript.RawText || a.Translation.TranslatedText != b.Translation.TranslatedText {
			return fmt.Errorf("results for %s differ between runs", a.SourceFile)
		}
	}
	return nil
}

func (p *pipelineContext) everyExtractedAudioFileShouldBeReleased() error {
	if p.audio.released != p.audio.extracted {
		return fmt.Errorf("extracted %d audio file(s) but released %d", p.audio.extracted, p.audio.released)
	}
	return nil
}

func (p *pipelineContext) theBatchOutputShouldMention(expected string) error {
	if !strings.Contains(p.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, p.output.String())
	}
	return nil
}

func splitList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
