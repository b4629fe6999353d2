// Package voice turns assistant replies into speech through a pluggable
// Speaker. Synthesis runs on a background worker so the conversation never
// waits on audio.
package voice

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Speaker synthesizes and plays one utterance.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Transcriber converts captured audio into text for a user turn.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

const (
	queueSize    = 8
	drainTimeout = 5 * time.Second
	speakTimeout = 30 * time.Second
)

// Pipeline queues utterances for a Speaker. The queue is bounded; when the
// speaker falls behind, new utterances are dropped rather than stalling the
// chat loop.
type Pipeline struct {
	speaker Speaker
	in      chan string
	done    chan struct{}
	logger  *zap.Logger
}

// NewPipeline starts the synthesis worker.
func NewPipeline(speaker Speaker, log *zap.Logger) *Pipeline {
	p := &Pipeline{
		speaker: speaker,
		in:      make(chan string, queueSize),
		done:    make(chan struct{}),
		logger:  log,
	}
	go p.run()
	return p
}

func (p *Pipeline) run() {
	defer close(p.done)
	for text := range p.in {
		ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
		if err := p.speaker.Speak(ctx, text); err != nil {
			p.logger.Warn("speech synthesis failed", zap.Error(err))
		}
		cancel()
	}
}

// Enqueue schedules the text for synthesis. It never blocks; the utterance
// is dropped when the queue is full.
func (p *Pipeline) Enqueue(text string) {
	clean := CleanForSpeech(text)
	if clean == "" {
		return
	}
	select {
	case p.in <- clean:
	default:
		p.logger.Warn("speech queue full, dropping utterance")
	}
}

// Close stops accepting utterances and waits for the queue to drain, up to
// the drain timeout.
func (p *Pipeline) Close() {
	close(p.in)
	select {
	case <-p.done:
	case <-time.After(drainTimeout):
		p.logger.Warn("speech queue drain timed out")
	}
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	emphasisRe   = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
)

// CleanForSpeech strips markdown so the synthesizer does not read markup
// aloud.
func CleanForSpeech(text string) string {
	text = codeBlockRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = emphasisRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = bulletRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
