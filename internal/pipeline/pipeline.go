// Package pipeline coordinates the full ask flow: bootstrap, cache
// lookup, retrieval, threshold gating, re-ranking, context assembly,
// generation, confidence scoring and cache admission.
package pipeline

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"document-qa/internal/cache"
	"document-qa/internal/chunker"
	"document-qa/internal/config"
	"document-qa/internal/contextbuilder"
	"document-qa/internal/generator"
	"document-qa/internal/models"
	"document-qa/internal/vectorstore"
)

const (
	// DefaultTopK candidates are retrieved per question.
	DefaultTopK = 5

	// contextTopN re-ranked candidates ground the answer; the top
	// confidenceTopN of the same sorted set drive the confidence score.
	// The 3-vs-2 asymmetry is intentional.
	contextTopN    = 3
	confidenceTopN = 2
)

// Loader supplies documents for the one-time bootstrap.
type Loader interface {
	Load(ctx context.Context) ([]models.Document, error)
}

// Pipeline answers questions grounded in the indexed corpus. A Pipeline
// is safe for concurrent use once constructed.
type Pipeline struct {
	store     vectorstore.Store
	generator generator.Generator
	cache     *cache.AnswerCache
	loader    Loader
	chunker   *chunker.Chunker

	topK               int
	distanceThreshold  float64
	admissionThreshold float64

	ready atomic.Bool
}

// New builds the pipeline and, if the store is empty, runs the full
// ingestion path (load, chunk, index) before any query is served. A
// failed bootstrap is a construction-time error: the pipeline cannot
// serve traffic from an empty index it failed to fill.
func New(ctx context.Context, store vectorstore.Store, gen generator.Generator, ldr Loader, cfg *config.Config) (*Pipeline, error) {
	answerCache, err := cache.New(cfg.Cache.Capacity)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:              store,
		generator:          gen,
		cache:              answerCache,
		loader:             ldr,
		chunker:            chunker.New(&cfg.Chunker),
		topK:               cfg.Retrieval.TopK,
		distanceThreshold:  cfg.Retrieval.DistanceThreshold,
		admissionThreshold: cfg.Cache.AdmissionThreshold,
	}
	if p.topK <= 0 {
		p.topK = DefaultTopK
	}

	if store.IsEmpty(ctx) {
		log.Info().Msg("Vector store empty, running bootstrap ingestion")
		if err := p.bootstrap(ctx); err != nil {
			return nil, err
		}
	}
	p.ready.Store(true)
	return p, nil
}

func (p *Pipeline) bootstrap(ctx context.Context) error {
	documents, err := p.loader.Load(ctx)
	if err != nil {
		return err
	}
	chunks := p.chunker.ChunkDocuments(documents)
	log.Info().Int("documents", len(documents)).Int("chunks", len(chunks)).Msg("Bootstrap chunking done")
	return p.store.Index(ctx, chunks)
}

// Ready reports whether bootstrap has completed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Ask answers one question. It never fails: every internal error path
// collapses into the insufficient-information fallback, so callers only
// ever see an answer and a confidence.
func (p *Pipeline) Ask(ctx context.Context, question string) models.Response {
	return p.AskTopK(ctx, question, p.topK)
}

// AskTopK is Ask with an explicit retrieval depth.
func (p *Pipeline) AskTopK(ctx context.Context, question string, topK int) (resp models.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered in ask flow")
			resp = fallback()
		}
	}()

	if !p.ready.Load() {
		log.Warn().Msg("Query before bootstrap completed")
		return fallback()
	}

	if cached, ok := p.cache.Get(question); ok {
		log.Debug().Str("question", question).Msg("Cache hit")
		return cached
	}

	hits, err := p.store.Query(ctx, question, topK, nil)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		return fallback()
	}
	if len(hits) == 0 {
		return fallback()
	}

	// The index's ordering is not trusted; re-sort before gating.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if hits[0].Distance > p.distanceThreshold {
		log.Debug().Float64("min_distance", hits[0].Distance).Msg("Best match over distance threshold")
		return fallback()
	}

	contextHits := hits
	if len(contextHits) > contextTopN {
		contextHits = contextHits[:contextTopN]
	}
	contextText := contextbuilder.Build(contextHits)
	log.Debug().Msg("Grounding context:\n" + contextbuilder.BuildDetailed(contextHits))

	answer, err := p.generator.Generate(ctx, question, contextText)
	if err != nil {
		log.Error().Err(err).Msg("Generation failed")
		return fallback()
	}

	resp = models.Response{
		Answer:     answer,
		Confidence: confidence(hits),
	}

	if resp.Confidence > p.admissionThreshold {
		p.cache.Put(question, resp)
	}
	return resp
}

// confidence maps the mean cosine distance of the top candidates to
// [0,1]. A heuristic tuned against one embedding model, not a calibrated
// probability.
func confidence(hits []models.Hit) float64 {
	n := confidenceTopN
	if len(hits) < n {
		n = len(hits)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, hit := range hits[:n] {
		sum += hit.Distance
	}
	c := 1 - sum/float64(n)
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*1000) / 1000
}

func fallback() models.Response {
	return models.Response{Answer: models.FallbackAnswer, Confidence: 0.0}
}
