package analysis

import (
	"context"
	"sync"
)

// Pipeline runs the full hybrid analysis for one request. Requests are
// processed independently and statelessly; the pattern library and keyword
// sets are read-only, so one Pipeline serves any number of in-flight
// requests.
type Pipeline struct {
	analyzer *Analyzer
}

func NewPipeline(client Completer) *Pipeline {
	return &Pipeline{analyzer: NewAnalyzer(client)}
}

// Analyze validates the request, runs the three pure stages concurrently,
// consults the model with the heuristic output as context, and merges
// everything into the final result. Model unavailability degrades to
// heuristics-only output; only a malformed request returns an error.
func (p *Pipeline) Analyze(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		entities map[string]string
		heur     HeuristicAnalysis
		keywords []string
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		entities = ExtractEntities(req)
	}()
	go func() {
		defer wg.Done()
		heur = ClassifyHeuristics(req.Subject, req.Body)
	}()
	go func() {
		defer wg.Done()
		keywords = RankKeywords(req.Body)
	}()
	wg.Wait()
	heur.Keywords = keywords

	model := p.analyzer.Analyze(ctx, req, heur)
	return mergeResults(req, entities, heur, model), nil
}
