package rag

import (
	"sort"
)

const (
	// rrfConstant is the k in the RRF formula 1 / (k + rank).
	// 60 is the standard value: top ranks dominate without drowning
	// out lower-ranked documents entirely.
	rrfConstant = 60

	// defaultBM25Weight gives the lexical side 40% and the semantic
	// side 60% of the fused score.
	defaultBM25Weight = 0.4
)

// fusedResult is a document scored by Reciprocal Rank Fusion of the BM25
// and vector rankings.
type fusedResult struct {
	Document Document
	RRFScore float64
}

// fuseRRF combines both rankings: score(d) = Σ w_i / (rrfConstant + rank_i).
// Documents are keyed by course name. Results are sorted by fused score
// descending and truncated to topN.
func fuseRRF(bm25Results []BM25Result, vectorResults []VectorResult, bm25Weight float64, topN int) []fusedResult {
	if bm25Weight < 0 {
		bm25Weight = 0
	}
	if bm25Weight > 1 {
		bm25Weight = 1
	}
	vectorWeight := 1.0 - bm25Weight

	resultMap := make(map[string]*fusedResult)
	order := make([]string, 0, len(bm25Results)+len(vectorResults))

	for _, r := range bm25Results {
		score := bm25Weight / float64(rrfConstant+r.Rank)
		if existing, ok := resultMap[r.Document.Name]; ok {
			existing.RRFScore += score
		} else {
			resultMap[r.Document.Name] = &fusedResult{Document: r.Document, RRFScore: score}
			order = append(order, r.Document.Name)
		}
	}

	for _, r := range vectorResults {
		score := vectorWeight / float64(rrfConstant+r.Rank)
		if existing, ok := resultMap[r.Document.Name]; ok {
			existing.RRFScore += score
		} else {
			resultMap[r.Document.Name] = &fusedResult{Document: r.Document, RRFScore: score}
			order = append(order, r.Document.Name)
		}
	}

	results := make([]fusedResult, 0, len(order))
	for _, name := range order {
		results = append(results, *resultMap[name])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RRFScore > results[j].RRFScore
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}
