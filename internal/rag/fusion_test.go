package rag

import (
	"testing"
)

func TestFuseRRF_BothSources(t *testing.T) {
	bm25Results := []BM25Result{
		{Document: Document{Name: "A", Content: "a"}, Score: 5, Rank: 1},
		{Document: Document{Name: "B", Content: "b"}, Score: 3, Rank: 2},
	}
	vectorResults := []VectorResult{
		{Document: Document{Name: "B", Content: "b"}, Similarity: 0.9, Rank: 1},
		{Document: Document{Name: "C", Content: "c"}, Similarity: 0.5, Rank: 2},
	}

	fused := fuseRRF(bm25Results, vectorResults, 0.4, 3)
	if len(fused) != 3 {
		t.Fatalf("len = %d, want 3", len(fused))
	}
	// B appears in both rankings and must come out on top.
	if fused[0].Document.Name != "B" {
		t.Errorf("top = %q, want B", fused[0].Document.Name)
	}
}

func TestFuseRRF_TopNTruncation(t *testing.T) {
	bm25Results := []BM25Result{
		{Document: Document{Name: "A"}, Rank: 1},
		{Document: Document{Name: "B"}, Rank: 2},
		{Document: Document{Name: "C"}, Rank: 3},
	}

	fused := fuseRRF(bm25Results, nil, 1.0, 2)
	if len(fused) != 2 {
		t.Fatalf("len = %d, want 2", len(fused))
	}
	if fused[0].Document.Name != "A" || fused[1].Document.Name != "B" {
		t.Errorf("order = %q, %q, want A, B", fused[0].Document.Name, fused[1].Document.Name)
	}
}

func TestFuseRRF_WeightClamping(t *testing.T) {
	bm25Results := []BM25Result{{Document: Document{Name: "A"}, Rank: 1}}

	for _, weight := range []float64{-0.5, 1.5} {
		fused := fuseRRF(bm25Results, nil, weight, 1)
		if len(fused) != 1 {
			t.Errorf("weight %v: len = %d, want 1", weight, len(fused))
		}
		if fused[0].RRFScore < 0 {
			t.Errorf("weight %v: negative score %v", weight, fused[0].RRFScore)
		}
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	if fused := fuseRRF(nil, nil, 0.4, 5); len(fused) != 0 {
		t.Errorf("fused = %v, want empty", fused)
	}
}
