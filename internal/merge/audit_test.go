package merge

import (
	"context"
	"testing"

	"github.com/vovakirdan/chatscore/internal/history"
	"github.com/vovakirdan/chatscore/internal/log"
	"github.com/vovakirdan/chatscore/internal/score"
)

func TestApply_RecordsRunHistory(t *testing.T) {
	path := writeDataset(t, `[
  {"message_id": "m1", "message": "joke", "username": "A"},
  {"message_id": "m2", "message": "", "username": "B"},
  {"message_id": "m3", "message": "scored", "username": "C", "quality_score_from_llm": 9}
]`)

	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	stub := &stubProvider{reply: "Score: 8"}
	scorer := score.New(stub, 0, log.Nop())

	res, err := New(scorer, store, log.Nop()).Apply(context.Background(), path)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("result should carry a run id")
	}

	runs, err := store.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	r := runs[0]
	if r.ID != res.RunID {
		t.Fatalf("run id = %q, want %q", r.ID, res.RunID)
	}
	if r.DatasetPath != path {
		t.Fatalf("dataset path = %q, want %q", r.DatasetPath, path)
	}
	if r.Total != 3 || r.Updated != 1 {
		t.Fatalf("counts = %d/%d, want 1/3", r.Updated, r.Total)
	}
	if !r.FinishedAt.Valid {
		t.Fatal("run should be finished")
	}
}
