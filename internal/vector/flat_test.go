package vector

import (
	"context"
	"errors"
	"testing"
)

func TestFlatIndex_AddSearch(t *testing.T) {
	idx, err := NewFlatIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(ctx, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Position != 0 || results[0].Distance != 0 {
		t.Errorf("top result should be position 0 at distance 0, got %+v", results[0])
	}
	if results[1].Position != 1 {
		t.Errorf("second result should be position 1, got %+v", results[1])
	}
}

func TestFlatIndex_SelfQueryReturnsSelf(t *testing.T) {
	ctx := context.Background()
	vecs := [][]float32{{0, 0}, {3, 4}, {1, 1}, {-2, 5}}
	idx, _ := NewFlatIndex(2)
	if err := idx.Add(ctx, vecs); err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs {
		res, err := idx.Search(ctx, v, 1)
		if err != nil {
			t.Fatal(err)
		}
		if res[0].Position != i || res[0].Distance != 0 {
			t.Errorf("self query %d: got %+v", i, res[0])
		}
	}
}

func TestFlatIndex_SquaredDistanceAndOrder(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(2)
	_ = idx.Add(ctx, [][]float32{{3, 4}, {1, 0}, {0, 2}})
	res, err := idx.Search(ctx, []float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []int{1, 2, 0}
	wantDist := []float32{1, 4, 25}
	for i := range res {
		if res[i].Position != wantPos[i] || res[i].Distance != wantDist[i] {
			t.Errorf("result %d = %+v, want position %d distance %v", i, res[i], wantPos[i], wantDist[i])
		}
		if i > 0 && res[i].Distance < res[i-1].Distance {
			t.Error("distances must be non-decreasing")
		}
	}
}

func TestFlatIndex_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(2)
	// Positions 1, 3 and 4 are equidistant from the origin; 0 and 2 are duplicates.
	_ = idx.Add(ctx, [][]float32{{5, 5}, {1, 0}, {5, 5}, {0, 1}, {-1, 0}})
	for run := 0; run < 5; run++ {
		res, err := idx.Search(ctx, []float32{0, 0}, 5)
		if err != nil {
			t.Fatal(err)
		}
		want := []int{1, 3, 4, 0, 2}
		for i := range want {
			if res[i].Position != want[i] {
				t.Fatalf("run %d: positions = %v, want %v", run, positions(res), want)
			}
		}
	}
	dup, _ := idx.Search(ctx, []float32{5, 5}, 1)
	if dup[0].Position != 0 {
		t.Errorf("duplicate vectors: earliest position should win, got %d", dup[0].Position)
	}
}

func positions(ns []Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Position
	}
	return out
}

func TestFlatIndex_KBounds(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(1)
	_ = idx.Add(ctx, [][]float32{{1}, {2}, {3}})
	tests := []struct {
		k    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 3},
		{5, 3},
	}
	for _, tt := range tests {
		res, err := idx.Search(ctx, []float32{0}, tt.k)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != tt.want {
			t.Errorf("k=%d: got %d results, want %d", tt.k, len(res), tt.want)
		}
	}
}

func TestFlatIndex_SearchEmpty(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	res, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Errorf("expected no results, got %d", len(res))
	}
}

func TestFlatIndex_SealedAfterSearch(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(2)
	if err := idx.Add(ctx, [][]float32{{1, 1}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, [][]float32{{2, 2}}); err != nil {
		t.Fatalf("Add before search should succeed: %v", err)
	}
	if _, err := idx.Search(ctx, []float32{0, 0}, 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, [][]float32{{3, 3}}); !errors.Is(err, ErrSealed) {
		t.Errorf("Add after search: err = %v, want ErrSealed", err)
	}
	if idx.Size() != 2 {
		t.Errorf("Size=%d, want 2", idx.Size())
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(3)
	if err := idx.Add(ctx, [][]float32{{1, 2, 3}, {1, 2}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Add err = %v, want ErrDimensionMismatch", err)
	}
	if idx.Size() != 0 {
		t.Errorf("partial add: Size=%d, want 0", idx.Size())
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search err = %v, want ErrDimensionMismatch", err)
	}
}

func TestFlatIndex_CopiesInput(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewFlatIndex(2)
	v := []float32{1, 1}
	_ = idx.Add(ctx, [][]float32{v})
	v[0] = 100
	res, _ := idx.Search(ctx, []float32{1, 1}, 1)
	if res[0].Distance != 0 {
		t.Errorf("index aliased caller slice: distance %v", res[0].Distance)
	}
}

func TestNewFlatIndex_invalidDimensions(t *testing.T) {
	if _, err := NewFlatIndex(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

func TestSquaredL2(t *testing.T) {
	if d := SquaredL2([]float32{1, 2}, []float32{4, 6}); d != 25 {
		t.Errorf("SquaredL2 = %v, want 25", d)
	}
}

func BenchmarkFlatIndex_Search(b *testing.B) {
	ctx := context.Background()
	const n, dims = 5000, 384
	vecs := make([][]float32, n)
	for i := range vecs {
		v := make([]float32, dims)
		for j := range v {
			v[j] = float32((i*31+j*17)%97) / 97
		}
		vecs[i] = v
	}
	idx, _ := NewFlatIndex(dims)
	_ = idx.Add(ctx, vecs)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, vecs[i%n], 5)
	}
}
