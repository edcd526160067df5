package tensor

import "testing"

func mustFromRows(t *testing.T, rows, cols int, data []float64) *Dense {
	t.Helper()
	d, err := FromRows(rows, cols, data)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAddBroadcastScalar(t *testing.T) {
	a := mustFromRows(t, 2, 2, []float64{1, 2, 3, 4})
	b := mustFromRows(t, 1, 1, []float64{10})
	out, err := Add(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{11, 12, 13, 14}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if At(out, i, j) != want[i*2+j] {
				t.Errorf("(%d,%d): want %v got %v", i, j, want[i*2+j], At(out, i, j))
			}
		}
	}
}

func TestWhereSelect(t *testing.T) {
	cond := mustFromRows(t, 3, 1, []float64{1, 0, 1})
	tVal := mustFromRows(t, 3, 1, []float64{100, 100, 100})
	fVal := mustFromRows(t, 3, 1, []float64{-1, -1, -1})
	out, err := Where(cond, tVal, fVal)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{100, -1, 100}
	for i := 0; i < 3; i++ {
		if At(out, i, 0) != want[i] {
			t.Errorf("row %d: want %v got %v", i, want[i], At(out, i, 0))
		}
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	a := mustFromRows(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	b, err := Transpose(a, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Rows() != 3 || b.Cols() != 2 {
		t.Fatalf("wrong shape %dx%d", b.Rows(), b.Cols())
	}
	c, err := Transpose(b, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if At(a, i, j) != At(c, i, j) {
				t.Errorf("round trip mismatch at (%d,%d)", i, j)
			}
		}
	}
}

func TestCatAndSlice(t *testing.T) {
	a := mustFromRows(t, 2, 1, []float64{1, 2})
	b := mustFromRows(t, 2, 1, []float64{3, 4})
	cat, err := Cat(1, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Cols() != 2 {
		t.Fatalf("want 2 cols, got %d", cat.Cols())
	}
	back, err := Slice(cat, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if At(back, 0, 0) != 3 || At(back, 1, 0) != 4 {
		t.Errorf("slice mismatch: %v %v", At(back, 0, 0), At(back, 1, 0))
	}
}

func TestMatMulVsHadamard(t *testing.T) {
	a := mustFromRows(t, 1, 2, []float64{2, 3})
	b := mustFromRows(t, 2, 1, []float64{4, 5})
	product, err := MatMul(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if product.Rows() != 1 || product.Cols() != 1 {
		t.Fatalf("want 1x1, got %dx%d", product.Rows(), product.Cols())
	}
	if At(product, 0, 0) != 2*4+3*5 {
		t.Errorf("want %v got %v", 2*4+3*5, At(product, 0, 0))
	}
}
