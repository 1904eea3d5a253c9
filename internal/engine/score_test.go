package engine

import "testing"

func TestScoreCompareOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Score
		want int // sign only
	}{
		{"mating beats cp", Mating(3), Cp(500), 1},
		{"cp beats mated", Cp(-500), Mated(3), 1},
		{"shorter mate is better", Mating(2), Mating(5), 1},
		{"longer survival is better", Mated(5), Mated(2), 1},
		{"higher cp is better", Cp(50), Cp(10), 1},
		{"equal cp", Cp(10), Cp(10), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Compare(tc.b)
			if (got > 0) != (tc.want > 0) || (got < 0) != (tc.want < 0) || (got == 0) != (tc.want == 0) {
				t.Errorf("Compare() = %d, want sign %d", got, tc.want)
			}
		})
	}
}

func TestScorePrevNext(t *testing.T) {
	m := Mating(3)
	prev := m.Prev()
	if prev.kind != scoreMated || prev.n != 3 {
		t.Errorf("Mating(3).Prev() = %+v, want Mated(3)", prev)
	}
	if got := prev.Next(); got.kind != scoreMating || got.n != 3 {
		t.Errorf("Mating(3).Prev().Next() = %+v, want Mating(3)", got)
	}

	cp := Cp(120)
	if got := cp.Prev(); got.cp != -120 {
		t.Errorf("Cp(120).Prev() = %+v, want Cp(-120)", got)
	}
}

func TestEndingScore(t *testing.T) {
	if s := EndingScore(Checkmate); !s.IsMate() || s.MateIn() != 0 {
		t.Errorf("EndingScore(Checkmate) = %+v, want Mated(0)", s)
	}
	if s := EndingScore(Stalemate); !s.IsCp() || s.CpValue() != 0 {
		t.Errorf("EndingScore(Stalemate) = %+v, want Cp(0)", s)
	}
}

func TestScoreUCIString(t *testing.T) {
	if got := Mating(1).UCIString(); got != "mate 1" {
		t.Errorf("Mating(1).UCIString() = %q, want %q", got, "mate 1")
	}
	if got := Mating(4).UCIString(); got != "mate 2" {
		t.Errorf("Mating(4).UCIString() = %q, want %q", got, "mate 2")
	}
	if got := Cp(37).UCIString(); got != "cp 37" {
		t.Errorf("Cp(37).UCIString() = %q, want %q", got, "cp 37")
	}
}
