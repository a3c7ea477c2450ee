package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %s, want %s", got.Name, FlexokiDark.Name)
	}
	if !Valid("flexoki-light") || Valid("solarized") {
		t.Fatal("Valid disagrees with All")
	}
}

func TestTrend(t *testing.T) {
	th := FlexokiDark
	if th.Trend(10, 1) != th.GreenBright {
		t.Error("revenue up should be green")
	}
	if th.Trend(10, -1) != th.Red {
		t.Error("CAC up should be red")
	}
	if th.Trend(-5, -1) != th.GreenBright {
		t.Error("CAC down should be green")
	}
	if th.Trend(0, 1) != th.TextMuted {
		t.Error("flat should be muted")
	}
}

func TestSeriesColorCycles(t *testing.T) {
	for _, th := range All {
		if len(th.Series) == 0 {
			t.Fatalf("%s has no series colors", th.Name)
		}
		if th.SeriesColor(len(th.Series)) != th.SeriesColor(0) {
			t.Fatalf("%s series does not cycle", th.Name)
		}
	}
}
