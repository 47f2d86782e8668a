package ledger

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		team    uint64
		level   int
		percent uint64
	}{
		{0, 0, 0},
		{9, 0, 0},
		{10, 1, 5},
		{29, 1, 5},
		{30, 2, 10},
		{99, 2, 10},
		{100, 3, 15},
		{299, 3, 15},
		{300, 4, 20},
		{999, 4, 20},
		{1000, 5, 25},
		{2999, 5, 25},
		{3000, 6, 30},
		{9999, 6, 30},
		{10000, 7, 35},
		{29999, 7, 35},
		{30000, 8, 40},
		{99999, 8, 40},
		{100000, 9, 45},
		{1 << 40, 9, 45},
	}

	for _, c := range cases {
		level, percent := Level(c.team)
		if level != c.level || percent != c.percent {
			t.Fatalf("Level(%d) = V%d/%d%%, expected V%d/%d%%",
				c.team, level, percent, c.level, c.percent)
		}
	}

	// percent never decreases as the team grows
	prev := uint64(0)
	for team := uint64(0); team < 200_000; team += 7 {
		_, percent := Level(team)
		if percent < prev {
			t.Fatalf("percent regressed at team %d: %d < %d", team, percent, prev)
		}
		prev = percent
	}
}

func TestLayersUnlocked(t *testing.T) {
	cases := []struct {
		directs uint64
		layers  uint64
	}{
		{0, 0},
		{1, 5},
		{2, 10},
		{3, 15},
		{4, 15},
		{100, 15},
	}

	for _, c := range cases {
		if got := layersUnlocked(c.directs); got != c.layers {
			t.Fatalf("layersUnlocked(%d) = %d, expected %d", c.directs, got, c.layers)
		}
	}
}
