package ledger

import "github.com/jbclabs/levelsystem/config"

// Level maps a downline team size to its tier (V0..V9) and reward percent.
// The highest threshold <= teamCount wins.
func Level(teamCount uint64) (level int, percent uint64) {
	for i := len(config.LEVEL_THRESHOLDS) - 1; i >= 0; i-- {
		if teamCount >= config.LEVEL_THRESHOLDS[i] {
			return i, config.LEVEL_PERCENTS[i]
		}
	}
	return 0, 0
}

// layersUnlocked returns how many layers of the layered reward an upline with
// the given number of active direct referrals can collect from.
func layersUnlocked(activeDirects uint64) uint64 {
	switch {
	case activeDirects >= 3:
		return 15
	case activeDirects == 2:
		return 10
	case activeDirects == 1:
		return 5
	default:
		return 0
	}
}
