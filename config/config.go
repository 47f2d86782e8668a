package config

const NAME = "levelsystem"

const VERSION_MAJOR = 1
const VERSION_MINOR = 0
const VERSION_PATCH = 0

const COIN = 1_000_000_000 // 1e9 atomic units per MC/JBC

// Ticket denominations, in whole coins. A purchase must match one of these
// exactly; anything else is rejected with InvalidAmount.
var TICKET_DENOMS = []uint64{100, 300, 500, 1000}

// Revenue cap is CAP_MULTIPLIER times the ticket amount. Reaching it exits
// the ticket.
const CAP_MULTIPLIER = 3

// Level table: the highest threshold <= teamCount wins.
var LEVEL_THRESHOLDS = []uint64{0, 10, 30, 100, 300, 1000, 3000, 10000, 30000, 100000}
var LEVEL_PERCENTS = []uint64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45}

// Static reward rates, parts-per-billion of the stake principal per elapsed
// time unit, indexed by cycle length.
var STAKE_CYCLES = []uint64{7, 15, 30}
var STAKE_RATES_PPB = map[uint64]uint64{
	7:  13_333_334,
	15: 16_666_667,
	30: 20_000_000,
}

// Upline walk bounds. The differential compression walk is hard-capped at 20
// hops; team-size propagation at bind time uses its own, larger bound.
const MAX_COMPRESSION_HOPS = 20
const MAX_TEAM_DEPTH = 100

// Layered reward: the pool is split evenly across this many layers above the
// direct referrer. How many of those layers a single upline can collect from
// depends on their activeDirects count.
const MAX_REWARD_LAYERS = 15

const RPC_BIND_PORT = 17311

const DEFAULT_RATE_LIMIT = 500 // requests per minute per IP
