package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/ledger"
	"github.com/jbclabs/levelsystem/util"

	"github.com/ergochat/readline"
)

type Cmd struct {
	Names  []string
	Action func(args []string)
	Args   string
}

var commands = Commands{}

type Commands []Cmd

// Readline will pass the whole line and current offset to it
// Completer need to pass all the candidates, and how long they shared the same characters in line
// Example:
//
// [go, git, git-shell, grep]
// Do("g", 1) => ["o", "it", "it-shell", "rep"], 1
// Do("gi", 2) => ["t", "t-shell"], 2
// Do("git", 3) => ["", "-shell"], 3
func (c Commands) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 {
		return [][]rune{}, 0
	}

	lineStr := string(line)

	sols := [][]rune{}

	for _, v := range c {
		if len(v.Names[0]) >= len(lineStr) {
			sol := v.Names[0][:len(lineStr)]

			if lineStr == sol {
				sols = append(sols, []rune(v.Names[0][len(lineStr):]))
			}
		}
	}

	return sols, pos
}

func parseAddr(args []string) (address.Address, bool) {
	if len(args) != 1 {
		return address.INVALID_ADDRESS, false
	}
	addr, err := address.FromString(args[0])
	if err != nil {
		Log.Err("Failed to parse address:", args[0])
		return address.INVALID_ADDRESS, false
	}
	return addr, true
}

func commandLoop(eng *ledger.Engine) {
	commands = append(commands, []Cmd{{
		Names: []string{"status", "info"},
		Args:  "",
		Action: func(args []string) {
			stats, users, err := eng.Info()
			if err != nil {
				Log.Err(err)
				return
			}

			Log.Infof("Users: %d; tickets sold: %d; events: %d", users, stats.LastTicketId,
				stats.EventSeq)
			Log.Infof("Ticket volume: %s; total staked: %s", util.FormatCoin(stats.TicketVolume),
				util.FormatCoin(stats.TotalStaked))
		},
	}, {
		Names: []string{"user", "print_user"},
		Args:  "<address>",
		Action: func(args []string) {
			addr, ok := parseAddr(args)
			if !ok {
				Log.Err("Usage: user <address>")
				return
			}

			u, err := eng.GetUser(addr)
			if err != nil {
				Log.Err(err)
				return
			}

			lvl, percent := ledger.Level(u.TeamCount)
			Log.Info(u.String())
			Log.Infof("Level: V%d (%d%%)", lvl, percent)
		},
	}, {
		Names: []string{"stakes", "print_stakes"},
		Args:  "<address>",
		Action: func(args []string) {
			addr, ok := parseAddr(args)
			if !ok {
				Log.Err("Usage: stakes <address>")
				return
			}

			stakes, err := eng.GetStakes(addr)
			if err != nil {
				Log.Err(err)
				return
			}

			for _, v := range stakes {
				state := "active"
				if !v.Stake.Active {
					state = "redeemed"
				} else if v.Matured {
					state = "matured"
				}
				Log.Infof("#%d: %s over %d units, paid %s, pending %s, %s", v.Stake.Id,
					util.FormatCoin(v.Stake.Amount), v.Stake.CycleDays,
					util.FormatCoin(v.Stake.Paid), util.FormatCoin(v.Pending), state)
			}

			pending, err := eng.PendingStatic(addr)
			if err != nil {
				Log.Err(err)
				return
			}
			Log.Infof("%d stakes, %s claimable", len(stakes), util.FormatCoin(pending))
		},
	}, {
		Names: []string{"pending", "print_pending"},
		Args:  "<address>",
		Action: func(args []string) {
			addr, ok := parseAddr(args)
			if !ok {
				Log.Err("Usage: pending <address>")
				return
			}

			entries, err := eng.PendingDifferentials(addr)
			if err != nil {
				Log.Err(err)
				return
			}

			var sum uint64
			for _, v := range entries {
				Log.Infof("stake #%d from %s: %s", v.StakeId, v.Upline, util.FormatCoin(v.Amount))
				sum += v.Amount
			}
			Log.Infof("%d pending entries, total %s", len(entries), util.FormatCoin(sum))
		},
	}, {
		Names: []string{"reserve", "print_reserve"},
		Args:  "",
		Action: func(args []string) {
			r, err := eng.GetReserve()
			if err != nil {
				Log.Err(err)
				return
			}
			Log.Infof("Reserve: %s MC / %s JBC", util.FormatCoin(r.Mc), util.FormatCoin(r.Jbc))
		},
	}, {
		Names: []string{"events", "print_events"},
		Args:  "[<count>]",
		Action: func(args []string) {
			count := 20
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					Log.Err("Usage: events [<count>]")
					return
				}
				count = n
			}

			stats, _, err := eng.Info()
			if err != nil {
				Log.Err(err)
				return
			}

			var after uint64
			if stats.EventSeq > uint64(count) {
				after = stats.EventSeq - uint64(count)
			}

			events, err := eng.GetEvents(after, count)
			if err != nil {
				Log.Err(err)
				return
			}
			for _, v := range events {
				Log.Infof("%d. %s", v.Seq, v.String())
			}
		},
	}, {
		Names: []string{"config", "print_config"},
		Args:  "",
		Action: func(args []string) {
			Log.Infof("Time unit: %d seconds", config.UNIT_SECONDS)
			Log.Infof("Direct reward: %d%%; layered pool: %d%%; redemption fee: %d%%",
				config.DIRECT_REWARD_PERCENT, config.LEVEL_REWARD_PERCENT,
				config.REDEMPTION_FEE_PERCENT)
			Log.Infof("Stake multiplier: %d permille", config.STAKE_MULTIPLIER_PERMILLE)
			Log.Infof("Staking enabled: %v; swap enabled: %v", config.STAKING_ENABLED,
				config.SWAP_ENABLED)
		},
	}, {
		Names: []string{"loglevel"},
		Args:  "<level>",
		Action: func(args []string) {
			if len(args) != 1 {
				Log.Err("Usage: loglevel <level>")
				return
			}
			n, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				Log.Err(err)
				return
			}
			Log.SetLogLevel(uint8(n))
		},
	}, {
		Names: []string{"help"},
		Args:  "",
		Action: func(args []string) {
			Log.Info("List of available commands:")
			for _, v := range commands {
				Log.Infof("%s %s", util.PadR(v.Names[0], 14), v.Args)
			}
		},
	}, {
		Names: []string{"exit", "quit"},
		Args:  "",
		Action: func(args []string) {
			eng.Close()
			os.Exit(0)
		},
	}}...)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32m>\033[0m ",
		AutoComplete:    commands,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	l.CaptureExitSignal()

	Log.SetStdout(l.Stdout())
	Log.SetStderr(l.Stderr())

	for {
		line, err := l.ReadLine()
		if err != nil {
			Log.Err(err)
			eng.Close()
			os.Exit(0)
		}

		args := strings.Split(line, " ")

		if len(args) == 0 {
			continue
		}

		executed := false
		for _, v := range commands {
			for _, v2 := range v.Names {
				if v2 == args[0] {
					v.Action(args[1:])
					executed = true
					break
				}
			}
		}
		if !executed {
			Log.Err("unknown command, use help to see a list of commands")
		}
	}
}
