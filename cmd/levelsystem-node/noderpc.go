package main

import (
	"fmt"

	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/ledger"
	"github.com/jbclabs/levelsystem/rpc"
	"github.com/jbclabs/levelsystem/rpc/ledgerrpc"
	"github.com/jbclabs/levelsystem/rpc/rpcserver"
)

const internalReadFailed = -32001
const commandRejected = -32002
const restrictedMethod = -32003

func startRpc(eng *ledger.Engine, ip string, port uint16, restricted bool, auth string) {
	ratelimitCount := 100_000 // private RPC
	if restricted {
		ratelimitCount = 5_000
	}

	rs := rpcserver.New(fmt.Sprintf("%s:%d", ip, port), rpcserver.Config{
		Restricted:     restricted,
		Authentication: auth,
		RateLimit:      ratelimitCount,
	})

	readErr := func(c *rpcserver.Context, err error) {
		c.ErrorResponse(&rpc.Error{
			Code:    internalReadFailed,
			Message: err.Error(),
		})
	}
	cmdErr := func(c *rpcserver.Context, err error) {
		c.ErrorResponse(&rpc.Error{
			Code:    commandRejected,
			Message: err.Error(),
		})
	}

	rs.Handle("get_info", func(c *rpcserver.Context) {
		stats, users, err := eng.Info()
		if err != nil {
			readErr(c, err)
			return
		}

		c.SuccessResponse(ledgerrpc.GetInfoResponse{
			Version: fmt.Sprintf("%d.%d.%d", config.VERSION_MAJOR, config.VERSION_MINOR,
				config.VERSION_PATCH),
			Coin:                    config.COIN,
			UnitSeconds:             config.UNIT_SECONDS,
			TicketDenoms:            config.TICKET_DENOMS,
			DirectRewardPercent:     config.DIRECT_REWARD_PERCENT,
			LevelRewardPercent:      config.LEVEL_REWARD_PERCENT,
			RedemptionFeePercent:    config.REDEMPTION_FEE_PERCENT,
			StakeMultiplierPermille: config.STAKE_MULTIPLIER_PERMILLE,
			Users:                   users,
			TicketsSold:             stats.LastTicketId,
			TicketVolume:            stats.TicketVolume,
			TotalStaked:             stats.TotalStaked,
			EventSeq:                stats.EventSeq,
		})
	})

	rs.Handle("get_user", func(c *rpcserver.Context) {
		params := ledgerrpc.GetUserRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		u, err := eng.GetUser(params.Address)
		if err != nil {
			readErr(c, err)
			return
		}

		lvl, percent := ledger.Level(u.TeamCount)
		c.SuccessResponse(ledgerrpc.GetUserResponse{
			User:         *u,
			Level:        lvl,
			LevelPercent: percent,
		})
	})

	rs.Handle("get_stakes", func(c *rpcserver.Context) {
		params := ledgerrpc.GetStakesRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		stakes, err := eng.GetStakes(params.Address)
		if err != nil {
			readErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.GetStakesResponse{Stakes: stakes})
	})

	rs.Handle("get_pending_differentials", func(c *rpcserver.Context) {
		params := ledgerrpc.GetPendingDifferentialsRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		entries, err := eng.PendingDifferentials(params.Address)
		if err != nil {
			readErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.GetPendingDifferentialsResponse{Entries: entries})
	})

	rs.Handle("get_reserve", func(c *rpcserver.Context) {
		r, err := eng.GetReserve()
		if err != nil {
			readErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.GetReserveResponse{Mc: r.Mc, Jbc: r.Jbc})
	})

	rs.Handle("get_events", func(c *rpcserver.Context) {
		params := ledgerrpc.GetEventsRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		events, err := eng.GetEvents(params.AfterSeq, params.Limit)
		if err != nil {
			readErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.GetEventsResponse{Events: events})
	})

	rs.Handle("bind_referrer", func(c *rpcserver.Context) {
		params := ledgerrpc.BindReferrerRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		if err := eng.Bind(params.Address, params.Referrer); err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: []ledger.Event{}})
	})

	rs.Handle("purchase_ticket", func(c *rpcserver.Context) {
		params := ledgerrpc.PurchaseTicketRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		events, err := eng.Purchase(params.Address, params.Amount)
		if err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: events})
	})

	rs.Handle("stake_liquidity", func(c *rpcserver.Context) {
		params := ledgerrpc.StakeLiquidityRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		events, err := eng.Stake(params.Address, params.Amount, params.CycleDays)
		if err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: events})
	})

	rs.Handle("claim_static", func(c *rpcserver.Context) {
		params := ledgerrpc.ClaimStaticRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		events, err := eng.ClaimStatic(params.Address)
		if err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: events})
	})

	rs.Handle("redeem", func(c *rpcserver.Context) {
		params := ledgerrpc.RedeemRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		events, err := eng.Redeem(params.Address, params.StakeId)
		if err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: events})
	})

	rs.Handle("swap", func(c *rpcserver.Context) {
		params := ledgerrpc.SwapRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		if err := eng.Swap(params.Address, params.McIn, params.JbcIn); err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: []ledger.Event{}})
	})

	rs.Handle("credit", func(c *rpcserver.Context) {
		if restricted {
			c.ErrorResponse(&rpc.Error{
				Code:    restrictedMethod,
				Message: "method not available on public RPC",
			})
			return
		}

		params := ledgerrpc.CreditRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		if err := eng.Credit(params.Caller, params.Address, params.Mc, params.Jbc); err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: []ledger.Event{}})
	})

	rs.Handle("set_reserves", func(c *rpcserver.Context) {
		if restricted {
			c.ErrorResponse(&rpc.Error{
				Code:    restrictedMethod,
				Message: "method not available on public RPC",
			})
			return
		}

		params := ledgerrpc.SetReservesRequest{}
		if c.GetParams(&params) != nil {
			return
		}

		if err := eng.SetReserves(params.Caller, params.Mc, params.Jbc); err != nil {
			cmdErr(c, err)
			return
		}
		c.SuccessResponse(ledgerrpc.TxResponse{Events: []ledger.Event{}})
	})

	Log.Infof("RPC server listening on %s:%d", ip, port)
}
