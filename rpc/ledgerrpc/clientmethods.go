package ledgerrpc

func (r *RpcClient) GetInfo(params GetInfoRequest) (*GetInfoResponse, error) {
	res := &GetInfoResponse{}
	return res, r.Request("get_info", params, res)
}

func (r *RpcClient) GetUser(params GetUserRequest) (*GetUserResponse, error) {
	res := &GetUserResponse{}
	return res, r.Request("get_user", params, res)
}

func (r *RpcClient) GetStakes(params GetStakesRequest) (*GetStakesResponse, error) {
	res := &GetStakesResponse{}
	return res, r.Request("get_stakes", params, res)
}

func (r *RpcClient) GetPendingDifferentials(params GetPendingDifferentialsRequest) (*GetPendingDifferentialsResponse, error) {
	res := &GetPendingDifferentialsResponse{}
	return res, r.Request("get_pending_differentials", params, res)
}

func (r *RpcClient) GetReserve(params GetReserveRequest) (*GetReserveResponse, error) {
	res := &GetReserveResponse{}
	return res, r.Request("get_reserve", params, res)
}

func (r *RpcClient) GetEvents(params GetEventsRequest) (*GetEventsResponse, error) {
	res := &GetEventsResponse{}
	return res, r.Request("get_events", params, res)
}

func (r *RpcClient) BindReferrer(params BindReferrerRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("bind_referrer", params, res)
}

func (r *RpcClient) PurchaseTicket(params PurchaseTicketRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("purchase_ticket", params, res)
}

func (r *RpcClient) StakeLiquidity(params StakeLiquidityRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("stake_liquidity", params, res)
}

func (r *RpcClient) ClaimStatic(params ClaimStaticRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("claim_static", params, res)
}

func (r *RpcClient) Redeem(params RedeemRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("redeem", params, res)
}

func (r *RpcClient) Swap(params SwapRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("swap", params, res)
}

func (r *RpcClient) Credit(params CreditRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("credit", params, res)
}

func (r *RpcClient) SetReserves(params SetReservesRequest) (*TxResponse, error) {
	res := &TxResponse{}
	return res, r.Request("set_reserves", params, res)
}
