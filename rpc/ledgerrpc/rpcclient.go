package ledgerrpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jbclabs/levelsystem/rpc"

	"github.com/pkg/errors"
)

type RpcClient struct {
	NodeAddress string
}

func NewRpcClient(addr string) *RpcClient {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &RpcClient{
		NodeAddress: addr,
	}
}

func (r *RpcClient) Request(method string, params any, output any) error {
	body := rpc.RequestOut{
		JsonRpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      0,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", r.NodeAddress, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, method)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, method)
	}

	defer res.Body.Close()

	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, method)
	}

	out := rpc.ResponseIn{}

	err = json.Unmarshal(dat, &out)
	if err != nil {
		return errors.Wrap(err, method)
	}

	if out.Error != nil {
		return errors.Errorf("%s: code %d: %s", method, out.Error.Code, out.Error.Message)
	}

	return json.Unmarshal(out.Result, output)
}
