package eth

import (
    "context"
    "math/big"

    "github.com/ethereum/go-ethereum/accounts/abi"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/common/hexutil"
    "github.com/ethereum/go-ethereum/ethclient"
    "github.com/ethereum/go-ethereum/rpc"
    "github.com/pkg/errors"
)

const DefaultMaxBatch = 100

var (
    ErrInvalidAddress = errors.New("invalid address")
    // ErrEmptyResult is returned for eth_call results with no data, which
    // nodes produce for calls to non-contracts and some reverts.
    ErrEmptyResult = errors.New("empty call result")
)

type Client struct {
    rpc      *rpc.Client
    ec       *ethclient.Client
    MaxBatch int
}

func Dial(ctx context.Context, url string) (*Client, error) {
    rc, err := rpc.DialContext(ctx, url)
    if err != nil {
        return nil, errors.Wrapf(err, "dial %s", url)
    }
    return NewClient(rc), nil
}

func NewClient(rc *rpc.Client) *Client {
    return &Client{rpc: rc, ec: ethclient.NewClient(rc), MaxBatch: DefaultMaxBatch}
}

func (c *Client) Close() { c.rpc.Close() }

// Eth exposes the underlying ethclient for transaction submission.
func (c *Client) Eth() *ethclient.Client { return c.ec }

type RPCError struct {
    Code    int
    Message string
}

func (e *RPCError) Error() string { return e.Message }

func asRPCError(err error) error {
    var re rpc.Error
    if errors.As(err, &re) {
        return &RPCError{Code: re.ErrorCode(), Message: err.Error()}
    }
    return err
}

// Call is one read-only contract call inside a batch. Out and Err are
// filled by BatchCall.
type Call struct {
    To     common.Address
    ABI    *abi.ABI
    Method string
    Args   []interface{}

    Raw []byte
    Out []interface{}
    Err error
}

func NewCall(to common.Address, a *abi.ABI, method string, args ...interface{}) *Call {
    return &Call{To: to, ABI: a, Method: method, Args: args}
}

// BatchCall executes calls as JSON-RPC batches of eth_call against the
// latest block. A transport failure is returned; per-call failures are
// recorded on the call.
func (c *Client) BatchCall(ctx context.Context, calls []*Call) error {
    max := c.MaxBatch
    if max <= 0 { max = DefaultMaxBatch }
    for start := 0; start < len(calls); start += max {
        end := start + max
        if end > len(calls) { end = len(calls) }
        if err := c.batch(ctx, calls[start:end]); err != nil {
            return err
        }
    }
    return nil
}

func (c *Client) batch(ctx context.Context, calls []*Call) error {
    elems := make([]rpc.BatchElem, 0, len(calls))
    sent := make([]*Call, 0, len(calls))
    results := make([]hexutil.Bytes, len(calls))
    for _, call := range calls {
        data, err := call.ABI.Pack(call.Method, call.Args...)
        if err != nil {
            call.Err = errors.Wrapf(err, "pack %s", call.Method)
            continue
        }
        params := map[string]interface{}{"to": call.To, "data": hexutil.Bytes(data)}
        elems = append(elems, rpc.BatchElem{
            Method: "eth_call",
            Args:   []interface{}{params, "latest"},
            Result: &results[len(sent)],
        })
        sent = append(sent, call)
    }
    if len(elems) == 0 { return nil }
    if err := c.rpc.BatchCallContext(ctx, elems); err != nil {
        return errors.Wrap(err, "eth_call batch")
    }
    for i, call := range sent {
        if elems[i].Error != nil {
            call.Err = errors.Wrapf(asRPCError(elems[i].Error), "%s(%s)", call.Method, call.To.Hex())
            continue
        }
        call.Raw = results[i]
        if len(call.Raw) == 0 {
            call.Err = errors.Wrapf(ErrEmptyResult, "%s(%s)", call.Method, call.To.Hex())
            continue
        }
        out, err := call.ABI.Unpack(call.Method, call.Raw)
        if err != nil {
            call.Err = errors.Wrapf(err, "unpack %s", call.Method)
            continue
        }
        call.Out = out
    }
    return nil
}

// Do runs a single call and returns its error.
func (c *Client) Do(ctx context.Context, call *Call) error {
    if err := c.BatchCall(ctx, []*Call{call}); err != nil {
        return err
    }
    return call.Err
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
    id, err := c.ec.ChainID(ctx)
    if err != nil { return 0, errors.Wrap(asRPCError(err), "eth_chainId") }
    return id.Uint64(), nil
}

// CodeAt returns the runtime code at an address; empty code means non-contract.
func (c *Client) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
    code, err := c.ec.CodeAt(ctx, address, nil)
    if err != nil { return nil, errors.Wrap(asRPCError(err), "eth_getCode") }
    return code, nil
}

func outAt[T any](c *Call, i int) (T, error) {
    var zero T
    if c.Err != nil { return zero, c.Err }
    if i >= len(c.Out) {
        return zero, errors.Errorf("%s: missing output %d", c.Method, i)
    }
    v, ok := c.Out[i].(T)
    if !ok {
        return zero, errors.Errorf("%s: output %d has type %T", c.Method, i, c.Out[i])
    }
    return v, nil
}

func bigOut(c *Call, i int) (*big.Int, error) {
    v, err := outAt[*big.Int](c, i)
    if err != nil { return nil, err }
    if v == nil { return new(big.Int), nil }
    return v, nil
}

// ParseAddress validates a 0x-prefixed hex address.
func ParseAddress(s string) (common.Address, error) {
    if !common.IsHexAddress(s) || len(s) != 42 {
        return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q", s)
    }
    return common.HexToAddress(s), nil
}
