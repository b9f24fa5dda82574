package mock

import (
    "bytes"
    "encoding/json"
    "io"
    "math/big"
    "net/http"
    "sync"

    "github.com/ethereum/go-ethereum/accounts/abi"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/common/hexutil"
    "github.com/ethereum/go-ethereum/core/types"
)

// MethodFunc answers one contract call with the method's outputs.
type MethodFunc func(args []interface{}) ([]interface{}, error)

type contract struct {
    abi     *abi.ABI
    methods map[string]MethodFunc
}

// ChainNode is an in-process JSON-RPC endpoint for tests. It answers
// eth_call from registered Go handlers, encoding with the real ABI, and
// accepts raw transactions.
type ChainNode struct {
    ChainID uint64
    // ReceiptAfter is how many eth_getTransactionReceipt polls return null
    // before the receipt shows up.
    ReceiptAfter int
    // TxStatus decides the receipt status of a submitted transaction.
    TxStatus func(tx *types.Transaction) uint64
    // Reject, when it returns a message, fails eth_estimateGas with it.
    Reject func(to common.Address, data []byte) string

    mu        sync.Mutex
    contracts map[common.Address]*contract
    calls     map[string]int
    batches   int
    sent      []*types.Transaction
    polls     map[common.Hash]int
}

func NewChainNode(chainID uint64) *ChainNode {
    return &ChainNode{
        ChainID:   chainID,
        contracts: map[common.Address]*contract{},
        calls:     map[string]int{},
        polls:     map[common.Hash]int{},
    }
}

// Handle registers fn for method on the contract at addr.
func (n *ChainNode) Handle(addr common.Address, a *abi.ABI, method string, fn MethodFunc) {
    n.mu.Lock()
    defer n.mu.Unlock()
    c := n.contracts[addr]
    if c == nil {
        c = &contract{abi: a, methods: map[string]MethodFunc{}}
        n.contracts[addr] = c
    }
    c.methods[method] = fn
}

// Return registers a constant answer.
func (n *ChainNode) Return(addr common.Address, a *abi.ABI, method string, outs ...interface{}) {
    n.Handle(addr, a, method, func([]interface{}) ([]interface{}, error) { return outs, nil })
}

// Unhandle drops a method so calls to it revert.
func (n *ChainNode) Unhandle(addr common.Address, method string) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if c := n.contracts[addr]; c != nil {
        delete(c.methods, method)
    }
}

func (n *ChainNode) Calls(method string) int {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.calls[method]
}

func (n *ChainNode) Batches() int {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.batches
}

func (n *ChainNode) Sent() []*types.Transaction {
    n.mu.Lock()
    defer n.mu.Unlock()
    return append([]*types.Transaction(nil), n.sent...)
}

type rpcReq struct {
    ID     json.RawMessage   `json:"id"`
    Method string            `json:"method"`
    Params []json.RawMessage `json:"params"`
}

type rpcErr struct {
    Code    int    `json:"code"`
    Message string `json:"message"`
}

type rpcResp struct {
    JSONRPC string          `json:"jsonrpc"`
    ID      json.RawMessage `json:"id"`
    Result  interface{}     `json:"result"`
    Error   *rpcErr         `json:"error,omitempty"`
}

var errRevert = &rpcErr{Code: 3, Message: "execution reverted"}

func (n *ChainNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
    body, err := io.ReadAll(r.Body)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    body = bytes.TrimSpace(body)
    if len(body) > 0 && body[0] == '[' {
        var reqs []rpcReq
        if err := json.Unmarshal(body, &reqs); err != nil {
            http.Error(w, err.Error(), http.StatusBadRequest)
            return
        }
        n.mu.Lock()
        n.batches++
        n.mu.Unlock()
        out := make([]rpcResp, len(reqs))
        for i, req := range reqs {
            out[i] = n.dispatch(req)
        }
        _ = json.NewEncoder(w).Encode(out)
        return
    }
    var req rpcReq
    if err := json.Unmarshal(body, &req); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    _ = json.NewEncoder(w).Encode(n.dispatch(req))
}

func (n *ChainNode) dispatch(req rpcReq) rpcResp {
    resp := rpcResp{JSONRPC: "2.0", ID: req.ID}
    switch req.Method {
    case "eth_chainId":
        resp.Result = hexutil.Uint64(n.ChainID)
    case "eth_call":
        res, e := n.ethCall(req.Params)
        if e != nil {
            resp.Error = e
        } else {
            resp.Result = res
        }
    case "eth_getCode":
        var addr common.Address
        if len(req.Params) > 0 { _ = json.Unmarshal(req.Params[0], &addr) }
        n.mu.Lock()
        _, ok := n.contracts[addr]
        n.mu.Unlock()
        if ok {
            resp.Result = hexutil.Bytes{0x60, 0x80}
        } else {
            resp.Result = hexutil.Bytes{}
        }
    case "eth_getTransactionCount":
        n.mu.Lock()
        resp.Result = hexutil.Uint64(len(n.sent))
        n.mu.Unlock()
    case "eth_gasPrice":
        resp.Result = (*hexutil.Big)(big.NewInt(1_000_000_000))
    case "eth_estimateGas":
        var msg callMsg
        if len(req.Params) > 0 { _ = json.Unmarshal(req.Params[0], &msg) }
        if n.Reject != nil {
            if reason := n.Reject(msg.To, msg.input()); reason != "" {
                resp.Error = &rpcErr{Code: 3, Message: "execution reverted: " + reason}
                break
            }
        }
        resp.Result = hexutil.Uint64(100_000)
    case "eth_sendRawTransaction":
        var raw hexutil.Bytes
        if len(req.Params) > 0 { _ = json.Unmarshal(req.Params[0], &raw) }
        tx := new(types.Transaction)
        if err := tx.UnmarshalBinary(raw); err != nil {
            resp.Error = &rpcErr{Code: -32000, Message: err.Error()}
            break
        }
        n.mu.Lock()
        n.sent = append(n.sent, tx)
        n.mu.Unlock()
        resp.Result = tx.Hash()
    case "eth_getTransactionReceipt":
        var h common.Hash
        if len(req.Params) > 0 { _ = json.Unmarshal(req.Params[0], &h) }
        resp.Result = n.receipt(h)
    default:
        resp.Error = &rpcErr{Code: -32601, Message: "method not found: " + req.Method}
    }
    return resp
}

type callMsg struct {
    To    common.Address `json:"to"`
    Data  hexutil.Bytes  `json:"data"`
    Input hexutil.Bytes  `json:"input"`
}

func (m callMsg) input() []byte {
    if len(m.Data) > 0 { return m.Data }
    return m.Input
}

func (n *ChainNode) ethCall(params []json.RawMessage) (interface{}, *rpcErr) {
    if len(params) == 0 {
        return nil, &rpcErr{Code: -32602, Message: "missing params"}
    }
    var msg callMsg
    if err := json.Unmarshal(params[0], &msg); err != nil {
        return nil, &rpcErr{Code: -32602, Message: err.Error()}
    }
    data := msg.input()
    n.mu.Lock()
    c := n.contracts[msg.To]
    n.mu.Unlock()
    if c == nil || len(data) < 4 {
        return hexutil.Bytes{}, nil
    }
    m, err := c.abi.MethodById(data[:4])
    if err != nil { return nil, errRevert }
    n.mu.Lock()
    n.calls[m.Name]++
    fn := c.methods[m.Name]
    n.mu.Unlock()
    if fn == nil { return nil, errRevert }
    args, err := m.Inputs.Unpack(data[4:])
    if err != nil { return nil, &rpcErr{Code: -32602, Message: err.Error()} }
    outs, err := fn(args)
    if err != nil { return nil, &rpcErr{Code: 3, Message: "execution reverted: " + err.Error()} }
    packed, err := m.Outputs.Pack(outs...)
    if err != nil { return nil, &rpcErr{Code: -32603, Message: err.Error()} }
    return hexutil.Bytes(packed), nil
}

func (n *ChainNode) receipt(h common.Hash) interface{} {
    n.mu.Lock()
    defer n.mu.Unlock()
    var tx *types.Transaction
    for _, t := range n.sent {
        if t.Hash() == h { tx = t }
    }
    if tx == nil { return nil }
    n.polls[h]++
    if n.polls[h] <= n.ReceiptAfter { return nil }
    status := types.ReceiptStatusSuccessful
    if n.TxStatus != nil { status = n.TxStatus(tx) }
    return &types.Receipt{
        Status:            status,
        CumulativeGasUsed: 21000,
        GasUsed:           21000,
        Logs:              []*types.Log{},
        TxHash:            h,
        BlockNumber:       big.NewInt(1),
    }
}
