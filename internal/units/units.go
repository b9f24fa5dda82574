package units

import (
    "encoding/json"
    "math/big"

    "github.com/pkg/errors"
    "github.com/shopspring/decimal"
)

const (
    NativeDecimals = 18
    // DefaultDecimals is assumed when a token's decimals() cannot be read.
    DefaultDecimals = 18
    nativePlaces    = 4
)

var ErrInvalidAmount = errors.New("invalid amount")

// FormatNative renders a wei amount in whole native units with at most four
// fractional digits. Extra digits are truncated, trailing zeros dropped.
func FormatNative(wei *big.Int) string {
    if wei == nil { return "0" }
    return decimal.NewFromBigInt(wei, -NativeDecimals).Truncate(nativePlaces).String()
}

// FormatToken renders an ERC20 amount as whole token units (floor).
func FormatToken(amount *big.Int, decimals uint8) string {
    if amount == nil { return "0" }
    return decimal.NewFromBigInt(amount, -int32(decimals)).Truncate(0).String()
}

// FormatAmount picks the native or ERC20 rule based on the token address.
func FormatAmount(native bool, amount *big.Int, decimals uint8) string {
    if native {
        return FormatNative(amount)
    }
    return FormatToken(amount, decimals)
}

// EncodeBig is the persistence form of an amount: base-10 digits only.
func EncodeBig(v *big.Int) string {
    if v == nil { return "0" }
    return v.String()
}

// DecodeBig parses the output of EncodeBig. Only non-negative base-10
// integers are accepted.
func DecodeBig(s string) (*big.Int, error) {
    if s == "" {
        return nil, errors.Wrap(ErrInvalidAmount, "empty")
    }
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
        }
    }
    v, ok := new(big.Int).SetString(s, 10)
    if !ok {
        return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
    }
    return v, nil
}

// Int is a big.Int that travels through JSON as a quoted decimal string.
type Int struct {
    v *big.Int
}

func NewInt(v *big.Int) Int {
    if v == nil { return Int{} }
    return Int{v: new(big.Int).Set(v)}
}

func IntFromUint64(n uint64) Int { return Int{v: new(big.Int).SetUint64(n)} }

// Big returns a copy; the zero Int yields 0.
func (i Int) Big() *big.Int {
    if i.v == nil { return new(big.Int) }
    return new(big.Int).Set(i.v)
}

func (i Int) String() string { return EncodeBig(i.v) }

func (i Int) Sign() int {
    if i.v == nil { return 0 }
    return i.v.Sign()
}

func (i Int) MarshalJSON() ([]byte, error) {
    return json.Marshal(EncodeBig(i.v))
}

func (i *Int) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return errors.Wrap(err, "amount must be a decimal string")
    }
    v, err := DecodeBig(s)
    if err != nil { return err }
    i.v = v
    return nil
}
