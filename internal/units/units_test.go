package units

import (
    "encoding/json"
    "math/big"
    "testing"
)

func mustBig(t *testing.T, s string) *big.Int {
    t.Helper()
    v, ok := new(big.Int).SetString(s, 10)
    if !ok { t.Fatalf("bad literal %q", s) }
    return v
}

func TestFormatNativeAndToken(t *testing.T) {
    raw := mustBig(t, "1500000000000000000")
    if got := FormatAmount(true, raw, 18); got != "1.5" {
        t.Fatalf("native: got %q want 1.5", got)
    }
    if got := FormatToken(raw, 18); got != "1" {
        t.Fatalf("erc20 18 decimals: got %q want 1", got)
    }
    if got := FormatToken(raw, 6); got != "1500000000000" {
        t.Fatalf("erc20 6 decimals: got %q want 1500000000000", got)
    }
}

func TestFormatNativeTruncatesToFourPlaces(t *testing.T) {
    cases := map[string]string{
        "0":                    "0",
        "1":                    "0",
        "123456789000000000":   "0.1234",
        "1000000000000000000":  "1",
        "2000100000000000000":  "2.0001",
        "99999999999999999999": "99.9999",
    }
    for in, want := range cases {
        if got := FormatNative(mustBig(t, in)); got != want {
            t.Errorf("FormatNative(%s) = %q want %q", in, got, want)
        }
    }
    if got := FormatNative(nil); got != "0" {
        t.Errorf("nil: got %q", got)
    }
}

func TestBigRoundTrip(t *testing.T) {
    max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
    vals := []*big.Int{
        big.NewInt(0),
        big.NewInt(1),
        mustBig(t, "1500000000000000000"),
        new(big.Int).Lsh(big.NewInt(1), 128),
        max,
    }
    for _, v := range vals {
        got, err := DecodeBig(EncodeBig(v))
        if err != nil { t.Fatalf("decode %s: %v", v, err) }
        if got.Cmp(v) != 0 { t.Fatalf("round trip %s -> %s", v, got) }
    }
}

func TestDecodeBigRejects(t *testing.T) {
    for _, s := range []string{"", "-1", "1.5", "0x10", " 1", "1e18"} {
        if _, err := DecodeBig(s); err == nil {
            t.Errorf("DecodeBig(%q) expected error", s)
        }
    }
}

func TestIntJSON(t *testing.T) {
    max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
    in := struct {
        A Int `json:"a"`
        B Int `json:"b"`
    }{A: NewInt(max)}
    b, err := json.Marshal(in)
    if err != nil { t.Fatal(err) }
    want := `{"a":"` + max.String() + `","b":"0"}`
    if string(b) != want {
        t.Fatalf("marshal: got %s want %s", b, want)
    }
    var out struct {
        A Int `json:"a"`
        B Int `json:"b"`
    }
    if err := json.Unmarshal(b, &out); err != nil { t.Fatal(err) }
    if out.A.Big().Cmp(max) != 0 || out.B.Sign() != 0 {
        t.Fatalf("unmarshal mismatch: %s %s", out.A, out.B)
    }
    if err := json.Unmarshal([]byte(`{"a":12}`), &out); err == nil {
        t.Fatalf("numeric JSON amount should be rejected")
    }
}
