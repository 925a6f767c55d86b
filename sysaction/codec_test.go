package sysaction

import (
	"errors"
	"testing"

	"github.com/tos-network/tosvault/common"
)

type recordingHandler struct {
	kind ActionKind
	seen []ActionKind
	err  error
}

func (h *recordingHandler) CanHandle(kind ActionKind) bool { return kind == h.kind }

func (h *recordingHandler) Handle(ctx *Context, sa *SysAction) error {
	h.seen = append(h.seen, sa.Action)
	return h.err
}

func TestDecodeRejects(t *testing.T) {
	for _, input := range []string{
		"", "{", `{"payload":{}}`,
		`{"action":"VAULT_CLOSE","extra":1}`,
		`{"action":"VAULT_CLOSE"} {}`,
	} {
		if _, err := Decode([]byte(input)); !errors.Is(err, ErrInvalidSysAction) {
			t.Errorf("Decode(%q): want ErrInvalidSysAction, got %v", input, err)
		}
	}
}

func TestMakeAndDecodePayload(t *testing.T) {
	to := common.Address{0x09}
	data, err := MakeSysAction(ActionSystemTransfer, TransferPayload{To: to, Amount: 77})
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	sa, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var p TransferPayload
	if err := DecodePayload(sa, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if sa.Action != ActionSystemTransfer || p.To != to || p.Amount != 77 {
		t.Fatalf("round trip mismatch: %v %+v", sa.Action, p)
	}
	for _, bad := range []string{`{"amount":"x"}`, `{"amout":5}`, `{"amount":5} 1`} {
		sa.Payload = []byte(bad)
		if err := DecodePayload(sa, &p); !errors.Is(err, ErrInvalidSysAction) {
			t.Fatalf("payload %s: want ErrInvalidSysAction, got %v", bad, err)
		}
	}
	sa.Payload = []byte("null")
	if err := DecodePayload(sa, &p); err != nil {
		t.Fatalf("null payload: %v", err)
	}
	sa.Payload = []byte(`{"amount":"x"}`)
	if err := DecodePayload(sa, &p); !errors.Is(err, ErrInvalidSysAction) {
		t.Fatalf("bad payload: want ErrInvalidSysAction, got %v", err)
	}
}

func TestRegistryDispatch(t *testing.T) {
	boom := errors.New("boom")
	r := &Registry{}
	h := &recordingHandler{kind: ActionVaultClose, err: boom}
	r.Register(h)

	data, _ := MakeSysAction(ActionVaultClose, nil)
	if _, err := r.Execute(&Context{}, data); err != boom {
		t.Fatalf("want handler error, got %v", err)
	}
	if len(h.seen) != 1 {
		t.Fatalf("handler called %d times", len(h.seen))
	}
	data, _ = MakeSysAction(ActionVaultLock, nil)
	if _, err := r.Execute(&Context{}, data); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("want ErrUnknownAction, got %v", err)
	}
}
