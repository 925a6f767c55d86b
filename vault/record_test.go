package vault

import (
	"bytes"
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/tos-network/tosvault/crypto"
)

func TestRecordLayout(t *testing.T) {
	rec := &Record{StateNonce: 254, VaultNonce: 253}
	enc, err := rec.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(enc) != 10 {
		t.Fatalf("record size: have %d, want 10", len(enc))
	}
	want := crypto.Keccak256([]byte("account:VaultState"))[:8]
	if !bytes.Equal(enc[:8], want) || enc[8] != 254 || enc[9] != 253 {
		t.Fatalf("record layout: %x", enc)
	}
	if err := new(Record).UnmarshalBinary(enc[:9]); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("short record: want ErrInvalidRecord, got %v", err)
	}
}

func TestRecordFuzz(t *testing.T) {
	f := fuzz.New()
	for i := 0; i < 200; i++ {
		var rec Record
		f.Fuzz(&rec)
		enc, _ := rec.MarshalBinary()
		var dec Record
		if err := dec.UnmarshalBinary(enc); err != nil || dec != rec {
			t.Fatalf("round trip %+v: %+v %v", rec, dec, err)
		}

		var junk []byte
		f.Fuzz(&junk)
		if err := dec.UnmarshalBinary(junk); err == nil && !bytes.Equal(junk[:8], recordDiscriminator) {
			t.Fatalf("foreign data accepted: %x", junk)
		}
	}
}
