package sysaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSysAction is returned when tx.Data cannot be decoded as a SysAction.
var ErrInvalidSysAction = errors.New("invalid system action payload")

// decodeStrict unmarshals exactly one JSON value with no unknown fields.
func decodeStrict(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after value")
	}
	return nil
}

// Decode parses a SysAction from raw bytes (tx.Data). Unknown envelope
// fields and trailing bytes are rejected, so one action has one encoding
// modulo whitespace and key order.
func Decode(data []byte) (*SysAction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSysAction)
	}
	var sa SysAction
	if err := decodeStrict(data, &sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	if sa.Action == "" {
		return nil, fmt.Errorf("%w: missing action field", ErrInvalidSysAction)
	}
	return &sa, nil
}

// DecodePayload unmarshals sa.Payload into dst. An absent or null payload
// leaves dst untouched; malformed payloads wrap ErrInvalidSysAction.
func DecodePayload(sa *SysAction, dst interface{}) error {
	if len(sa.Payload) == 0 || bytes.Equal(bytes.TrimSpace(sa.Payload), []byte("null")) {
		return nil
	}
	if err := decodeStrict(sa.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidSysAction, sa.Action, err)
	}
	return nil
}

// MakeSysAction encodes an action and its payload for tx.Data. A nil payload
// is omitted.
func MakeSysAction(kind ActionKind, payload interface{}) ([]byte, error) {
	sa := SysAction{Action: kind}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		sa.Payload = b
	}
	return json.Marshal(&sa)
}
