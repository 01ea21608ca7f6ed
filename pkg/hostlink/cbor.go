// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hostlink

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EncodeMessage encodes [msg_type, payload_map]. An empty payload is sent
// as CBOR null.
func EncodeMessage(msgType uint8, payload map[int]interface{}) ([]byte, error) {
	var msg interface{}
	if len(payload) == 0 {
		msg = []interface{}{uint64(msgType), nil}
	} else {
		msg = []interface{}{uint64(msgType), payload}
	}

	data, err := cbor.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MessageTypeName(msgType), err)
	}
	return data, nil
}

// ParseMessage decodes [msg_type, payload_map]. The payload is nil for
// empty messages.
func ParseMessage(data []byte) (msgType uint8, payload map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty CBOR payload")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	v, ok := msg[0].(uint64)
	if !ok {
		return 0, nil, fmt.Errorf("expected uint for message type, got %T", msg[0])
	}
	if v > 255 {
		return 0, nil, fmt.Errorf("message type out of range: %d", v)
	}
	msgType = uint8(v)

	if msg[1] == nil {
		return msgType, nil, nil
	}

	raw, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}

	payload = make(map[int]interface{}, len(raw))
	for key, val := range raw {
		switch k := key.(type) {
		case uint64:
			payload[int(k)] = val
		case int64:
			payload[int(k)] = val
		default:
			return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
		}
	}

	return msgType, payload, nil
}

// GetMapUint extracts a uint64 from a payload map
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	switch val := m[key].(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}

// GetMapFloat extracts a float64 from a payload map. Integers are widened;
// float32 and float16 values decode as float64 already.
func GetMapFloat(m map[int]interface{}, key int) (float64, bool) {
	switch val := m[key].(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}

// GetMapBool extracts a bool from a payload map
func GetMapBool(m map[int]interface{}, key int) (bool, bool) {
	val, ok := m[key].(bool)
	return val, ok
}

// GetMapBytes extracts a byte string from a payload map
func GetMapBytes(m map[int]interface{}, key int) ([]byte, bool) {
	val, ok := m[key].([]byte)
	return val, ok
}
