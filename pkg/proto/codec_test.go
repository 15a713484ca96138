//
//  Copyright 2026 The ghack Authors.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package proto

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	"google.golang.org/protobuf/encoding/protowire"
)

func allMessageKinds() []*Message {
	return []*Message{
		NewConnect(CurrentVersion, "ghack 1.0"),
		NewDisconnect(ReasonQuit, "bye"),
		NewLogin("alice", "s3cret", 0x3),
		NewLoginResult(false, LoginServerFull),
		NewAddEntity(7, "Player"),
		NewRemoveEntity(7, "Player"),
		NewUpdateState(7, "Health", Int(30)),
		NewMove(Vector3{1, 0, -1}),
		NewAssignControl(7, false),
		NewEntityDeath(7, "Player", 9, "Gaul"),
		NewCombatHit(9, "Gaul", 7, "Player", 12.5),
	}
}

func TestRoundTripAllKinds(t *testing.T) {
	for _, m := range allMessageKinds() {
		frame, err := EncodeFrame(m)
		if err != nil {
			t.Fatalf("%s: encode failed: %s", m.Type, err)
		}
		got, n, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("%s: decode failed: %s", m.Type, err)
		}
		if n != len(frame) {
			t.Errorf("%s: consumed %d of %d bytes", m.Type, n, len(frame))
		}
		if !reflect.DeepEqual(got, m) {
			t.Errorf("%s: round trip mismatch\n got %+v\nwant %+v", m.Type, got, m)
		}
	}
}

func TestRoundTripStateValues(t *testing.T) {
	values := []*StateValue{
		Bool(true),
		Bool(false),
		Int(0),
		Int(-1),
		Int(1 << 40),
		Float(0),
		Float(-2.75),
		Str(""),
		Str("axe.mdl"),
		Vec3(1.5, -2.5, 1e9),
		Arr(),
		Arr(Int(1), Str("two"), Arr(Bool(true), Float(3))),
	}
	for i, v := range values {
		frame, err := EncodeFrame(NewUpdateState(1, "S", v))
		if err != nil {
			t.Fatalf("case %d: encode failed: %s", i, err)
		}
		got, _, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("case %d: decode failed: %s", i, err)
		}
		if !got.UpdateState.Value.Equals(v) {
			t.Errorf("case %d: got %s, want %s", i, got.UpdateState.Value, v)
		}
	}
}

func TestStreamingOneBytePerRead(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	msgs := allMessageKinds()
	for _, m := range msgs {
		if err := enc.Encode(m); err != nil {
			t.Fatalf("encode %s: %s", m.Type, err)
		}
	}

	dec := NewDecoder(iotest.OneByteReader(&buf))
	for _, want := range msgs {
		var got Message
		if err := dec.Decode(&got); err != nil {
			t.Fatalf("decode %s: %s", want.Type, err)
		}
		if !reflect.DeepEqual(&got, want) {
			t.Errorf("%s: mismatch after byte-at-a-time stream", want.Type)
		}
	}
	var extra Message
	if err := dec.Decode(&extra); err != io.EOF {
		t.Errorf("decode past end: got %v, want io.EOF", err)
	}
}

// Pads an UpdateState string value until the body no longer fits a uint16
// length, pinning the boundary at exactly 65535 bytes.
func TestPayloadSizeBoundary(t *testing.T) {
	bodyLen := func(pad int) (int, error) {
		frame, err := EncodeFrame(NewUpdateState(1, "Asset", Str(strings.Repeat("x", pad))))
		if err != nil {
			return 0, err
		}
		return len(frame) - kFrameHeaderSize, nil
	}

	// Measure with a pad large enough that every nested length varint is
	// already at its final width, then extend by the remaining headroom.
	const base = 20000
	n, err := bodyLen(base)
	if err != nil {
		t.Fatal(err)
	}
	pad := base + kMaxPayloadSize - n
	n, err = bodyLen(pad)
	if err != nil {
		t.Fatalf("body of %d bytes should encode: %s", kMaxPayloadSize, err)
	}
	if n != kMaxPayloadSize {
		t.Fatalf("got body of %d bytes, want %d", n, kMaxPayloadSize)
	}
	if _, err = bodyLen(pad + 1); err != ErrPayloadTooLarge {
		t.Errorf("oversized body: got %v, want ErrPayloadTooLarge", err)
	}

	frame, err := EncodeFrame(NewUpdateState(1, "Asset", Str(strings.Repeat("x", pad))))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err = DecodeFrame(frame); err != nil {
		t.Errorf("decode of max-size frame failed: %s", err)
	}
}

func TestDecodeIncomplete(t *testing.T) {
	frame, err := EncodeFrame(NewMove(Vector3{1, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(frame); i++ {
		if _, n, err := DecodeFrame(frame[:i]); err != ErrIncomplete || n != 0 {
			t.Fatalf("prefix of %d bytes: got (%d, %v), want (0, ErrIncomplete)", i, n, err)
		}
	}
	if _, n, err := DecodeFrame(frame); err != nil || n != len(frame) {
		t.Fatalf("full frame: got (%d, %v)", n, err)
	}
}

func frameOf(body []byte) []byte {
	frame := make([]byte, kFrameHeaderSize+len(body))
	EncByteOrder.PutUint16(frame, uint16(len(body)))
	copy(frame[kFrameHeaderSize:], body)
	return frame
}

func TestDecodeUnknownDiscriminant(t *testing.T) {
	body := protowire.AppendTag(nil, kFieldMsgType, protowire.VarintType)
	body = protowire.AppendVarint(body, 99)
	body = protowire.AppendTag(body, kFieldMove, protowire.BytesType)
	body = protowire.AppendBytes(body, appendMove(nil, &Move{}))
	if _, _, err := DecodeFrame(frameOf(body)); err != ErrMalformedPayload {
		t.Errorf("got %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeMissingPayload(t *testing.T) {
	// Discriminant says Move but only a Login payload is present.
	body := protowire.AppendTag(nil, kFieldMsgType, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(TypeMove))
	body = protowire.AppendTag(body, kFieldLogin, protowire.BytesType)
	body = protowire.AppendBytes(body, appendLogin(nil, &Login{Name: "alice"}))
	if _, _, err := DecodeFrame(frameOf(body)); err != ErrMalformedPayload {
		t.Errorf("got %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeExtraPayloadIgnored(t *testing.T) {
	body := protowire.AppendTag(nil, kFieldMsgType, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(TypeMove))
	body = protowire.AppendTag(body, kFieldAddEntity, protowire.BytesType)
	body = protowire.AppendBytes(body, appendEntityRef(nil, 5, "stray"))
	body = protowire.AppendTag(body, kFieldMove, protowire.BytesType)
	body = protowire.AppendBytes(body, appendMove(nil, &Move{Direction: Vector3{0, 1, 0}}))
	m, _, err := DecodeFrame(frameOf(body))
	if err != nil {
		t.Fatalf("decode failed: %s", err)
	}
	if m.Type != TypeMove || m.Move == nil || m.AddEntity != nil {
		t.Errorf("stray payload not ignored: %+v", m)
	}
}

func TestDecodeValueFieldMismatch(t *testing.T) {
	// Discriminant INT with only string_val populated.
	sv := protowire.AppendTag(nil, 1, protowire.VarintType)
	sv = protowire.AppendVarint(sv, uint64(ValueInt))
	sv = protowire.AppendTag(sv, 5, protowire.BytesType)
	sv = protowire.AppendString(sv, "not an int")

	us := protowire.AppendTag(nil, 1, protowire.VarintType)
	us = protowire.AppendVarint(us, 1)
	us = protowire.AppendTag(us, 2, protowire.BytesType)
	us = protowire.AppendString(us, "Health")
	us = protowire.AppendTag(us, 3, protowire.BytesType)
	us = protowire.AppendBytes(us, sv)

	body := protowire.AppendTag(nil, kFieldMsgType, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(TypeUpdateState))
	body = protowire.AppendTag(body, kFieldUpdateState, protowire.BytesType)
	body = protowire.AppendBytes(body, us)
	if _, _, err := DecodeFrame(frameOf(body)); err != ErrMalformedPayload {
		t.Errorf("got %v, want ErrMalformedPayload", err)
	}
}

func TestValueDepthGuard(t *testing.T) {
	nested := func(depth int) *StateValue {
		v := Int(1)
		for i := 0; i < depth; i++ {
			v = Arr(v)
		}
		return v
	}
	encode := func(depth int) []byte {
		frame, err := EncodeFrame(NewUpdateState(1, "S", nested(depth)))
		if err != nil {
			t.Fatalf("encode depth %d: %s", depth, err)
		}
		return frame
	}

	var m Message
	dec := NewDecoder(bytes.NewReader(encode(4)))
	dec.SetMaxValueDepth(4)
	if err := dec.Decode(&m); err != nil {
		t.Errorf("depth at limit: %s", err)
	}

	dec = NewDecoder(bytes.NewReader(encode(5)))
	dec.SetMaxValueDepth(4)
	if err := dec.Decode(&m); err != ErrMalformedPayload {
		t.Errorf("depth past limit: got %v, want ErrMalformedPayload", err)
	}
}

func TestDecoderEOFBetweenAndWithinFrames(t *testing.T) {
	var m Message
	if err := NewDecoder(bytes.NewReader(nil)).Decode(&m); err != io.EOF {
		t.Errorf("clean close: got %v, want io.EOF", err)
	}

	frame, err := EncodeFrame(NewAddEntity(1, "e"))
	if err != nil {
		t.Fatal(err)
	}
	for _, cut := range []int{1, kFrameHeaderSize, len(frame) - 1} {
		err := NewDecoder(bytes.NewReader(frame[:cut])).Decode(&m)
		if _, ok := err.(*ProtocolError); !ok {
			t.Errorf("truncated at %d: got %v, want *ProtocolError", cut, err)
		}
	}
}

func TestEncodeInvalidMessage(t *testing.T) {
	if _, err := EncodeFrame(&Message{Type: TypeLogin}); err != ErrInvalidMessage {
		t.Errorf("missing payload: got %v, want ErrInvalidMessage", err)
	}
	if _, err := EncodeFrame(&Message{Type: TypeUpdateState,
		UpdateState: &UpdateState{Id: 1, StateId: "S"}}); err != ErrInvalidMessage {
		t.Errorf("missing value: got %v, want ErrInvalidMessage", err)
	}
}

func TestProtocolErrorSentinels(t *testing.T) {
	for _, e := range []*ProtocolError{ErrPayloadTooLarge, ErrMalformedPayload, ErrInvalidMessage} {
		if !strings.HasPrefix(e.Error(), "ProtocolError: ") {
			t.Errorf("got %q", e.Error())
		}
		if e.Unwrap() != nil {
			t.Errorf("%s: sentinel carries no cause", e)
		}
	}
	if err := NewProtocolError(io.ErrUnexpectedEOF); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped cause not visible through errors.Is")
	}
}

func TestOptionalFieldsOmitted(t *testing.T) {
	m := NewAddEntity(3, "")
	frame, err := EncodeFrame(m)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if got.AddEntity.Id != 3 || got.AddEntity.Name != "" {
		t.Errorf("got %+v", got.AddEntity)
	}
}
