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

/*
Package proto implements the ghack wire protocol.

A frame on the wire is

	| length (uint16, big endian) | body (length bytes) |

where the body is one Message envelope in protobuf wire format, per
protocol.proto at the repository root. The envelope carries a Type
discriminant and exactly one payload matching it; payload fields populated
for any other type are skipped by the decoder.

Encode side:

	enc := proto.NewEncoder(conn)
	err := enc.Encode(proto.NewLogin("alice", "", 0))

Decode side:

	dec := proto.NewDecoder(conn)
	var msg proto.Message
	err := dec.Decode(&msg)

DecodeFrame operates on a caller-owned buffer instead and returns
ErrIncomplete until a full frame is buffered, for transports that deliver
partial reads.

A body larger than 65535 bytes cannot be framed; Encode fails with
ErrPayloadTooLarge before any bytes are written. A body that does not parse
fails with ErrMalformedPayload; the stream is not self-synchronizing past a
bad frame, so the connection must be torn down.
*/
package proto
