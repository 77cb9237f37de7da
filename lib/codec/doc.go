// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// Record files on disk are CSV; CBOR is the compact binary form used
// when query results leave the process for another program
// (sensorlog query --format cbor). Each record is one item of a CBOR
// sequence, so consumers can decode a stream of arbitrary length
// without a framing header.
//
// Output is encode-only; nothing in sensorlog reads CBOR back:
//
//	encoder := codec.NewEncoder(os.Stdout)
//	err := encoder.Encode(record)
//
// Types serialized by both the JSON and CBOR outputs carry only `json`
// struct tags; fxamacker/cbor v2 reads them as a fallback when `cbor`
// tags are absent.
package codec
