// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives the conversation lifecycle. The controller owns
// the transcript and the settings store, runs at most one model turn at a
// time, and queues input submitted while busy for in-order replay once the
// turn settles, so no submitted line is ever lost.
//
// The UI layer submits raw lines and forwards stream events; everything
// that mutates conversation state happens here, under one lock.
package session
