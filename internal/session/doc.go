// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the live conversation and the submit life-cycle.
//
// A submit runs in three steps so the network call never holds the lock:
//
//   - Begin: validate the text, append the user turn, snapshot the history
//     and settings, set the loading flag
//   - Dispatch: call the selected adapter with that snapshot
//   - Complete: append the assistant turn (reply or error text) and clear
//     the loading flag
//
// Submit and NewThread compose the three steps for synchronous callers.
// The terminal UI calls them separately and runs Dispatch inside a tea.Cmd.
//
// # Overlap
//
// Only one request may be in flight. Begin and BeginNewThread return
// ErrBusy while the loading flag is set. Clear is always allowed; a reply
// that arrives after a Clear or NewThread belongs to a discarded thread and
// is dropped, though it still clears the loading flag.
//
// # Usage
//
//	mgr, err := session.NewManager(session.Config{Registry: reg})
//	reply, err := mgr.Submit(ctx, "hello")
//	for _, m := range mgr.Snapshot() {
//	    fmt.Println(m.Role, m.Content)
//	}
package session
