// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/polychat/internal/session"
	"github.com/jeranaias/polychat/internal/settings"
)

// replyMsg carries the result of an adapter call back into Update.
type replyMsg struct {
	outcome session.Outcome
}

// SettingsReloadedMsg is sent when the config file changed on disk.
// Err is set when the new file could not be loaded.
type SettingsReloadedMsg struct {
	Settings settings.Settings
	Err      error
}
