// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view of the polychat TUI.

The view is a Bubble Tea model over a session.Manager. It owns no
conversation state: every frame is rendered from the manager's snapshot.

# Request flow

Enter calls Manager.Begin, which appends the user turn at once. The adapter
call runs in a tea.Cmd through Manager.Dispatch and comes back as a
replyMsg, which the model hands to Manager.Complete. Only one request can
be in flight; a second Enter while loading shows a notice and keeps the
input.

# Slash commands (commands.go)

	/provider <id>    switch backend (cloud, local, generative)
	/model <id>       select the cloud model
	/models           list cloud models
	/temp <f>         temperature, 0-2
	/maxtokens <n>    max tokens, 256-4096
	/topp <f>         top-p, 0-1
	/freq <f>         frequency penalty, -2-2
	/presence <f>     presence penalty, -2-2
	/system <text>    system prompt ("reset" restores the default)
	/settings         show current settings
	/new <seed>       start a new thread from seed
	/clear            discard the conversation
	/help             list commands
	/quit             exit

Settings changes apply to the next request; a request already in flight
keeps the settings it started with.

# Usage

	m := chat.New(chat.Options{Manager: mgr, Theme: styles.NewTheme(), Markdown: true})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

Run does the same and also starts a config.Watcher when a config path is
given, forwarding reloaded settings as SettingsReloadedMsg.
*/
package chat
