// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import "github.com/holomush/pluginkit/internal/message"

// Player-facing messages emitted by every root command. Hosts may override
// them through a message.Catalog seeded with CoreMessages.
var (
	MsgUnknownCommand = message.New("command.unknown",
		"This command is not found. Please use /<%> help to see all commands.", "command")
	MsgNoPermission = message.New("command.no-permission",
		"You don't have permission to use this command")
	MsgInvalidFormat = message.New("command.invalid-format",
		"This command format is not valid. Please use /<%> help for more info.", "command")
	MsgInvalidCommand = message.New("command.invalid",
		"This command is invalid. Please use /<%> help to see all commands.", "command")
	MsgRateLimited = message.New("command.rate-limited",
		"Too many commands. Please wait <%>ms.", "cooldown")

	MsgUnknownChapter = message.New("help.unknown-chapter", "Unknown chapter")
	MsgHelpHeader     = message.New("help.header",
		"---- Help -- Page <%>/<%>----", "page", "max")
	MsgHelpEntry = message.New("help.entry",
		"<%> : /<%> <%> <%>\n  <%>", "token", "root", "subcommand", "usage", "description")
	MsgHelpFooter = message.New("help.footer",
		"Type /<%> help <%> to see more commands", "root", "page")
)

// CoreMessages returns every message record used by this package.
func CoreMessages() []message.Record {
	return []message.Record{
		MsgUnknownCommand,
		MsgNoPermission,
		MsgInvalidFormat,
		MsgInvalidCommand,
		MsgRateLimited,
		MsgUnknownChapter,
		MsgHelpHeader,
		MsgHelpEntry,
		MsgHelpFooter,
	}
}
