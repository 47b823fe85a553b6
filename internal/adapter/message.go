package adapter

import (
	"regexp"
	"strings"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/iris"
	"github.com/kapu/group-notice-bot/internal/util"
)

// Control characters other than tab and newline.
var controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F]`)

var commandAliases = map[string]domain.CommandType{
	"start":          domain.CommandStart,
	"시작":             domain.CommandStart,
	"help":           domain.CommandHelp,
	"도움말":            domain.CommandHelp,
	"register":       domain.CommandRegister,
	"등록":             domain.CommandRegister,
	"unregister":     domain.CommandUnregister,
	"탈퇴":             domain.CommandUnregister,
	"all":            domain.CommandListMembers,
	"전체":             domain.CommandListMembers,
	"show_message":   domain.CommandShowMessage,
	"공지":             domain.CommandShowMessage,
	"create_message": domain.CommandCreateMessage,
	"공지작성":           domain.CommandCreateMessage,
	"clear_message":  domain.CommandClearMessage,
	"공지삭제":           domain.CommandClearMessage,
	"new_group":      domain.CommandNewGroup,
	"그룹생성":           domain.CommandNewGroup,
	"groups":         domain.CommandListGroups,
	"그룹":             domain.CommandListGroups,
}

// MessageAdapter converts chat messages to bot commands
type MessageAdapter struct {
	prefix string
}

func NewMessageAdapter(prefix string) *MessageAdapter {
	return &MessageAdapter{prefix: prefix}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseMessage parses a chat message into a command. Text without the prefix
// or with an unknown command word yields CommandUnknown.
func (ma *MessageAdapter) ParseMessage(message *iris.Message) *ParsedCommand {
	if message == nil || message.Msg == "" {
		return ma.createUnknownCommand("")
	}

	text := strings.TrimSpace(message.Msg)
	if !strings.HasPrefix(text, ma.prefix) {
		return ma.createUnknownCommand(text)
	}

	word, rest := util.SplitFirstField(text[len(ma.prefix):])
	cmdType, ok := commandAliases[util.Normalize(word)]
	if !ok {
		return ma.createUnknownCommand(text)
	}

	return &ParsedCommand{
		Type:       cmdType,
		Params:     ma.parseArgs(cmdType, rest),
		RawMessage: text,
	}
}

func (ma *MessageAdapter) parseArgs(cmdType domain.CommandType, rest string) map[string]any {
	params := make(map[string]any)

	switch cmdType {
	case domain.CommandRegister:
		args := strings.Fields(rest)
		if len(args) > 0 {
			params["group"] = args[0]
		}
		if len(args) > 1 {
			params["credential"] = args[1]
		}
	case domain.CommandCreateMessage:
		if body := ma.sanitizeBody(rest); body != "" {
			params["body"] = body
		}
	case domain.CommandNewGroup:
		name := strings.Join(strings.Fields(rest), " ")
		if name != "" {
			params["name"] = name
		}
	}

	return params
}

func (ma *MessageAdapter) createUnknownCommand(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}

// sanitizeBody strips control characters but keeps line breaks. Length limits
// are enforced by the directory service.
func (ma *MessageAdapter) sanitizeBody(input string) string {
	return strings.TrimSpace(controlCharsPattern.ReplaceAllString(input, ""))
}
