package domain

type CommandType string

const (
	CommandStart         CommandType = "start"
	CommandHelp          CommandType = "help"
	CommandRegister      CommandType = "register"
	CommandUnregister    CommandType = "unregister"
	CommandListMembers   CommandType = "all"
	CommandShowMessage   CommandType = "show_message"
	CommandCreateMessage CommandType = "create_message"
	CommandClearMessage  CommandType = "clear_message"
	CommandNewGroup      CommandType = "new_group"
	CommandListGroups    CommandType = "groups"
	CommandUnknown       CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandStart, CommandHelp, CommandRegister, CommandUnregister,
		CommandListMembers, CommandShowMessage, CommandCreateMessage,
		CommandClearMessage, CommandNewGroup, CommandListGroups, CommandUnknown:
		return true
	default:
		return false
	}
}
