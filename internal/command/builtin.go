package command

// RegisterBuiltins installs every chat command on r.
func RegisterBuiltins(r *Registry, deps *Dependencies) {
	r.Register(NewStartCommand(deps))
	r.Register(NewHelpCommand(deps))
	r.Register(NewRegisterCommand(deps))
	r.Register(NewUnregisterCommand(deps))
	r.Register(NewListMembersCommand(deps))
	r.Register(NewListGroupsCommand(deps))
	r.Register(NewShowMessageCommand(deps))
	r.Register(NewCreateMessageCommand(deps))
	r.Register(NewClearMessageCommand(deps))
	r.Register(NewNewGroupCommand(deps))
}
