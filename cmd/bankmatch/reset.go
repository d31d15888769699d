package main

type resetCmd struct{}

func (r *resetCmd) Run(ctx *context) error {
	ctx.state.Reset()
	return ctx.state.Save()
}
