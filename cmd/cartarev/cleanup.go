package main

import "fmt"

// Run executes the cleanup command.
func (c *CleanupCmd) Run(deps *Dependencies) error {
	codes, err := deps.Codes.DeleteExpiredCodes(deps.Ctx)
	if err != nil {
		return err
	}
	tokens, err := deps.Tokens.DeleteExpiredTokens(deps.Ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "removed %d expired codes and %d expired tokens\n", codes, tokens)
	return nil
}
