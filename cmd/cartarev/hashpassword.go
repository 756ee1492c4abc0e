package main

import (
	"fmt"

	"github.com/JimmyYuu29/cartarev/yaml"
)

// Run executes the hash-password command.
func (c *HashPasswordCmd) Run(deps *Dependencies) error {
	fmt.Fprintln(deps.Stdout, yaml.HashPassword(c.Password))
	return nil
}
