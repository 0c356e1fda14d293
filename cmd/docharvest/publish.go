package main

import (
	"fmt"

	"github.com/fwojciec/docharvest"
)

// Run executes the publish command.
func (c *PublishCmd) Run(deps *Dependencies) error {
	published, err := deps.Publisher.Publish(deps.Ctx, c.DataDir, c.OutputDir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docharvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Published %d package(s) to %s\n", len(published), c.OutputDir)
	return nil
}
