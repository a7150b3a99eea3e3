package main

import (
	"fmt"
	"sort"
)

// Run executes the profiles command.
func (c *ProfilesCmd) Run(deps *Dependencies) error {
	names := make([]string, 0, len(deps.Config.Endpoints))
	for name := range deps.Config.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		marker := " "
		if name == deps.Config.Default {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %s  %s\n", marker, name, deps.Config.Endpoints[name])
	}
	return nil
}
