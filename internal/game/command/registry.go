package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias. Names
// and aliases are lowercase, Category is one of Categories(), Handler is set.
// Postcondition: Returns a Registry, or an error listing every violation.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}

	var errs []error
	for i := range cmds {
		cmd := &cmds[i]
		if err := cmd.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, exists := r.commands[cmd.Name]; exists {
			errs = append(errs, fmt.Errorf("duplicate command name: %q", cmd.Name))
			continue
		}
		if owner, exists := r.aliases[cmd.Name]; exists {
			errs = append(errs, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, owner))
			continue
		}
		r.commands[cmd.Name] = cmd

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				errs = append(errs, fmt.Errorf("alias %q of %q shadows a command name", alias, cmd.Name))
				continue
			}
			if existing, exists := r.aliases[alias]; exists {
				errs = append(errs, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name))
				continue
			}
			r.aliases[alias] = cmd.Name
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

func (c *Command) validate() error {
	switch {
	case c.Name == "" || c.Name != strings.ToLower(c.Name):
		return fmt.Errorf("command name %q must be non-empty lowercase", c.Name)
	case c.Handler == "":
		return fmt.Errorf("command %q has no handler", c.Name)
	case !slices.Contains(Categories(), c.Category):
		return fmt.Errorf("command %q has unknown category %q", c.Name, c.Category)
	}
	for _, a := range c.Aliases {
		if a == "" || a != strings.ToLower(a) {
			return fmt.Errorf("command %q alias %q must be non-empty lowercase", c.Name, a)
		}
	}
	return nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	input = strings.ToLower(input)
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	sortByName(result)
	return result
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
