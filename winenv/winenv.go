// SPDX-License-Identifier: MIT

//go:build windows

// Package winenv reads and edits persistent Windows environment variables
// through the registry. User variables live under HKCU\Environment, machine
// variables under the session manager key in HKLM.
package winenv

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/sys/windows/registry"
)

// Scope selects which environment block to operate on.
type Scope int

const (
	// User targets the current user's environment variables.
	User Scope = iota
	// Machine targets the system-wide environment variables. Writing
	// usually requires elevation.
	Machine
)

func (s Scope) location() (registry.Key, string, error) {
	switch s {
	case User:
		return registry.CURRENT_USER, `Environment`, nil
	case Machine:
		return registry.LOCAL_MACHINE,
			`SYSTEM\CurrentControlSet\Control\Session Manager\Environment`, nil
	}
	return 0, "", fmt.Errorf("winenv: unknown scope %d", int(s))
}

// ErrNotExist reports a missing variable.
var ErrNotExist = registry.ErrNotExist

// hasVarRegex detects %VAR% style references, which require the value to be
// stored as REG_EXPAND_SZ.
var hasVarRegex = regexp.MustCompile(`%[^%:=\s]+%`)

// Env wraps an open registry handle on one environment block.
type Env struct {
	key registry.Key
}

// Open returns an Env for scope. With writable false the handle only allows
// queries.
func Open(scope Scope, writable bool) (*Env, error) {
	root, path, err := scope.location()
	if err != nil {
		return nil, err
	}
	access := uint32(registry.READ)
	if writable {
		access |= registry.WRITE
	}
	key, err := registry.OpenKey(root, path, access)
	if err != nil {
		return nil, fmt.Errorf("winenv: open %s: %w", path, err)
	}
	return &Env{key: key}, nil
}

// Close releases the registry handle.
func (e *Env) Close() error {
	return e.key.Close()
}

// Enum returns every variable of the environment block.
func (e *Env) Enum() (map[string]string, error) {
	names, err := e.key.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("winenv: enum: %w", err)
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		value, _, err := e.key.GetStringValue(name)
		if err != nil {
			return nil, fmt.Errorf("winenv: enum %s: %w", name, err)
		}
		out[name] = value
	}
	return out, nil
}

// Query returns the value of name, or ErrNotExist.
func (e *Env) Query(name string) (string, error) {
	value, _, err := e.key.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("winenv: query %s: %w", name, err)
	}
	return value, nil
}

// QueryDefault returns the value of name, or def when it does not exist.
func (e *Env) QueryDefault(name, def string) (string, error) {
	value, _, err := e.key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("winenv: query %s: %w", name, err)
	}
	return value, nil
}

// Replace sets name to value. Values containing %VAR% references are stored
// as REG_EXPAND_SZ so the shell expands them, plain values as REG_SZ.
func (e *Env) Replace(name, value string) error {
	var err error
	if hasVarRegex.MatchString(value) {
		err = e.key.SetExpandStringValue(name, value)
	} else {
		err = e.key.SetStringValue(name, value)
	}
	if err != nil {
		return fmt.Errorf("winenv: set %s: %w", name, err)
	}
	return nil
}

// Suffix appends value to the current value of name, creating it when
// missing.
func (e *Env) Suffix(name, value string) error {
	old, err := e.QueryDefault(name, "")
	if err != nil {
		return err
	}
	return e.Replace(name, old+value)
}

// Prefix prepends value to the current value of name, creating it when
// missing.
func (e *Env) Prefix(name, value string) error {
	old, err := e.QueryDefault(name, "")
	if err != nil {
		return err
	}
	return e.Replace(name, value+old)
}

// Remove deletes name and returns its previous value.
func (e *Env) Remove(name string) (string, error) {
	old, err := e.QueryDefault(name, "")
	if err != nil {
		return "", err
	}
	if err := e.key.DeleteValue(name); err != nil {
		return "", fmt.Errorf("winenv: delete %s: %w", name, err)
	}
	return old, nil
}

// Clear deletes every variable of the environment block. Use with care.
func (e *Env) Clear() error {
	names, err := e.key.ReadValueNames(0)
	if err != nil {
		return fmt.Errorf("winenv: clear: %w", err)
	}
	for _, name := range names {
		if err := e.key.DeleteValue(name); err != nil {
			return fmt.Errorf("winenv: clear %s: %w", name, err)
		}
	}
	return nil
}

// Enum is a one-shot variant of Env.Enum.
func Enum(scope Scope) (map[string]string, error) {
	env, err := Open(scope, false)
	if err != nil {
		return nil, err
	}
	defer env.Close()
	return env.Enum()
}

// Query is a one-shot variant of Env.Query.
func Query(scope Scope, name string) (string, error) {
	env, err := Open(scope, false)
	if err != nil {
		return "", err
	}
	defer env.Close()
	return env.Query(name)
}

// QueryDefault is a one-shot variant of Env.QueryDefault.
func QueryDefault(scope Scope, name, def string) (string, error) {
	env, err := Open(scope, false)
	if err != nil {
		return "", err
	}
	defer env.Close()
	return env.QueryDefault(name, def)
}

// Replace is a one-shot variant of Env.Replace.
func Replace(scope Scope, name, value string) error {
	env, err := Open(scope, true)
	if err != nil {
		return err
	}
	defer env.Close()
	return env.Replace(name, value)
}

// Suffix is a one-shot variant of Env.Suffix.
func Suffix(scope Scope, name, value string) error {
	env, err := Open(scope, true)
	if err != nil {
		return err
	}
	defer env.Close()
	return env.Suffix(name, value)
}

// Prefix is a one-shot variant of Env.Prefix.
func Prefix(scope Scope, name, value string) error {
	env, err := Open(scope, true)
	if err != nil {
		return err
	}
	defer env.Close()
	return env.Prefix(name, value)
}

// Remove is a one-shot variant of Env.Remove.
func Remove(scope Scope, name string) (string, error) {
	env, err := Open(scope, true)
	if err != nil {
		return "", err
	}
	defer env.Close()
	return env.Remove(name)
}

// Clear is a one-shot variant of Env.Clear.
func Clear(scope Scope) error {
	env, err := Open(scope, true)
	if err != nil {
		return err
	}
	defer env.Close()
	return env.Clear()
}
