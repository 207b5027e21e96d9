// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package envx substitutes $VAR and ${VAR} references in configuration
// strings with values from the process environment.
package envx

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// NotSetError reports a referenced environment variable with no value.
type NotSetError struct {
	Name string
}

func (e *NotSetError) Error() string {
	return fmt.Sprintf("environment variable %q is not set", e.Name)
}

// InvalidBraceCharError reports a character not permitted inside a braced
// variable name. Index is the byte offset of the character.
type InvalidBraceCharError struct {
	Char  rune
	Index int
}

func (e *InvalidBraceCharError) Error() string {
	return fmt.Sprintf("invalid character %q in braced variable name at index %d", e.Char, e.Index)
}

// UnterminatedBraceError reports a ${ sequence with no closing brace. Index
// is the byte offset of the dollar sign.
type UnterminatedBraceError struct {
	Index int
}

func (e *UnterminatedBraceError) Error() string {
	return fmt.Sprintf("braced variable starting at index %d is not terminated", e.Index)
}

// Expand replaces environment variable references in s until none remain.
// Each pass substitutes the first reference found and re-scans the result,
// so values containing references are themselves expanded. Names consist of
// ASCII letters, digits, and underscores; ${...} must contain only those
// characters and be terminated.
func Expand(s string) (string, error) {
	for {
		next, changed, err := expandFirst(s)
		if err != nil {
			return "", err
		}
		if !changed {
			return s, nil
		}
		s = next
	}
}

// expandFirst substitutes the first variable reference in s, reporting
// whether a substitution happened.
func expandFirst(s string) (string, bool, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			j := i + 2
			for j < len(s) && s[j] != '}' {
				if !isVarChar(s[j]) {
					r, _ := utf8.DecodeRuneInString(s[j:])
					return "", false, &InvalidBraceCharError{Char: r, Index: j}
				}
				j++
			}
			if j == len(s) {
				return "", false, &UnterminatedBraceError{Index: i}
			}
			value, err := lookup(s[i+2 : j])
			if err != nil {
				return "", false, err
			}
			return s[:i] + value + s[j+1:], true, nil
		}
		j := i + 1
		for j < len(s) && isVarChar(s[j]) {
			j++
		}
		if j == i+1 {
			// A lone dollar sign is literal text; the character after
			// it cannot start another reference.
			i++
			continue
		}
		value, err := lookup(s[i+1 : j])
		if err != nil {
			return "", false, err
		}
		return s[:i] + value + s[j:], true, nil
	}
	return s, false, nil
}

func lookup(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", &NotSetError{Name: name}
	}
	return value, nil
}

func isVarChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
