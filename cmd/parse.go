package main

import (
	"github.com/google/shlex"
	"github.com/pkg/errors"
)

var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// Split a command line into words. Quotes group words, '#' starts a comment.
func sanitize(message string) ([]string, error) {
	split, err := shlex.Split(message)
	if err != nil {
		return nil, errors.Wrap(ErrUnbalancedQuotes, err.Error())
	}
	return split, nil
}
