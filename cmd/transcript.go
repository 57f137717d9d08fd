package main

import (
	"os"

	"github.com/pkg/errors"
)

// Transcript appends interpreter input and output to a file.
type Transcript struct {
	file *os.File
}

func OpenTranscript(name string) (*Transcript, error) {
	file, err := os.OpenFile(name, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "qtest : failed to open log file")
	}

	return &Transcript{file: file}, nil
}

func (t *Transcript) Writeln(line string) error {
	if t == nil {
		return nil
	}

	_, err := t.file.WriteString(line + "\n")
	return errors.Wrap(err, "qtest : failed to write log file")
}

func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}

	return errors.Wrap(t.file.Close(), "qtest : failed to close log file")
}
