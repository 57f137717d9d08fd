package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func ErrUnknownCmd(cmd string) error {
	return fmt.Errorf("unknown command '%s'", cmd)
}

func ErrInvalidNArg(cmd string) error {
	return fmt.Errorf("invalid number of arguments for command '%s'", cmd)
}

var (
	ErrNotInt       = errors.New("value is not an integer or out of range")
	ErrNullQueue    = errors.New("queue is NULL")
	ErrUnknownOpt   = errors.New("unknown option")
	ErrErrorLimit   = errors.New("error limit exceeded")
	ErrLeakedBlocks = errors.New("blocks still allocated")
)

type CommandType = byte

const (
	CmdNew CommandType = iota
	CmdFree
	CmdInsertHead
	CmdInsertTail
	CmdRemoveHead
	CmdRemoveHeadQuiet
	CmdSize
	CmdReverse
	CmdSort
	CmdShow
	// Interpreter
	CmdOption
	CmdSource
	CmdLog
	CmdHelp
	CmdQuit
)

type Command struct {
	Kind  CommandType
	Name  string // raw command word
	Value string // ih, it, rh, option, source, log
	Count int    // ih, it, size

	Option   string // option
	HasValue bool   // rh with an expected value, option with a name
}

// ParseCommand returns nil and no error for blank or comment-only lines.
func ParseCommand(message string) (*Command, error) {
	split, err := sanitize(message)
	if err != nil {
		return nil, err
	}

	argc := len(split)
	if argc == 0 {
		return nil, nil
	}

	cmd := strings.ToLower(split[0])
	switch cmd {
	case "new", "free", "reverse", "sort", "show", "rhq", "help", "quit":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: simpleCommands[cmd], Name: cmd}, nil
	case "ih", "it":
		if argc < 2 || argc > 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		insert := &Command{Kind: CmdInsertHead, Name: cmd, Value: split[1], Count: 1}
		if cmd == "it" {
			insert.Kind = CmdInsertTail
		}
		if argc == 3 {
			n, err := parseCount(split[2])
			if err != nil {
				return nil, err
			}
			insert.Count = n
		}
		return insert, nil
	case "rh":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		rh := &Command{Kind: CmdRemoveHead, Name: cmd}
		if argc == 2 {
			rh.Value = split[1]
			rh.HasValue = true
		}
		return rh, nil
	case "size":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		size := &Command{Kind: CmdSize, Name: cmd, Count: 1}
		if argc == 2 {
			n, err := parseCount(split[1])
			if err != nil {
				return nil, err
			}
			size.Count = n
		}
		return size, nil
	case "option":
		if argc != 1 && argc != 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		option := &Command{Kind: CmdOption, Name: cmd}
		if argc == 3 {
			option.Option = strings.ToLower(split[1])
			option.Value = split[2]
			option.HasValue = true
		}
		return option, nil
	case "source", "log":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := CmdSource
		if cmd == "log" {
			kind = CmdLog
		}
		return &Command{Kind: kind, Name: cmd, Value: split[1]}, nil
	}

	return nil, ErrUnknownCmd(cmd)
}

var simpleCommands = map[string]CommandType{
	"new":     CmdNew,
	"free":    CmdFree,
	"reverse": CmdReverse,
	"sort":    CmdSort,
	"show":    CmdShow,
	"rhq":     CmdRemoveHeadQuiet,
	"help":    CmdHelp,
	"quit":    CmdQuit,
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrNotInt
	}
	return n, nil
}

const helpText = `Commands:
	new                 | Create new queue
	free                | Delete queue
	ih str [n]          | Insert string str at head of queue n times (default: n == 1)
	it str [n]          | Insert string str at tail of queue n times (default: n == 1)
	rh [str]            | Remove from head of queue, optionally compare to expected value str
	rhq                 | Remove from head of queue without reporting value
	size [n]            | Compute queue size n times (default: n == 1)
	reverse             | Reverse queue
	sort                | Sort queue in ascending order
	show                | Display queue contents
	option [name val]   | Display or set options (fail, length, verbose, error)
	source file         | Read commands from file
	log file            | Copy output to file
	help                | Show this text
	quit                | Exit program`
