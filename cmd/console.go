package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"skabillium/lqueue/cmd/db"
)

// Queues longer than this are shown abbreviated.
const showLimit = 50

// Console drives a single queue from a stream of commands and checks every
// result against its own count of the elements the queue should hold.
type Console struct {
	logger     *logrus.Logger
	out        io.Writer
	transcript *Transcript

	alloc *db.Tracker
	queue *db.Queue
	count int

	length   int
	errLimit int
	errors   int
	quit     bool
}

func NewConsole(opts *Options, logger *logrus.Logger, out io.Writer) (*Console, error) {
	opts.normalize()
	c := &Console{
		logger:   logger,
		out:      out,
		alloc:    db.NewTracker(opts.FailPercent, opts.Seed),
		length:   opts.StringLength,
		errLimit: opts.ErrorLimit,
	}

	if opts.LogFile != "" {
		transcript, err := OpenTranscript(opts.LogFile)
		if err != nil {
			return nil, err
		}
		c.transcript = transcript
	}

	return c, nil
}

// Run executes commands read from r until input ends, quit is issued or the
// error limit is reached.
func (c *Console) Run(r io.Reader, echo bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for !c.quit && scanner.Scan() {
		line := scanner.Text()
		if echo {
			c.writeln("cmd> " + line)
		} else if c.transcript != nil {
			c.transcript.Writeln("cmd> " + line)
		}

		c.Execute(line)
		if c.errors >= c.errLimit {
			return errors.Wrapf(ErrErrorLimit, "%d errors", c.errors)
		}
	}

	return errors.Wrap(scanner.Err(), "qtest : failed to read commands")
}

// Execute runs one command line. Failures are counted and logged, and the
// error is returned for callers that want it.
func (c *Console) Execute(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		c.fail("", err)
		return err
	}
	if cmd == nil {
		return nil
	}

	c.logger.WithField("cmd", cmd.Name).Debug("executing")
	if err := c.execute(cmd); err != nil {
		c.fail(cmd.Name, err)
		return err
	}
	return nil
}

func (c *Console) Errors() int {
	return c.errors
}

func (c *Console) Quit() bool {
	return c.quit
}

// Close frees the queue, reports leaked blocks and closes the transcript.
func (c *Console) Close() error {
	if err := c.freeQueue(); err != nil {
		c.fail("free", err)
	}
	if err := c.transcript.Close(); err != nil {
		return err
	}
	c.transcript = nil
	return nil
}

func (c *Console) execute(cmd *Command) error {
	switch cmd.Kind {
	case CmdNew:
		if err := c.freeQueue(); err != nil {
			return err
		}
		c.queue = db.NewQueueWith(c.alloc)
		if c.queue == nil {
			c.warn(cmd, "failed to allocate queue")
		}
		return c.show()
	case CmdFree:
		if c.queue == nil {
			c.warn(cmd, "calling free on null queue")
		}
		if err := c.freeQueue(); err != nil {
			return err
		}
		return c.show()
	case CmdInsertHead, CmdInsertTail:
		return c.insert(cmd)
	case CmdRemoveHead, CmdRemoveHeadQuiet:
		return c.removeHead(cmd)
	case CmdSize:
		return c.size(cmd)
	case CmdReverse:
		if c.queue == nil {
			c.warn(cmd, "calling reverse on null queue")
		}
		c.queue.Reverse()
		if err := c.check(); err != nil {
			return err
		}
		return c.show()
	case CmdSort:
		return c.sort(cmd)
	case CmdShow:
		if err := c.check(); err != nil {
			return err
		}
		return c.show()
	case CmdOption:
		return c.option(cmd)
	case CmdSource:
		return c.source(cmd.Value)
	case CmdLog:
		transcript, err := OpenTranscript(cmd.Value)
		if err != nil {
			return err
		}
		c.transcript.Close()
		c.transcript = transcript
		return nil
	case CmdHelp:
		c.writeln(helpText)
		return nil
	case CmdQuit:
		c.quit = true
		return nil
	}

	return ErrUnknownCmd(cmd.Name)
}

func (c *Console) insert(cmd *Command) error {
	insert := c.queue.InsertHead
	if cmd.Kind == CmdInsertTail {
		insert = c.queue.InsertTail
	}

	if c.queue == nil {
		c.warn(cmd, "calling insert on null queue")
		if insert(cmd.Value) {
			return errors.Wrap(ErrNullQueue, "insertion succeeded")
		}
		return c.show()
	}

	for i := 0; i < cmd.Count; i++ {
		if !insert(cmd.Value) {
			if c.alloc.FailPercent == 0 {
				return errors.Errorf("insertion of %s failed", cmd.Value)
			}
			c.warn(cmd, fmt.Sprintf("insertion of %s failed", cmd.Value))
			break
		}
		c.count++
	}

	if err := c.check(); err != nil {
		return err
	}
	return c.show()
}

func (c *Console) removeHead(cmd *Command) error {
	var buf []byte
	if cmd.Kind == CmdRemoveHead {
		buf = []byte(strings.Repeat("X", c.length))
	}

	if !c.queue.RemoveHead(buf) {
		switch {
		case c.queue == nil:
			c.warn(cmd, "calling remove head on null queue")
		case c.count > 0:
			return errors.Errorf("remove head failed on a queue holding %d elements", c.count)
		default:
			c.warn(cmd, "calling remove head on empty queue")
		}
		if strings.Trim(string(buf), "X") != "" {
			return errors.New("remove head modified the buffer without removing anything")
		}
		return c.show()
	}
	c.count--

	if cmd.Kind == CmdRemoveHead {
		if strings.IndexByte(string(buf), 0) < 0 {
			return errors.New("removed value is not terminated within the buffer")
		}

		removed := db.CString(buf)
		c.writeln(fmt.Sprintf("Removed %s from queue", removed))
		if cmd.HasValue {
			expected := cmd.Value
			if len(expected) >= c.length {
				expected = expected[:c.length-1]
			}
			if removed != expected {
				return errors.Errorf("removed value %s != expected value %s", removed, expected)
			}
		}
	}

	if err := c.check(); err != nil {
		return err
	}
	return c.show()
}

func (c *Console) size(cmd *Command) error {
	if c.queue == nil {
		c.warn(cmd, "calling size on null queue")
	}

	size := 0
	for i := 0; i < cmd.Count; i++ {
		size = c.queue.Size()
		if size != c.count {
			return errors.Errorf("computed queue size as %d, but correct value is %d", size, c.count)
		}
	}

	c.writeln(fmt.Sprintf("Queue size = %d", size))
	return nil
}

func (c *Console) sort(cmd *Command) error {
	if c.queue == nil {
		c.warn(cmd, "calling sort on null queue")
	}
	c.queue.Sort()

	if err := c.check(); err != nil {
		return err
	}
	if !sort.StringsAreSorted(c.queue.Values()) {
		return errors.New("not sorted in ascending order")
	}
	return c.show()
}

func (c *Console) option(cmd *Command) error {
	if !cmd.HasValue {
		c.writeln("Options:")
		c.writeln(fmt.Sprintf("\tfail\t%d\tpercentage of allocations that fail", c.alloc.FailPercent))
		c.writeln(fmt.Sprintf("\tlength\t%d\tbuffer size for removed strings", c.length))
		c.writeln(fmt.Sprintf("\tverbose\t%d\tverbosity level", verbosity(c.logger.GetLevel())))
		c.writeln(fmt.Sprintf("\terror\t%d\tnumber of errors before exiting", c.errLimit))
		return nil
	}

	value, err := strconv.Atoi(cmd.Value)
	if err != nil {
		return ErrNotInt
	}

	switch cmd.Option {
	case "fail", "malloc":
		if value < 0 || value > 100 {
			return ErrNotInt
		}
		c.alloc.FailPercent = value
	case "length":
		if value < 1 {
			return ErrNotInt
		}
		c.length = value
	case "verbose":
		if value < 0 {
			return ErrNotInt
		}
		c.logger.SetLevel(logLevel(value))
	case "error":
		if value < 1 {
			return ErrNotInt
		}
		c.errLimit = value
	default:
		return errors.Wrap(ErrUnknownOpt, cmd.Option)
	}

	return nil
}

func (c *Console) source(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "qtest : failed to open source file")
	}
	defer file.Close()

	return c.Run(file, true)
}

func (c *Console) freeQueue() error {
	c.queue.Free()
	c.queue = nil
	c.count = 0

	if blocks := c.alloc.Blocks(); blocks != 0 {
		return errors.Wrapf(ErrLeakedBlocks, "freed queue, but %d", blocks)
	}
	return nil
}

// check compares the queue with the expected element count.
func (c *Console) check() error {
	if c.queue == nil {
		return nil
	}

	values := c.queue.Values()
	if len(values) != c.count {
		return errors.Errorf("queue holds %d elements, expected %d", len(values), c.count)
	}
	if size := c.queue.Size(); size != c.count {
		return errors.Errorf("queue reports size %d, expected %d", size, c.count)
	}
	return nil
}

func (c *Console) show() error {
	if c.queue == nil {
		c.writeln("q = NULL")
		return nil
	}

	values := c.queue.Values()
	line := "q = ["
	for i, v := range values {
		if i == showLimit {
			line += " ..."
			break
		}
		if i > 0 {
			line += " "
		}
		line += v
	}
	c.writeln(line + "]")
	return nil
}

func (c *Console) fail(name string, err error) {
	c.errors++
	c.logger.WithField("cmd", name).Error(err)
	if c.transcript != nil {
		c.transcript.Writeln("ERROR: " + err.Error())
	}
}

func (c *Console) warn(cmd *Command, message string) {
	c.logger.WithField("cmd", cmd.Name).Warn(message)
}

func (c *Console) writeln(message string) {
	fmt.Fprintln(c.out, message)
	if c.transcript != nil {
		c.transcript.Writeln(message)
	}
}
