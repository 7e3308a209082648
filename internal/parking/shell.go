package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headingColor = color.New(color.Bold)
)

// lineReader yields one command line at a time. It returns io.EOF when
// input is exhausted.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) Close() error {
	return nil
}

// Shell is the line-command driver for a Session.
type Shell struct {
	session   *Session
	telemetry *TelemetryProvider
	reader    lineReader
	out       io.Writer
}

// NewShell reads commands from stdin. An interactive terminal gets line
// editing and a persistent history file; piped input is read line by line.
func NewShell(session *Session, telemetry *TelemetryProvider, historyFile string) (*Shell, error) {
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return NewShellWithIO(session, telemetry, os.Stdin, os.Stdout), nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "parking> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("starting shell: %w", err)
	}

	return &Shell{
		session:   session,
		telemetry: telemetry,
		reader:    rl,
		out:       rl.Stdout(),
	}, nil
}

func NewShellWithIO(session *Session, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		session:   session,
		telemetry: telemetry,
		reader:    &scannerReader{scanner: bufio.NewScanner(in)},
		out:       out,
	}
}

// Run processes commands until input ends, the user quits, or ctx is
// cancelled.
func (s *Shell) Run(ctx context.Context) {
	defer s.reader.Close()

	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		line, err := s.reader.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "quit" {
			break
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "init":
		s.handleInit(ctx, parts)
	case "reset":
		s.session.Reset(ctx)
		s.info("System reset. Please initialize again.")
	case "add":
		s.handleAdd(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "park_in":
		s.handleParkIn(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "sort":
		s.handleSort(ctx, parts)
	case "move":
		s.handleMove(ctx, parts)
	case "move_car":
		s.handleMoveCar(ctx, parts)
	case "status":
		s.handleStatus(ctx, parts)
	case "help":
		s.printHelp()
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command")
		s.fail("Unknown command: %s", command)
	}
}

func (s *Shell) success(format string, args ...any) {
	successColor.Fprintf(s.out, format+"\n", args...)
}

func (s *Shell) warn(format string, args ...any) {
	warningColor.Fprintf(s.out, "Warning: "+format+"\n", args...)
}

func (s *Shell) fail(format string, args ...any) {
	errorColor.Fprintf(s.out, "Error: "+format+"\n", args...)
}

func (s *Shell) info(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

// lot returns the session's lot, printing the usual message if there is
// none yet.
func (s *Shell) lot() *InstrumentedParkingLot {
	lot, err := s.session.Lot()
	if err != nil {
		s.fail("Parking lot not created. Use: init <lanes> <capacity>")
		return nil
	}
	return lot
}

// intArgs parses exactly want integer arguments after the command name.
func (s *Shell) intArgs(parts []string, want int, usage string) ([]int, bool) {
	if len(parts) != want+1 {
		s.info("Usage: %s", usage)
		return nil, false
	}
	vals := make([]int, want)
	for i, p := range parts[1:] {
		v, err := strconv.Atoi(p)
		if err != nil {
			s.fail("%q is not a number", p)
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func (s *Shell) handleInit(ctx context.Context, parts []string) {
	args, ok := s.intArgs(parts, 2, "init <lanes> <capacity>")
	if !ok {
		return
	}

	if _, err := s.session.Init(ctx, args[0], args[1]); err != nil {
		s.fail("Please enter valid positive numbers (%v)", err)
		return
	}
	s.success("Created a parking lot with %d lanes of %d cars", args[0], args[1])
}

func (s *Shell) handleAdd(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}

	if len(parts) == 1 {
		id, err := lot.AddNextCar(ctx)
		if err != nil {
			s.fail("%v", err)
			return
		}
		s.success("Car %d added to entrance queue", id)
		return
	}

	args, ok := s.intArgs(parts, 1, "add [car_id]")
	if !ok {
		return
	}
	if err := lot.AddCarToEntrance(ctx, args[0]); err != nil {
		s.fail("A car with ID %d already exists in the system", args[0])
		return
	}
	s.success("Car %d added to entrance queue", args[0])
}

func (s *Shell) reportPlacement(placement Placement, err error) {
	switch {
	case err == nil:
		s.success("Car %d parked in lane %d", placement.CarID, placement.Lane)
	case errors.Is(err, ErrEmptyQueue):
		s.fail("Entrance queue is empty. No car to park")
	case errors.Is(err, ErrLotFull):
		s.fail("Parking full. Car %d cannot be parked", placement.CarID)
	case errors.Is(err, ErrLaneFull):
		s.fail("Selected lane is full. Car %d cannot be parked", placement.CarID)
	default:
		s.fail("%v", err)
	}
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	if len(parts) != 1 {
		s.info("Usage: park")
		return
	}
	s.reportPlacement(lot.ParkFirstAvailable(ctx))
}

func (s *Shell) handleParkIn(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	args, ok := s.intArgs(parts, 1, "park_in <lane>")
	if !ok {
		return
	}
	s.reportPlacement(lot.ParkInLane(ctx, args[0]))
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	args, ok := s.intArgs(parts, 1, "find <car_id>")
	if !ok {
		return
	}

	loc, err := lot.FindCar(ctx, args[0])
	if err != nil {
		s.fail("Car %d not found in any lane", args[0])
		return
	}
	s.success("Car %d found in lane %d at position %d from top", args[0], loc.Lane, loc.Position)
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}

	var (
		id, lane int
		err      error
	)
	switch len(parts) {
	case 2:
		args, ok := s.intArgs(parts, 1, "exit <car_id> [lane]")
		if !ok {
			return
		}
		id = args[0]
		lane, err = lot.ExitCar(ctx, id)
	case 3:
		args, ok := s.intArgs(parts, 2, "exit <car_id> [lane]")
		if !ok {
			return
		}
		id, lane = args[0], args[1]
		_, err = lot.ExitFromTop(ctx, id, lane)
	default:
		s.info("Usage: exit <car_id> [lane]")
		return
	}

	if err != nil {
		s.fail("Cannot remove car %d: %v", id, err)
		return
	}
	s.success("Car %d exited from lane %d", id, lane)
}

func (s *Shell) handleSort(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	args, ok := s.intArgs(parts, 1, "sort <lane>")
	if !ok {
		return
	}
	if err := lot.SortLane(ctx, args[0]); err != nil {
		s.fail("%v", err)
		return
	}
	s.success("Lane %d has been sorted by car ID", args[0])
}

func (s *Shell) handleMove(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	args, ok := s.intArgs(parts, 2, "move <source_lane> <target_lane>")
	if !ok {
		return
	}

	report, err := lot.MoveBetweenLanes(ctx, args[0], args[1])
	if err != nil {
		s.fail("%v", err)
		return
	}

	for _, m := range report.Moves {
		s.info("Moved car %d from lane %d to lane %d", m.CarID, m.From, m.To)
	}
	switch report.Outcome {
	case MovePartial:
		s.warn("%s", report)
	case MoveComplete:
		s.success("%s", report)
	default:
		s.info("%s", report)
	}
}

func (s *Shell) handleMoveCar(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	args, ok := s.intArgs(parts, 2, "move_car <car_id> <target_lane>")
	if !ok {
		return
	}

	from, err := lot.MoveCar(ctx, args[0], args[1])
	if err != nil {
		s.fail("Cannot move car %d: %v", args[0], err)
		return
	}
	s.success("Car %d moved from lane %d to lane %d", args[0], from, args[1])
}

func (s *Shell) handleStatus(ctx context.Context, parts []string) {
	lot := s.lot()
	if lot == nil {
		return
	}
	switch {
	case len(parts) == 2 && parts[1] == "-short":
		s.info("%s", strings.TrimRight(lot.Snapshot(ctx).Table(), "\n"))
		return
	case len(parts) != 1:
		s.info("Usage: status [-short]")
		return
	}
	if err := lot.Dump(ctx, s.out); err != nil {
		s.fail("%v", err)
	}
}

func (s *Shell) printHelp() {
	headingColor.Fprintln(s.out, "Commands:")
	s.info(`  init <lanes> <capacity>        create a new parking lot
  reset                          drop the current parking lot
  add [car_id]                   add a car to the entrance queue (auto ID if omitted)
  park                           park the front car in the first lane with room
  park_in <lane>                 park the front car in a specific lane
  find <car_id>                  locate a parked car
  exit <car_id> [lane]           remove a car from the top of its lane
  sort <lane>                    sort a lane by car ID
  move <source> <target>         move all cars from source, spilling over past target
  move_car <car_id> <lane>       move a single top car to another lane
  status [-short]                show the entrance queue and every lane
  help                           show this list
  quit                           leave the shell`)
}
