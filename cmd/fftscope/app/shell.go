package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/inspect"
	"github.com/RyanBlaney/fftscope/session"
)

const shellHelp = `commands:
  open PATH                 load a CSV or Parquet table
  set KEY VALUE             column, name, fs, start, rows, window
  run                       analyze with the current options
  view single|overlay       select the view pointer commands act on
  hover X Y | leave         move or hide the hover marker
  pin X Y | unpin X Y       left / right click at a data point
  clear                     remove every pin of the view
  save                      keep the current result
  overlay ID...             plot saved results together
  remove ID... | clearall   delete saved results
  list | peaks | pins       show state
  export-csv PATH           write the current spectrum
  export-plot PATH          render the view to PNG, JPEG or SVG
  settings-save             write the settings file
  quit`

// errQuit ends the loop without an error
var errQuit = errors.New("quit")

type shell struct {
	ws   *session.Workspace
	opts Config
	view session.View
	out  io.Writer
}

func newShell(ws *session.Workspace, c *Config, out io.Writer) *shell {
	ws.SetSurface(session.SingleView, textSurface{view: session.SingleView, out: out})
	ws.SetSurface(session.OverlayView, textSurface{view: session.OverlayView, out: out})
	return &shell{ws: ws, opts: *c, out: out}
}

func (s *shell) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		err := s.exec(fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) exec(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit":
		return errQuit
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open PATH")
		}
		if err := openTable(s.ws, args[0]); err != nil {
			return err
		}
		t := s.ws.Table()
		fmt.Fprintf(s.out, "%s rows, columns: %s\n", humanize.Comma(int64(t.Rows())), strings.Join(t.Columns(), ", "))
	case "set":
		return s.set(args)
	case "run":
		result, err := s.ws.Run(request(s.ws, &s.opts))
		if err != nil {
			return err
		}
		printResult(s.out, result)
	case "view":
		if len(args) != 1 {
			return errors.New("usage: view single|overlay")
		}
		v, err := session.ParseView(args[0])
		if err != nil {
			return err
		}
		s.view = v
	case "hover", "pin", "unpin":
		p, err := parsePoint(args)
		if err != nil {
			return err
		}
		switch cmd {
		case "hover":
			s.ws.Hover(s.view, p)
		case "pin":
			s.ws.Click(s.view, session.LeftButton, p)
		default:
			s.ws.Click(s.view, session.RightButton, p)
		}
	case "leave":
		s.ws.Leave(s.view)
	case "clear":
		s.ws.ClearPins(s.view)
	case "save":
		id, err := s.ws.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "saved as %d\n", id)
	case "overlay":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return s.ws.Overlay(ids...)
	case "remove":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "removed %s\n", english.Plural(s.ws.Remove(ids...), "result", ""))
	case "clearall":
		s.ws.RemoveAll()
		fmt.Fprintln(s.out, "all results removed")
	case "list":
		s.list()
	case "peaks":
		printPeaks(s.out, s.ws.Peaks())
	case "pins":
		printPins(s.out, s.ws.Board(s.view).Pins())
	case "export-csv":
		if len(args) != 1 {
			return errors.New("usage: export-csv PATH")
		}
		if err := s.ws.ExportSpectrum(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Data exported to %s\n", args[0])
	case "export-plot":
		if len(args) != 1 {
			return errors.New("usage: export-plot PATH")
		}
		if err := s.ws.ExportPlot(s.view, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Plot exported to %s\n", args[0])
	case "settings-save":
		if err := s.ws.Settings().Save(s.opts.SettingsPath); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Settings saved to %s\n", s.opts.SettingsPath)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (s *shell) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set KEY VALUE")
	}
	value := strings.Join(args[1:], " ")

	var err error
	switch args[0] {
	case "column":
		s.opts.Column = value
	case "name":
		s.opts.Name = value
	case "fs":
		s.opts.SamplingRate, err = strconv.ParseFloat(value, 64)
	case "start":
		s.opts.StartRow, err = strconv.Atoi(value)
	case "rows":
		s.opts.RowCount, err = strconv.Atoi(value)
	case "window":
		var kind windowing.Type
		if kind, err = windowing.ParseType(value); err == nil {
			s.opts.Window = string(kind)
		}
	default:
		return fmt.Errorf("unknown option %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	return nil
}

func (s *shell) list() {
	entries := s.ws.Registry().List()
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "  no saved results")
		return
	}
	for _, e := range entries {
		r := e.Result
		fmt.Fprintf(s.out, "  %d  %-16s %-10s %s  %s  %s  %s\n",
			e.ID, r.DisplayName(), r.Column, r.RangeText(), formatHz(r.SamplingRate), r.Color, humanize.Time(r.CreatedAt))
	}
}

func parsePoint(args []string) (inspect.Point, error) {
	if len(args) != 2 {
		return inspect.Point{}, errors.New("usage: CMD X Y")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return inspect.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return inspect.Point{}, fmt.Errorf("y: %w", err)
	}
	return inspect.Point{X: x, Y: y}, nil
}

func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one result id is required")
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
