package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/ident"
	"github.com/tuannm99/novagrid/internal/record"
	"github.com/tuannm99/novagrid/internal/serdes"
)

var (
	errNoTable    = errors.New("no view loaded (use \\load <file>)")
	errNoView     = errors.New("loaded payload has no view descriptor")
	errUsage      = errors.New("usage")
	errUnknownCmd = errors.New("unknown command")
)

const helpText = `commands:
  \load <file>                  load a view payload (.json, .yaml, .yml)
  \save [file]                  write the view back (default: loaded file)
  \show                         print the grid
  \columns                      list columns and their attributes
  \add <type> <name...>         add a standard column
  \link <table> [name...]       add a link column joining <table>
  \set <col> <attr> <value>     set a column attribute
  \kind <col> standard|link [joinId]
  \cell <row> <col> <value>     edit a cell (value read as YAML)
  \sanitize <text...>           show the identifier derived from a name
  \fk                           show the next foreign key column name
  \history                      print history
  \help                         show help
  \q | quit | exit              quit`

// session holds the view being edited by the REPL.
type session struct {
	fs     afero.Fs
	model  *column.Model
	serdes *serdes.SerDes
	locks  *catalog.Locks
	log    *slog.Logger

	table *serdes.Table
	path  string
}

func newSession(fs afero.Fs, model *column.Model, log *slog.Logger) *session {
	return &session{
		fs:     fs,
		model:  model,
		serdes: serdes.New(model),
		locks:  catalog.NewLocks(),
		log:    log,
	}
}

// exec runs one command line and writes its output to w.
func (s *session) exec(line string, w io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case `\help`:
		fmt.Fprintln(w, helpText)
		return nil
	case `\load`:
		return s.load(args, w)
	case `\save`:
		return s.save(args, w)
	case `\show`:
		if s.table == nil {
			return errNoTable
		}
		printTable(w, s.table)
		return nil
	case `\columns`:
		if s.table == nil {
			return errNoTable
		}
		printColumns(w, s.table.Columns)
		return nil
	case `\add`:
		return s.addColumn(args, w)
	case `\link`:
		return s.addLink(args, w)
	case `\set`:
		return s.setAttr(args, w)
	case `\kind`:
		return s.changeKind(args, w)
	case `\cell`:
		return s.setCell(line, args, w)
	case `\sanitize`:
		fmt.Fprintln(w, ident.Sanitize(strings.Join(args, " ")))
		return nil
	case `\fk`:
		if s.table == nil {
			return errNoTable
		}
		if s.table.View == nil {
			return errNoView
		}
		fmt.Fprintln(w, catalog.ForeignKeyColumnName(*s.table.View))
		return nil
	}
	return fmt.Errorf("%w: %s", errUnknownCmd, cmd)
}

func (s *session) load(args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf(`%w: \load <file>`, errUsage)
	}
	raw, err := serdes.LoadPayload(s.fs, args[0])
	if err != nil {
		return err
	}
	table, err := s.serdes.DeserializeView(raw)
	if err != nil {
		return err
	}
	s.table, s.path = table, args[0]
	s.log.Debug("gridctl.load", "path", args[0], "columns", len(table.Columns), "rows", len(table.Rows))
	fmt.Fprintf(w, "loaded %d columns, %d rows\n", len(table.Columns), len(table.Rows))
	return nil
}

func (s *session) save(args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	path := s.path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf(`%w: \save <file>`, errUsage)
	}
	raw, err := s.serdes.SerializeView(s.table)
	if err != nil {
		return err
	}
	if err := serdes.SavePayload(s.fs, path, raw); err != nil {
		return err
	}
	s.log.Debug("gridctl.save", "path", path, "rows", len(raw.Rows))
	fmt.Fprintf(w, "saved %s\n", path)
	return nil
}

func (s *session) addColumn(args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	if len(args) < 2 {
		return fmt.Errorf(`%w: \add <type> <name...>`, errUsage)
	}
	ct, err := record.ParseContentType(args[0])
	if err != nil {
		return err
	}
	spec := column.StandardSpecifier{
		Name:        strings.Join(args[1:], " "),
		ContentType: ct,
		Editable:    true,
	}
	col, err := s.model.NewStandard(spec, s.table.Columns)
	if err != nil {
		return err
	}
	if err := s.table.AddColumn(col); err != nil {
		return err
	}
	fmt.Fprintf(w, "added column %s\n", col.ID)
	return nil
}

func (s *session) addLink(args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	if s.table.View == nil {
		return errNoView
	}
	if len(args) < 1 {
		return fmt.Errorf(`%w: \link <table> [name...]`, errUsage)
	}
	req := catalog.LinkRequest{Table: args[0], Name: strings.Join(args[1:], " ")}

	var col column.Serialized
	err := s.locks.WithView(s.table.View.ID, func() error {
		view := *s.table.View
		view.Joins = append([]catalog.Join(nil), view.Joins...)

		c, _, err := catalog.AddLink(s.model, &view, s.table.Meta(), req)
		if err != nil {
			return err
		}
		if err := s.table.AddColumn(c); err != nil {
			return err
		}
		*s.table.View = view
		col = c
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "added link column %s (join %d)\n", col.ID, col.JoinID)
	return nil
}

func (s *session) setAttr(args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	if len(args) < 3 {
		return fmt.Errorf(`%w: \set <col> <attr> <value>`, errUsage)
	}
	attr, err := column.ParseAttribute(args[1])
	if err != nil {
		return err
	}
	if err := s.table.SetColumn(args[0], attr, strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(w, "ok")
	return nil
}

func (s *session) changeKind(args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	if len(args) < 2 {
		return fmt.Errorf(`%w: \kind <col> standard|link [joinId]`, errUsage)
	}

	var kind column.Kind
	switch args[1] {
	case column.KindStandard:
		kind = column.Standard{}
	case column.KindLink:
		if len(args) != 3 {
			return fmt.Errorf(`%w: \kind <col> link <joinId>`, errUsage)
		}
		id, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: join id %q", errUsage, args[2])
		}
		kind = column.Link{JoinID: id}
	default:
		return fmt.Errorf("%w: %q (want %s)", column.ErrUnknownKind, args[1], strings.Join(column.KindNames(), "|"))
	}

	if err := s.table.ChangeColumnKind(args[0], kind); err != nil {
		return err
	}
	fmt.Fprintln(w, "ok")
	return nil
}

func (s *session) setCell(line string, args []string, w io.Writer) error {
	if s.table == nil {
		return errNoTable
	}
	if len(args) < 3 {
		return fmt.Errorf(`%w: \cell <row> <col> <value>`, errUsage)
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: row %q", errUsage, args[0])
	}

	// the value is the rest of the line, so it may hold spaces
	rest := strings.TrimSpace(line)
	for i := 0; i < 3; i++ {
		rest = strings.TrimSpace(rest[len(strings.Fields(rest)[0]):])
	}
	var value any
	if err := yaml.Unmarshal([]byte(rest), &value); err != nil {
		return fmt.Errorf("%w: value %q: %v", errUsage, rest, err)
	}

	if err := s.table.SetCell(row, args[1], value); err != nil {
		return err
	}
	fmt.Fprintln(w, "ok")
	return nil
}

// ---- printing ----

func printTable(w io.Writer, t *serdes.Table) {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, "#")
	for _, c := range t.Columns {
		cols = append(cols, c.ID)
	}

	cells := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		line := make([]string, 0, len(cols))
		line = append(line, strconv.Itoa(r.Index))
		for _, c := range t.Columns {
			line = append(line, formatCell(r.Cells[c.ID]))
		}
		cells[i] = line
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, line := range cells {
		for i, s := range line {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	printRow := func(values []string) {
		for i := range values {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(values[i], widths[i]))
		}
		fmt.Fprintln(w)
	}

	printRow(cols)
	for i := range cols {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)
	for _, line := range cells {
		printRow(line)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
}

func printColumns(w io.Writer, cols []column.Serialized) {
	for _, c := range cols {
		flags := []string{}
		if c.Editable {
			flags = append(flags, "editable")
		}
		if c.Frozen {
			flags = append(flags, "frozen")
		}
		if c.Sortable {
			flags = append(flags, "sortable")
		}
		if c.Resizable {
			flags = append(flags, "resizable")
		}
		sort.Strings(flags)
		fmt.Fprintf(w, "%-16s %-8s %-9s width=%d editor=%s [%s]", c.ID, c.Kind, c.ContentType, c.Width, c.Editor, strings.Join(flags, ","))
		if c.JoinID > 0 {
			fmt.Fprintf(w, " join=%d", c.JoinID)
		}
		fmt.Fprintln(w)
	}
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
