package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"myy/internal/core"
	"myy/internal/services"
)

const usage = `usage: myy [-yes] <command> [args]

commands:
  add-expense [-category C] [-note N] [-date YYYY-MM-DD] AMOUNT
  add-income  [-category C] [-note N] [-date YYYY-MM-DD] AMOUNT
  entries     [-month YYYY-MM]
  delete-entry ID
  trash-month [-month YYYY-MM]
  summary     [-month YYYY-MM]
  add-task    [-due YYYY-MM-DD] TEXT
  tasks       [-status all|pending|done]
  toggle      ID
  delete-task ID
  trash-done
  trash
  restore     expense|task ID
  remove      expense|task ID
  purge
  dark-mode   [on|off]
`

var errUsage = errors.New("usage")

type app struct {
	tracker *services.Tracker
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
	confirm services.Confirmer
}

// run executes one command and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if a.now == nil {
		a.now = time.Now
	}
	fs := flag.NewFlagSet("myy", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() { fmt.Fprint(a.errOut, usage) }
	yes := fs.Bool("yes", false, "answer yes to every confirmation")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if a.confirm == nil {
		a.confirm = &terminalConfirmer{in: bufio.NewReader(a.in), out: a.out, yes: *yes}
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	err := a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.errOut, "myy: %v\n", err)
		fmt.Fprint(a.errOut, usage)
		return 2
	default:
		fmt.Fprintf(a.errOut, "myy: %v\n", err)
		return 1
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add-expense":
		return a.addEntry(ctx, core.Expense, args)
	case "add-income":
		return a.addEntry(ctx, core.Income, args)
	case "entries":
		return a.listEntries(args)
	case "delete-entry":
		return a.softDelete(ctx, core.KindExpense, args)
	case "trash-month":
		return a.trashMonth(ctx, args)
	case "summary":
		return a.summary(args)
	case "add-task":
		return a.addTask(ctx, args)
	case "tasks":
		return a.listTasks(args)
	case "toggle":
		return a.toggle(ctx, args)
	case "delete-task":
		return a.softDelete(ctx, core.KindTask, args)
	case "trash-done":
		n, outcome := a.tracker.ConfirmMoveCompletedToTrash(ctx, a.confirm)
		return a.reportBulk(outcome, "Moved %d completed task(s) to trash\n", n)
	case "trash":
		return a.listTrash()
	case "restore":
		return a.restore(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "purge":
		n, outcome := a.tracker.ConfirmPurgeAll(ctx, a.confirm)
		return a.reportBulk(outcome, "Permanently deleted %d record(s)\n", n)
	case "dark-mode":
		return a.darkMode(ctx, args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) addEntry(ctx context.Context, typ core.EntryType, args []string) error {
	fs := a.subcommand("add-" + typ.String())
	category := fs.String("category", "", "category, defaults to the first preset")
	note := fs.String("note", "", "free text note")
	date := fs.String("date", "", "entry date, defaults to today")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: expected one AMOUNT", errUsage)
	}

	amount, err := core.ParseAmount(fs.Arg(0))
	if err != nil {
		return err
	}
	in := services.NewEntry{Type: typ, Amount: amount, Category: *category, Note: *note}
	if *date != "" {
		if in.Date, err = core.ParseDate(*date); err != nil {
			return err
		}
	}

	e, err := a.tracker.AddEntry(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s %s on %s (%s)\n", e.Type, e.Amount, e.Category, e.Date, e.ID)
	return nil
}

func (a *app) listEntries(args []string) error {
	month, err := a.monthFlag("entries", args)
	if err != nil {
		return err
	}
	entries := a.tracker.EntriesForMonth(month)
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No entries for %s\n", month)
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tNOTE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Type, e.Amount, e.Category, e.Note)
	}
	return w.Flush()
}

func (a *app) softDelete(ctx context.Context, kind core.Kind, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one ID", errUsage)
	}
	ok, outcome := a.tracker.ConfirmSoftDelete(ctx, a.confirm, kind, args[0])
	if outcome == services.Cancelled {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if !ok {
		return fmt.Errorf("no %s with id %s", kind, args[0])
	}
	fmt.Fprintf(a.out, "Moved %s %s to trash\n", kind, args[0])
	return nil
}

func (a *app) trashMonth(ctx context.Context, args []string) error {
	month, err := a.monthFlag("trash-month", args)
	if err != nil {
		return err
	}
	n, outcome := a.tracker.ConfirmMoveMonthToTrash(ctx, a.confirm, month)
	return a.reportBulk(outcome, "Moved %d entr(ies) of "+month+" to trash\n", n)
}

func (a *app) summary(args []string) error {
	month, err := a.monthFlag("summary", args)
	if err != nil {
		return err
	}
	s := a.tracker.Summary(month)
	fmt.Fprintf(a.out, "Month:    %s (%d entries)\n", s.Month, s.Count)
	fmt.Fprintf(a.out, "Expenses: %s\n", s.Totals.SumExpense)
	fmt.Fprintf(a.out, "Income:   %s\n", s.Totals.SumIncome)
	fmt.Fprintf(a.out, "Net:      %s\n", s.Totals.Net)
	if len(s.ByCategory) > 0 {
		fmt.Fprintln(a.out, "\nBy category:")
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, c := range s.ByCategory {
			fmt.Fprintf(w, "  %s\t%s\n", c.Name, c.Value)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "\nMonths: %s\n", strings.Join(s.MonthsAvailable, ", "))
	return nil
}

func (a *app) addTask(ctx context.Context, args []string) error {
	fs := a.subcommand("add-task")
	dueFlag := fs.String("due", "", "due date")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	text := strings.Join(fs.Args(), " ")

	var due *core.Date
	if *dueFlag != "" {
		d, err := core.ParseDate(*dueFlag)
		if err != nil {
			return err
		}
		due = &d
	}

	task, err := a.tracker.AddTask(ctx, text, due)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added task %q (%s)\n", task.Text, task.ID)
	return nil
}

func (a *app) listTasks(args []string) error {
	fs := a.subcommand("tasks")
	status := fs.String("status", "all", "all, pending or done")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var tasks []core.Task
	switch *status {
	case "all":
		tasks = a.tracker.Tasks()
	case "pending":
		tasks = a.tracker.PendingTasks()
	case "done":
		tasks = a.tracker.CompletedTasks()
	default:
		return fmt.Errorf("%w: unknown status %q", errUsage, *status)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}

	today := core.DateOf(a.now())
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tDUE\tTEXT")
	for _, t := range tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		due := "-"
		if t.Due != nil {
			due = t.Due.String()
			if t.Overdue(today) {
				due += " (overdue)"
			}
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", t.ID, mark, due, t.Text)
	}
	return w.Flush()
}

func (a *app) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one ID", errUsage)
	}
	task, ok := a.tracker.ToggleTask(ctx, args[0])
	if !ok {
		return fmt.Errorf("no task with id %s", args[0])
	}
	state := "pending"
	if task.Done {
		state = "done"
	}
	fmt.Fprintf(a.out, "Task %q is %s\n", task.Text, state)
	return nil
}

func (a *app) listTrash() error {
	entries, tasks := a.tracker.TrashedEntries(), a.tracker.TrashedTasks()
	if len(entries)+len(tasks) == 0 {
		fmt.Fprintln(a.out, "Trash is empty")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tDELETED\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "expense\t%s\t%s\t%s %s %s on %s\n",
			e.ID, e.DeletedAt.Format(time.DateTime), e.Type, e.Amount, e.Category, e.Date)
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "task\t%s\t%s\t%s\n", t.ID, t.DeletedAt.Format(time.DateTime), t.Text)
	}
	return w.Flush()
}

func (a *app) restore(ctx context.Context, args []string) error {
	kind, id, err := kindAndID(args)
	if err != nil {
		return err
	}
	ok, err := a.tracker.Restore(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s with id %s in trash", kind, id)
	}
	fmt.Fprintf(a.out, "Restored %s %s\n", kind, id)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	kind, id, err := kindAndID(args)
	if err != nil {
		return err
	}
	if !a.tracker.RemoveFromTrash(ctx, kind, id) {
		return fmt.Errorf("no %s with id %s in trash", kind, id)
	}
	fmt.Fprintf(a.out, "Permanently deleted %s %s\n", kind, id)
	return nil
}

func (a *app) darkMode(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "on":
		a.tracker.SetDarkMode(ctx, true)
	case len(args) == 1 && args[0] == "off":
		a.tracker.SetDarkMode(ctx, false)
	default:
		return fmt.Errorf("%w: dark-mode takes on or off", errUsage)
	}
	state := "off"
	if a.tracker.DarkMode() {
		state = "on"
	}
	fmt.Fprintf(a.out, "Dark mode %s\n", state)
	return nil
}

func (a *app) reportBulk(outcome services.Outcome, format string, n int) error {
	if outcome == services.Cancelled {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	fmt.Fprintf(a.out, format, n)
	return nil
}

func (a *app) subcommand(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// monthFlag parses an optional -month flag, defaulting to the current month.
func (a *app) monthFlag(name string, args []string) (string, error) {
	fs := a.subcommand(name)
	month := fs.String("month", "", "YYYY-MM")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if *month == "" {
		return core.CurrentMonth(a.now()), nil
	}
	return core.ParseMonthKey(*month)
}

func kindAndID(args []string) (core.Kind, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%w: expected KIND and ID", errUsage)
	}
	kind, err := core.ParseKind(args[0])
	if err != nil {
		return "", "", err
	}
	return kind, args[1], nil
}

// terminalConfirmer asks y/N on the terminal. yes skips the question.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (c *terminalConfirmer) Confirm(ctx context.Context, p services.Prompt) services.Outcome {
	if c.yes {
		return services.Confirmed
	}
	fmt.Fprintf(c.out, "%s\n%s\n%s? [y/N] ", p.Title, p.Message, p.ConfirmText)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return services.Cancelled
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return services.Confirmed
	}
	return services.Cancelled
}
