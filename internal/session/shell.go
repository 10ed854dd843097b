package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/output"
)

const helpText = `To move between directories use cd:
    cd directory_name
To search the files of the current directory use:
    search your query
To exit type 'exit'`

// Shell is the line-oriented front end of a Session.
type Shell struct {
	session *Session
	in      io.Reader
	out     *output.Writer
	raw     io.Writer
}

// NewShell reads commands from in and writes to out.
func NewShell(s *Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{session: s, in: in, out: output.New(out), raw: out}
}

// Run prints the banner and processes commands until exit, end of input or
// cancellation.
func (sh *Shell) Run(ctx context.Context) error {
	sh.out.Println("Welcome to txtseek")
	sh.Help()
	sh.out.Println("type 'help' for help")
	sh.out.Newline()

	// Cancelled on return so the reader stops once its next line arrives.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(sh.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		sh.prompt()

		select {
		case <-ctx.Done():
			sh.out.Newline()
			return nil
		case line, ok := <-lines:
			if !ok {
				sh.out.Newline()
				return <-errc
			}
			if !sh.Execute(ctx, line) {
				return nil
			}
		}
	}
}

func (sh *Shell) prompt() {
	_, _ = fmt.Fprintf(sh.raw, "[%s]> ", sh.session.Root())
}

// Execute runs one command line. It returns false when the shell should
// exit.
func (sh *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		sh.out.Println("type something")
		return true
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "exit", "quit":
		sh.out.Println("Exiting")
		return false

	case "help":
		sh.Help()

	case "cd":
		sh.cd(ctx, args)

	case "search":
		if len(args) == 0 {
			sh.out.Println("Type what you want to search")
			return true
		}
		sh.search(ctx, strings.Join(args, " "))

	default:
		sh.out.Println(fmt.Sprintf("Undefined command: '%s'", line))
	}
	return true
}

// Help prints the command summary.
func (sh *Shell) Help() {
	sh.out.Newline()
	sh.out.Println(helpText)
	sh.out.Newline()
}

func (sh *Shell) cd(ctx context.Context, args []string) {
	if len(args) == 0 {
		sh.out.Println("Select directory")
		return
	}
	target := strings.Join(args, " ")

	if _, err := sh.session.Cd(ctx, target); err != nil {
		if seekerrors.HasCode(err, seekerrors.ErrCodeInvalidRoot) {
			sh.out.Println(fmt.Sprintf("Directory '%s' is not found", target))
			return
		}
		slog.Error("shell_cd_failed", seekerrors.LogAttrs(err)...)
		sh.out.Error(err.Error())
	}
}

func (sh *Shell) search(ctx context.Context, query string) {
	results, err := sh.session.Search(ctx, query)
	if err != nil {
		slog.Error("shell_search_failed", seekerrors.LogAttrs(err)...)
		sh.out.Error(err.Error())
		return
	}
	sh.out.Results(results, sh.session.Root())
	sh.out.Newline()
}
