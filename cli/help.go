package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	maxWidth = 72
	minWidth = 40
)

// helpWidth returns the width help text wraps at, capped at maxWidth.
func helpWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return maxWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < minWidth {
		return maxWidth
	}
	return min(width, maxWidth)
}

// wrapText wraps text to width, preserving existing line breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = maxWidth
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			result = append(result, paragraph)
			continue
		}
		var line string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				result = append(result, line)
				line = word
			}
		}
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// SetStyledHelp installs the themed help on cmd.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
}

// ApplyStyledHelpRecursive installs the themed help on cmd and every
// subcommand. Usage output is suppressed; Execute reports errors instead.
func ApplyStyledHelpRecursive(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
	cmd.SetUsageFunc(func(*cobra.Command) error { return nil })
	for _, sub := range cmd.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

// PrintError prints a styled error with a pointer to --help.
func PrintError(cmd *cobra.Command, err error) {
	t := theme.DefaultTheme
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", t.Error.Render("Error:"), err.Error())
	fmt.Fprintln(cmd.ErrOrStderr(), t.Muted.Render(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())))
}

// splitExamples separates the "Examples:" block from a long description.
func splitExamples(long string) (description, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if idx := strings.Index(long, marker); idx != -1 {
			return strings.TrimSpace(long[:idx]), strings.TrimRight(long[idx+len(marker):], "\n")
		}
	}
	return long, ""
}

// helpPrinter renders one command's help page.
type helpPrinter struct {
	w     io.Writer
	t     *theme.Theme
	width int

	section lipgloss.Style
	command lipgloss.Style
	flag    lipgloss.Style
}

func newHelpPrinter(w io.Writer) *helpPrinter {
	t := theme.DefaultTheme
	return &helpPrinter{
		w:       w,
		t:       t,
		width:   helpWidth(w) - 2,
		section: t.Accent,
		command: t.Info,
		flag:    lipgloss.NewStyle().Foreground(t.Colors.Violet),
	}
}

func (p *helpPrinter) line(s string) {
	fmt.Fprintln(p.w, " "+s)
}

func (p *helpPrinter) heading(name string) {
	fmt.Fprintln(p.w)
	p.line(p.section.Render(name))
}

func (p *helpPrinter) paragraph(text string, style lipgloss.Style) {
	for _, l := range strings.Split(wrapText(text, p.width), "\n") {
		p.line(style.Render(l))
	}
}

func styledHelpFunc(cmd *cobra.Command, args []string) {
	p := newHelpPrinter(cmd.OutOrStdout())

	p.line(p.t.Title.Render(strings.ToUpper(cmd.CommandPath())))
	description, examples := splitExamples(cmd.Long)
	if cmd.Short != "" {
		p.paragraph(cmd.Short, p.t.Bold)
	}
	if description != "" && description != cmd.Short {
		fmt.Fprintln(p.w)
		p.paragraph(description, p.t.Normal)
	}

	p.heading("USAGE")
	if cmd.Runnable() {
		p.line(cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		p.line(cmd.CommandPath() + " [command]")
	}

	p.commands(cmd)
	p.flags("FLAGS", cmd.LocalNonPersistentFlags())
	p.flags("GLOBAL FLAGS", cmd.InheritedFlags())
	if !cmd.HasParent() {
		p.flags("GLOBAL FLAGS", cmd.PersistentFlags())
		p.config()
	}

	if cmd.Example != "" {
		examples = cmd.Example
	}
	if examples != "" {
		p.heading("EXAMPLES")
		p.examples(examples, cmd.Root().Name())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(p.w, "\n Use \"%s [command] --help\" for more information.\n", cmd.CommandPath())
	}
}

func (p *helpPrinter) commands(cmd *cobra.Command) {
	var subs []*cobra.Command
	width := 0
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			subs = append(subs, sub)
			width = max(width, len(sub.Name()))
		}
	}
	if len(subs) == 0 {
		return
	}
	p.heading("COMMANDS")
	for _, sub := range subs {
		pad := strings.Repeat(" ", width-len(sub.Name()))
		p.line(fmt.Sprintf("%s%s  %s", p.command.Render(sub.Name()), pad, sub.Short))
	}
}

func (p *helpPrinter) flags(title string, set *pflag.FlagSet) {
	var visible []*pflag.Flag
	width := 0
	set.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		visible = append(visible, f)
		width = max(width, len(flagName(f)))
	})
	if len(visible) == 0 {
		return
	}

	p.heading(title)
	for _, f := range visible {
		name := flagName(f)
		usage, choices := parseChoices(f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" && f.DefValue != "0s" {
			usage += p.t.Muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
		}
		p.line(fmt.Sprintf("%s%s  %s", p.flag.Render(name), strings.Repeat(" ", width-len(name)), usage))
		indent := strings.Repeat(" ", width+2)
		for _, choice := range choices {
			p.line(indent + p.t.Muted.Render("• "+choice))
		}
	}
}

// config tells where the bar looks for its configuration.
func (p *helpPrinter) config() {
	p.heading("CONFIG")
	if env := os.Getenv("STATUSBAR_CONFIG"); env != "" {
		p.line("STATUSBAR_CONFIG=" + env)
		return
	}
	p.line(filepath.Join(paths.ConfigDir(), "config.toml") + p.t.Muted.Render(" (or config.yml)"))
	p.line(p.t.Muted.Render("Without a file the bar shows a single pamac block."))
}

// examples mutes comment lines and highlights the command and subcommand
// of every other line.
func (p *helpPrinter) examples(text, root string) {
	for _, l := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(l)
		switch {
		case trimmed == "":
			fmt.Fprintln(p.w)
		case strings.HasPrefix(trimmed, "#"):
			p.line(" " + p.t.Muted.Render(trimmed))
		default:
			p.line(" " + p.exampleLine(trimmed, root))
		}
	}
}

func (p *helpPrinter) exampleLine(line, root string) string {
	parts := strings.Fields(line)
	afterRoot := false
	for i, part := range parts {
		switch {
		case part == root:
			parts[i] = p.t.Bold.Render(part)
			afterRoot = true
			continue
		case strings.HasPrefix(part, "-"):
			parts[i] = p.flag.Render(part)
		case afterRoot:
			parts[i] = p.command.Render(part)
		}
		afterRoot = false
	}
	return strings.Join(parts, " ")
}

func flagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return "    --" + f.Name
}

// parseChoices splits a usage string of the form "Label: a, b, c" into the
// label and its choices. Lists of fewer than three items stay inline.
func parseChoices(usage string) (description string, choices []string) {
	colon := strings.Index(usage, ": ")
	if colon == -1 {
		return usage, nil
	}
	list := usage[colon+2:]
	suffix := ""
	if end := strings.Index(list, " ("); end != -1 {
		list, suffix = list[:end], list[end:]
	}

	parts := strings.Split(list, ", ")
	if len(parts) < 3 {
		return usage, nil
	}
	for i, part := range parts {
		parts[i] = strings.TrimSpace(strings.TrimPrefix(part, "or "))
	}
	return usage[:colon+1] + suffix, parts
}
