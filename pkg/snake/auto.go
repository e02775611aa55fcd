package snake

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PromptNext walks the command tree from cmd, one prompt per level, then
// hands the chosen leaf to PromptFlags.
func PromptNext(cmd *cobra.Command, args []string) error {
	subcommands := runnable(cmd.Commands())
	if len(subcommands) == 0 {
		return PromptFlags(cmd, args)
	}
	if cmd.HasParent() && cmd.Runnable() {
		// "settings" shows and "settings set" changes; offer both.
		subcommands = append([]*cobra.Command{cmd}, subcommands...)
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "\u279C  {{ .Name | bold }} {{ .Short | green }}",
		Inactive: "   {{ .Name }} {{ .Short | cyan }}",
		Selected: "{{ .Use | bold }}",
		Details: `
--------- Details ----------
{{ .Long }}
`,
	}

	searcher := func(input string, index int) bool {
		subcommand := subcommands[index]
		hay := squash(subcommand.Name() + subcommand.Short)
		return strings.Contains(hay, squash(input))
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     cmd.Name(),
		Items:     subcommands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	i, _, err := prompt.Run()
	if err != nil {
		return err
	}
	next := subcommands[i]

	if next != cmd && len(runnable(next.Commands())) > 0 {
		return PromptNext(next, args)
	}
	if next.Args != nil {
		more, err := promptArgs(next)
		if err != nil {
			return err
		}
		args = append(args, more...)
	}
	return PromptFlags(next, args)
}

// promptArgs reads the positional arguments for cmd on one line, checking
// them against cmd.Args as they are typed.
func promptArgs(cmd *cobra.Command) ([]string, error) {
	prompt := promptui.Prompt{
		Label:     cmd.Use,
		Templates: answerTemplates,
		Validate: func(input string) error {
			return cmd.ValidateArgs(strings.Fields(input))
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: NopCloser(cmd.OutOrStdout()),
	}
	result, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return strings.Fields(result), nil
}

// runnable drops help, completion and hidden commands from a prompt list.
func runnable(cmds []*cobra.Command) []*cobra.Command {
	out := make([]*cobra.Command, 0, len(cmds))
	for _, c := range cmds {
		if c.Hidden || !c.IsAvailableCommand() || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// PromptFlags loops over cmd's flags, collecting answers until Continue is
// picked, then runs cmd with them.
func PromptFlags(cmd *cobra.Command, args []string) error {
	var fs []*pflag.Flag

	if flagset := cmd.Flags(); flagset != nil {
		flagset.VisitAll(func(f *pflag.Flag) {
			if f.Name == "interactive" || f.Hidden {
				return
			}
			fs = append(fs, f)
		})
	} else {
		return nil
	}

	fs = append(fs, &pflag.Flag{
		Name:   "Continue...",
		Hidden: true,
		Value:  &continueType{},
	})

	templates := &promptui.SelectTemplates{
		Label:    "{{ . | magenta }} flags?",
		Active:   "\u279C {{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }} {{ .Usage | green | cyan }}{{ end }}",
		Inactive: "  {{ if eq .Value.Type \"continue\" }}{{ .Name | faint | green }}{{ else }}{{ .Name }} {{ .Usage | cyan }}{{ end }}",
		Selected: "{{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }}{{ end }}",
		Details: `
--------- Details ----------
default: {{ .DefValue }}
type: {{ .Value.Type }}
`,
	}

	searcher := func(input string, index int) bool {
		f := fs[index]
		return strings.Contains(squash(f.Name), squash(input))
	}
	cont := true
	index := 0
	for cont {
		prompt := promptui.Select{
			HideHelp:  true,
			Label:     "Flags",
			Items:     fs,
			Templates: templates,
			Size:      10,
			CursorPos: index,
			Searcher:  searcher,
			Stdin:     io.NopCloser(cmd.InOrStdin()),
			Stdout:    NopCloser(cmd.OutOrStdout()),
		}

		i, _, err := prompt.Run()

		if err != nil {
			fmt.Printf("Prompt failed %v\n", err)
			return err
		}
		index = i

		fmt.Printf("You choose number %d: %s\n", i+1, fs[i].Name)

		more := ""

		switch t := fs[i].Value.Type(); t {
		case "bool":
			cont, more = PromptFlagBool(fs[i])

		case "int":
			cont, more = PromptFlagInt(fs[i])

		case "string":
			cont, more = PromptFlagString(fs[i])

		case "continue":
			cont = false
			more = ""

		default:
			fmt.Printf("%q flag type not yet supported\n", t)
		}

		if more != "" {
			fmt.Println("Append this:", more)
			args = append(args, more)
		}
	}

	args = append(args, "--interactive=false")

	fmt.Println("Run this:", cmd.CommandPath(), strings.Join(args, " "))
	// Execute would restart from the root with os.Args, so parse and run in place.
	if err := cmd.ParseFlags(args); err != nil {
		return err
	}
	if err := cmd.ValidateArgs(cmd.Flags().Args()); err != nil {
		return err
	}
	if cmd.RunE != nil {
		return cmd.RunE(cmd, cmd.Flags().Args())
	}
	if cmd.Run != nil {
		cmd.Run(cmd, cmd.Flags().Args())
	}
	return nil
}

type continueType struct{}

func (*continueType) String() string {
	return "continue"
}

func (*continueType) Set(string) error {
	return nil
}

func (*continueType) Type() string {
	return "continue"
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser lets a cobra output writer back a promptui prompt.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
