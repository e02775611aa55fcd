package snake

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/pflag"
)

// ChoicesAnnotation marks a string flag whose value must be one of a known
// set. PromptFlags offers those values as a list instead of free text.
const ChoicesAnnotation = "snake_choices"

var answerTemplates = &promptui.PromptTemplates{
	Prompt:  "Answer {{ . }} : ",
	Valid:   "Answer {{ . | green }} : ",
	Invalid: "Answer {{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

func asFlags(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("--%s, -%s", f.Name, f.Shorthand)
	}
	return fmt.Sprintf("--%s", f.Name)
}

func describe(f *pflag.Flag) {
	fmt.Printf("%s: %s [%s] Default: %s\n", asFlags(f), f.Usage, f.Value.Type(), f.DefValue)
}

// ask reads one free-text answer. An empty answer takes the flag's default.
func ask(f *pflag.Flag, validate promptui.ValidateFunc) (string, bool) {
	describe(f)
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("[%s]", f.DefValue),
		Templates: answerTemplates,
		Validate:  validate,
	}
	result, err := prompt.Run()
	if err != nil {
		fmt.Printf("Prompt failed %v\n", err)
		return "", false
	}
	if result == "" {
		result = f.DefValue
	}
	return result, true
}

// PromptFlagChoice lets the user pick one of choices for f, starting on the
// flag's default.
func PromptFlagChoice(f *pflag.Flag, choices []string) (bool, string) {
	describe(f)
	cursor := 0
	for i, c := range choices {
		if c == f.DefValue {
			cursor = i
		}
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     f.Name,
		Items:     choices,
		CursorPos: cursor,
		Size:      10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(choices[index]), strings.ToLower(input))
		},
	}
	_, result, err := prompt.Run()
	if err != nil {
		fmt.Printf("Prompt failed %v\n", err)
		return false, ""
	}
	return true, fmt.Sprintf(`--%s=%s`, f.Name, result)
}
