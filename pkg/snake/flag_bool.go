package snake

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/pflag"
)

// PromptFlagBool asks a yes/no question for f.
func PromptFlagBool(f *pflag.Flag) (bool, string) {
	describe(f)

	items := []string{"yes", "no"}
	cursor := 1
	if def, err := ParseBool(f.DefValue); err == nil && def {
		cursor = 0
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     f.Name,
		Items:     items,
		CursorPos: cursor,
	}
	i, _, err := prompt.Run()
	if err != nil {
		fmt.Printf("Prompt failed %v\n", err)
		return false, ""
	}
	return true, fmt.Sprintf(`--%s=%t`, f.Name, i == 0)
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes", "on", "ON", "On":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "no", "NO", "No", "off", "OFF", "Off":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}
