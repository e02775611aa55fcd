package snake

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// PromptFlagString asks for a string value, or offers a list when the flag
// carries ChoicesAnnotation.
func PromptFlagString(f *pflag.Flag) (bool, string) {
	if choices := f.Annotations[ChoicesAnnotation]; len(choices) > 0 {
		return PromptFlagChoice(f, choices)
	}
	result, ok := ask(f, func(input string) error {
		if input == "" && f.DefValue == "" {
			return errors.New("empty")
		}
		return nil
	})
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf(`--%s=%s`, f.Name, result)
}
