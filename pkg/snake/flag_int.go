package snake

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
)

func PromptFlagInt(f *pflag.Flag) (bool, string) {
	result, ok := ask(f, func(input string) error {
		if input == "" {
			return nil
		}
		_, err := strconv.Atoi(input)
		return err
	})
	if !ok {
		return false, ""
	}
	n, err := strconv.Atoi(result)
	if err != nil {
		fmt.Printf("%q is not a number\n", result)
		return true, ""
	}
	return true, fmt.Sprintf(`--%s=%d`, f.Name, n)
}
