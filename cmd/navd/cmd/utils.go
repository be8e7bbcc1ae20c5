package cmd

import (
	"bufio"
	"fmt"
	"os"
)

// confirmIfExists checks that path exists, and if so asks the user to
// confirm overwriting it. It returns true if path doesn't exist, or the
// user answered yes to msg.
func confirmIfExists(path, msg string) (ok bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return askForConfirmation(msg), nil
}

// askForConfirmation prints msg and reads a y/n answer from standard
// input, defaulting to no on a bare ENTER.
func askForConfirmation(msg string) bool {
	fmt.Println(msg)
	reader := bufio.NewReader(os.Stdin)
	for {
		input, _ := reader.ReadString('\n')
		if len(input) == 0 {
			return false
		}
		switch input[0] {
		case 'Y', 'y':
			return true
		case 'N', 'n', '\n':
			return false
		}
	}
}

// check exits the process with a non-zero status if err is non-nil.
func check(err error) {
	if err != nil {
		fmt.Println("error,", err)
		os.Exit(-1)
	}
}

func writeFile(path string, buf []byte) error {
	return os.WriteFile(path, buf, 0o644)
}
