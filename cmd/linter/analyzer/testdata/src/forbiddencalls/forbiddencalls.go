package forbiddencalls

import (
	"errors"
	"log"
	"os"
)

type server struct{}

func (server) main() {
	os.Exit(2) // want "os.Exit is forbidden outside main function"
}

func openStore(path string) error {
	if path == "" {
		panic("empty path") // want "panic is forbidden"
	}
	return nil
}

func mustOpen(path string) {
	if err := openStore(path); err != nil {
		log.Fatal(err) // want "log.Fatal is forbidden outside main function"
	}
}

func exitOnError(err error) {
	if err != nil {
		os.Exit(1) // want "os.Exit is forbidden outside main function"
	}
}

func MultipleCallsFunction() {
	panic("panic 1")   // want "panic is forbidden"
	log.Fatal("fatal") // want "log.Fatal is forbidden outside main function"
	os.Exit(0)         // want "os.Exit is forbidden outside main function"
}

func returnsError() error {
	log.Println("logging is fine")
	return errors.New("handled by the caller")
}
