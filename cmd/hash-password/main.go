package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/madhava-poojari/educonnect-api/internal/utils"
)

func readPassword() string {
	if flag.NArg() > 0 {
		return flag.Arg(0)
	}
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func main() {
	verify := flag.String("verify", "", "check the password against this encoded hash instead of hashing it")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hash-password [-verify <hash>] [password]")
		fmt.Fprintln(os.Stderr, "The password is read from stdin when not given as an argument.")
	}
	flag.Parse()

	password := readPassword()
	if password == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *verify != "" {
		ok, err := utils.ComparePasswordAndHash(password, *verify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("mismatch")
			os.Exit(2)
		}
		fmt.Println("ok")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
