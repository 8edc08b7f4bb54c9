// secretenc encrypts (or with -d decrypts) a value in the "ivHex:base64" format accepted in
// configuration and by the account RPCs. The key is read from DECRYPT_KEY.
//
//	DECRYPT_KEY=... go run ./cmd/secretenc 'p@ssw0rd'
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"employee-directory/backend/internal/config"
	"employee-directory/backend/internal/security"
)

func main() {
	decrypt := flag.Bool("d", false, "decrypt instead of encrypt")
	flag.Parse()

	if err := run(os.Stdout, flag.Args(), *decrypt); err != nil {
		fmt.Fprintln(os.Stderr, "secretenc:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, args []string, decrypt bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: secretenc [-d] <value>")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := security.NewCipher([]byte(cfg.DecryptKey))
	if err != nil {
		return err
	}
	value := strings.TrimSpace(args[0])
	var result string
	if decrypt {
		result, err = c.Decrypt(value)
	} else {
		result, err = c.Encrypt(value)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, result)
	return err
}
