package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"lottery-ledger.backend/pkg/crypto"
)

var (
	printfFn  = fmt.Printf
	fatalfFn  = log.Fatalf
	getenvFn  = os.Getenv
	readStdin = func() ([]byte, error) { return io.ReadAll(os.Stdin) }
)

// resolveInput returns the signing secret and the payload source. The secret
// comes from the first argument or NOWPAYMENTS_IPN_SECRET; the payload is read
// from the second argument's file, or stdin when it is absent or "-".
func resolveInput(args []string) (secret, source string) {
	secret = getenvFn("NOWPAYMENTS_IPN_SECRET")
	source = "-"
	if len(args) > 0 && args[0] != "" {
		secret = args[0]
	}
	if len(args) > 1 {
		source = args[1]
	}
	return secret, source
}

func readPayload(source string) ([]byte, error) {
	if source == "-" {
		return readStdin()
	}
	return os.ReadFile(source)
}

func sign(raw []byte, secret string) (canonical []byte, signature string, err error) {
	canonical, err = crypto.CanonicalJSON(raw)
	if err != nil {
		return nil, "", err
	}
	signature, err = crypto.SignPayload(raw, secret)
	if err != nil {
		return nil, "", err
	}
	return canonical, signature, nil
}

func main() {
	secret, source := resolveInput(os.Args[1:])

	raw, err := readPayload(source)
	if err != nil {
		fatalfFn("Failed to read payload: %v", err)
		return
	}

	canonical, signature, err := sign(raw, secret)
	if err != nil {
		fatalfFn("Failed to sign payload: %v", err)
		return
	}

	printfFn("Canonical payload: %s\n", canonical)
	printfFn("%s: %s\n", crypto.SignatureHeader, signature)
}
