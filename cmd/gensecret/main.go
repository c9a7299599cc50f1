package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Hex encoded, so SECRET_KEY is twice as long
const defaultSecretKeyBytesLen = 32

func main() {
	n := pflag.IntP("bytes", "n", defaultSecretKeyBytesLen, "Number of random bytes")
	pflag.Parse()

	if *n < defaultSecretKeyBytesLen/2 {
		fmt.Fprintf(os.Stderr, "secret key needs at least %d bytes\n", defaultSecretKeyBytesLen/2)
		os.Exit(1)
	}

	b := make([]byte, *n)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
