// Copyright (C) 2019 Michael J. Fromberger. All Rights Reserved.

package totp_test

import (
	"fmt"
	"log"

	"github.com/SonicAlgo/trading-core/totp"
)

func Example() {
	// 2FA setup tools usually hand the shared secret to the user as base32
	// text, often grouped for readability. Lowercase letters, spacing, and
	// "=" padding are all accepted.
	const secret = "gezd gnbv gy3t qojq gezd gnbv gy3t qojq"

	// This example uses fixed counter values so the output is consistent.
	// For a code tied to the current wall clock, call totp.Code(secret), or
	// totp.Generate to guarantee a minimum remaining validity.
	for counter := uint64(0); counter < 2; counter++ {
		code, err := totp.CodeForCounter(secret, counter)
		if err != nil {
			log.Fatalf("Generating code: %v", err)
		}
		fmt.Println(counter, code)
	}
	// Output:
	// 0 755224
	// 1 287082
}
