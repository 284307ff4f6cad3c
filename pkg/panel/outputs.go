package panel

import "strings"

type exampleOutput struct {
	key    string
	output string
}

// exampleOutputs is searched in order; the first key contained in the
// command text wins.
var exampleOutputs = []exampleOutput{
	{"openssl x509 -in", `Certificate:
    Data:
        Version: 3 (0x2)
        Serial Number: 1234567890 (0x499602d2)
        Signature Algorithm: sha256WithRSAEncryption
        Issuer: C=US, ST=State, O=Org, CN=Intermediate CA
        Validity
            Not Before: Jan  1 00:00:00 2024 GMT
            Not After : Jan  1 00:00:00 2025 GMT
        Subject: C=US, ST=State, O=Org, CN=example.com`},

	{"openssl req -in", `Certificate Request:
    Data:
        Version: 1 (0x0)
        Subject: C=US, ST=State, L=City, O=Org, CN=example.com
        Subject Public Key Info:
            Public Key Algorithm: rsaEncryption
                RSA Public-Key: (2048 bit)`},

	{"openssl rsa -in", `RSA Private-Key: (2048 bit, 2 primes)
modulus:
    00:b5:8f:9d:...
publicExponent: 65537 (0x10001)
privateExponent:
    00:8c:2e:f1:...`},

	{"openssl verify", `server.crt: OK`},

	{"openssl s_client", `CONNECTED(00000003)
depth=2 C=US, O=Org, CN=Root CA
verify return:1
depth=1 C=US, O=Org, CN=Intermediate CA
verify return:1
depth=0 C=US, O=Org, CN=example.com
verify return:1
---
Certificate chain
 0 s:CN=example.com
   i:CN=Intermediate CA`},

	{"openssl genrsa", `Generating RSA private key, 2048 bit long modulus
....................+++
.......+++
e is 65537 (0x10001)`},

	{"openssl crl -in", `Certificate Revocation List (CRL):
    Version 2 (0x1)
    Signature Algorithm: sha256WithRSAEncryption
    Issuer: C=US, O=Org, CN=Intermediate CA
    Last Update: Jan  1 00:00:00 2024 GMT
    Next Update: Feb  1 00:00:00 2024 GMT
Revoked Certificates:
    Serial Number: 1234
        Revocation Date: Dec 15 00:00:00 2023 GMT`},

	{"openssl ocsp", `Response verify OK
server.crt: good
    This Update: Jan  1 00:00:00 2024 GMT`},
}

// ExampleOutput returns the illustrative output for command, if any.
func ExampleOutput(command string) (string, bool) {
	for _, e := range exampleOutputs {
		if strings.Contains(command, e.key) {
			return e.output, true
		}
	}
	return "", false
}
