package config

import (
	"fmt"
	"os"
	"strconv"
)

// Chaincode captures how the chaincode process is started.
type Chaincode struct {
	// Address switches to chaincode-as-a-service when set; otherwise the
	// process dials the peer the classic way.
	Address     string
	CCID        string
	LogSpec     string
	TLSDisabled bool
	TLSKeyFile  string
	TLSCertFile string
	ClientCA    string

	tlsDisabledErr error
}

// Offchain captures the companion SQLite store.
type Offchain struct {
	DBPath string
}

// External reports whether the chaincode runs as an external service.
func (c Chaincode) External() bool { return c.Address != "" }

// Validate checks the combinations the shim would otherwise reject at start.
func (c Chaincode) Validate() error {
	if c.tlsDisabledErr != nil {
		return fmt.Errorf("invalid CHAINCODE_TLS_DISABLED: %w", c.tlsDisabledErr)
	}
	if !c.External() {
		return nil
	}
	if c.CCID == "" {
		return fmt.Errorf("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return fmt.Errorf("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required unless CHAINCODE_TLS_DISABLED=true")
	}
	return nil
}

// FromEnv builds the chaincode config from environment variables. A malformed
// CHAINCODE_TLS_DISABLED is reported by Validate.
func FromEnv() Chaincode {
	spec := os.Getenv("FABRIC_LOGGING_SPEC")
	if spec == "" {
		spec = "info"
	}
	var (
		tlsDisabled bool
		tlsErr      error
	)
	if raw := os.Getenv("CHAINCODE_TLS_DISABLED"); raw != "" {
		tlsDisabled, tlsErr = strconv.ParseBool(raw)
	}
	return Chaincode{
		Address:     os.Getenv("CHAINCODE_SERVER_ADDRESS"),
		CCID:        os.Getenv("CHAINCODE_ID"),
		LogSpec:     spec,
		TLSDisabled: tlsDisabled,
		TLSKeyFile:  os.Getenv("CHAINCODE_TLS_KEY"),
		TLSCertFile: os.Getenv("CHAINCODE_TLS_CERT"),
		ClientCA:    os.Getenv("CHAINCODE_CLIENT_CA_CERT"),

		tlsDisabledErr: tlsErr,
	}
}

// OffchainFromEnv reads OFFCHAIN_DB_PATH, defaulting to a file in the working directory.
func OffchainFromEnv() Offchain {
	path := os.Getenv("OFFCHAIN_DB_PATH")
	if path == "" {
		path = "educhain-offchain.db"
	}
	return Offchain{DBPath: path}
}
