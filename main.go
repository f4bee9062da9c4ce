package main

import (
	"os"

	"educhain/config"
	"educhain/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("educhain")

func main() {
	cfg := config.FromEnv()
	flogging.ActivateSpec(cfg.LogSpec)
	if err := cfg.Validate(); err != nil {
		panic("Invalid chaincode configuration: " + err.Error())
	}

	cc, err := contractapi.NewChaincode(contract.New()...)
	if err != nil {
		panic("Error creating educhain chaincode: " + err.Error())
	}
	cc.Info.Title = "educhain"
	cc.Info.Version = "1.0.0"

	if !cfg.External() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tls, err := tlsProperties(cfg)
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.Address,
		CC:       cc,
		TLSProps: tls,
	}
	logger.Infof("Starting educhain as a service on %s", cfg.Address)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}

func tlsProperties(cfg config.Chaincode) (shim.TLSProperties, error) {
	if cfg.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}
	key, err := os.ReadFile(cfg.TLSKeyFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	cert, err := os.ReadFile(cfg.TLSCertFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	props := shim.TLSProperties{Key: key, Cert: cert}
	if cfg.ClientCA != "" {
		if props.ClientCACerts, err = os.ReadFile(cfg.ClientCA); err != nil {
			return shim.TLSProperties{}, err
		}
	}
	return props, nil
}
