package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cloudshore/webvpc/internal/util/keygen"
)

// KeygenOptions configure the keygen handler.
type KeygenOptions struct {
	ConfigPath     string
	Profile        string
	PrivateKeyPath string
}

// generateKeyPair generates the SSH key material. Overridable in tests.
var generateKeyPair = keygen.GenerateED25519KeyPair

// Keygen generates an ED25519 key pair, writes the private key locally and
// registers the public key under the configured key name. An existing
// registration of the same name is reused, not replaced.
func Keygen(ctx context.Context, opts KeygenOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	keyPath := opts.PrivateKeyPath
	if keyPath == "" {
		keyPath = cfg.KeyName + ".pem"
	}
	if _, err := os.Stat(keyPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite a private key", keyPath)
	}

	kp, err := generateKeyPair(cfg.KeyName)
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.WriteFile(keyPath, kp.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	awsCfg, err := loadAWSConfig(ctx, opts.Profile, cfg.Region)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	registered, err := newInfraClient(awsCfg).ImportKeyPair(ctx, cfg.KeyName, kp.PublicKey, cfg.Tags())
	if err != nil {
		return fmt.Errorf("registering key pair: %w", err)
	}

	log.Printf("Key pair %s registered (%s)", registered.Name, registered.Fingerprint)
	fmt.Println()
	printTitle("Key pair ready")
	printField("Name:", registered.Name)
	printField("Fingerprint:", registered.Fingerprint)
	printField("Private key:", keyPath)
	return nil
}
