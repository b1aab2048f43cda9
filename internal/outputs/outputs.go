// Package outputs holds the values a finished apply hands back to the
// caller.
package outputs

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is where apply writes the outputs document.
const DefaultFile = "webvpc-outputs.yaml"

// Outputs are the externally useful results of one stack.
type Outputs struct {
	Stack             string    `yaml:"stack"`
	Region            string    `yaml:"region"`
	PublicInstanceID  string    `yaml:"public_instance_id"`
	PrivateInstanceID string    `yaml:"private_instance_id"`
	PublicURL         string    `yaml:"public_url"`
	GeneratedAt       time.Time `yaml:"generated_at"`
}

// New builds the outputs document. publicIP is the address assigned to the
// public instance; the URL is plain HTTP since the stack only opens port 80.
func New(stackName, region, publicID, privateID, publicIP string) *Outputs {
	return &Outputs{
		Stack:             stackName,
		Region:            region,
		PublicInstanceID:  publicID,
		PrivateInstanceID: privateID,
		PublicURL:         "http://" + publicIP,
		GeneratedAt:       time.Now().UTC(),
	}
}

// Marshal renders the document as YAML.
func (o *Outputs) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshaling outputs: %w", err)
	}
	return data, nil
}

// WriteFile writes the document to path with owner-only permissions.
func (o *Outputs) WriteFile(path string) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing outputs file: %w", err)
	}
	return nil
}

// Load parses an outputs document.
func Load(data []byte) (*Outputs, error) {
	var o Outputs
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing outputs: %w", err)
	}
	return &o, nil
}

// LoadFile reads and parses an outputs document from path.
func LoadFile(path string) (*Outputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading outputs file: %w", err)
	}
	return Load(data)
}
