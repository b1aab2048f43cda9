package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetKeyPair resolves a key pair by name. Returns nil when not found.
func (c *RealClient) GetKeyPair(ctx context.Context, name string) (*KeyPair, error) {
	out, err := c.ec2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []string{name},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describing key pair %s: %w", name, err)
	}
	if len(out.KeyPairs) == 0 {
		return nil, nil
	}
	kp := out.KeyPairs[0]
	return &KeyPair{
		Name:        aws.ToString(kp.KeyName),
		Fingerprint: aws.ToString(kp.KeyFingerprint),
	}, nil
}

// ImportKeyPair registers an OpenSSH public key under the given name.
// Reuses an existing registration of the same name.
func (c *RealClient) ImportKeyPair(ctx context.Context, name string, publicKey []byte, tags map[string]string) (*KeyPair, error) {
	existing, err := c.GetKeyPair(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	out, err := c.ec2.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           aws.String(name),
		PublicKeyMaterial: publicKey,
		TagSpecifications: tagSpecs(ec2types.ResourceTypeKeyPair, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("importing key pair %s: %w", name, err)
	}
	return &KeyPair{
		Name:        aws.ToString(out.KeyName),
		Fingerprint: aws.ToString(out.KeyFingerprint),
	}, nil
}

// DeleteKeyPair removes the key pair registration. Succeeds when it is
// already gone.
func (c *RealClient) DeleteKeyPair(ctx context.Context, name string) error {
	_, err := c.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting key pair %s: %w", name, err)
	}
	return nil
}
