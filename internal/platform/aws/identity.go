package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// trustPolicy renders the assume-role document for a service principal.
func trustPolicy(principal string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Effect":    "Allow",
			"Principal": map[string]string{"Service": principal},
			"Action":    "sts:AssumeRole",
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("rendering trust policy: %w", err)
	}
	return string(raw), nil
}

func iamTags(name string, tags map[string]string) []iamtypes.Tag {
	out := make([]iamtypes.Tag, 0, len(tags)+1)
	out = append(out, iamtypes.Tag{Key: aws.String("Name"), Value: aws.String(name)})
	for k, v := range tags {
		out = append(out, iamtypes.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out
}

// EnsureRole ensures the role exists and trusts the given service principal.
func (c *RealClient) EnsureRole(ctx context.Context, name, trustPrincipal string, tags map[string]string) (*Role, error) {
	got, err := c.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err == nil {
		return &Role{Name: name, ARN: aws.ToString(got.Role.Arn)}, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("getting role %s: %w", name, err)
	}

	policy, err := trustPolicy(trustPrincipal)
	if err != nil {
		return nil, err
	}
	out, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(policy),
		Tags:                     iamTags(name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating role %s: %w", name, err)
	}
	return &Role{Name: name, ARN: aws.ToString(out.Role.Arn)}, nil
}

// AttachRolePolicy attaches the managed policy to the role. Attaching an
// already attached policy is a no-op on the API side.
func (c *RealClient) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return fmt.Errorf("attaching policy %s to role %s: %w", policyARN, roleName, err)
	}
	return nil
}

// EnsureInstanceProfile ensures the profile exists and wraps the role.
func (c *RealClient) EnsureInstanceProfile(ctx context.Context, name, roleName string, tags map[string]string) (*InstanceProfile, error) {
	got, err := c.iam.GetInstanceProfile(ctx, &iam.GetInstanceProfileInput{
		InstanceProfileName: aws.String(name),
	})
	if err == nil {
		for _, role := range got.InstanceProfile.Roles {
			if aws.ToString(role.RoleName) == roleName {
				return &InstanceProfile{Name: name, ARN: aws.ToString(got.InstanceProfile.Arn)}, nil
			}
		}
		if err := c.addRoleToProfile(ctx, name, roleName); err != nil {
			return nil, err
		}
		return &InstanceProfile{Name: name, ARN: aws.ToString(got.InstanceProfile.Arn)}, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("getting instance profile %s: %w", name, err)
	}

	out, err := c.iam.CreateInstanceProfile(ctx, &iam.CreateInstanceProfileInput{
		InstanceProfileName: aws.String(name),
		Tags:                iamTags(name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating instance profile %s: %w", name, err)
	}
	if err := c.addRoleToProfile(ctx, name, roleName); err != nil {
		return nil, err
	}
	return &InstanceProfile{Name: name, ARN: aws.ToString(out.InstanceProfile.Arn)}, nil
}

func (c *RealClient) addRoleToProfile(ctx context.Context, name, roleName string) error {
	_, err := c.iam.AddRoleToInstanceProfile(ctx, &iam.AddRoleToInstanceProfileInput{
		InstanceProfileName: aws.String(name),
		RoleName:            aws.String(roleName),
	})
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("adding role %s to instance profile %s: %w", roleName, name, err)
	}
	return nil
}

// DeleteInstanceProfile removes the role from the profile first, then
// deletes the profile. Succeeds when it is already gone.
func (c *RealClient) DeleteInstanceProfile(ctx context.Context, name, roleName string) error {
	_, err := c.iam.RemoveRoleFromInstanceProfile(ctx, &iam.RemoveRoleFromInstanceProfileInput{
		InstanceProfileName: aws.String(name),
		RoleName:            aws.String(roleName),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("removing role %s from instance profile %s: %w", roleName, name, err)
	}

	_, err = c.iam.DeleteInstanceProfile(ctx, &iam.DeleteInstanceProfileInput{
		InstanceProfileName: aws.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting instance profile %s: %w", name, err)
	}
	return nil
}

// DeleteRole detaches the given managed policies, then deletes the role.
// Succeeds when it is already gone.
func (c *RealClient) DeleteRole(ctx context.Context, name string, policyARNs []string) error {
	for _, arn := range policyARNs {
		_, err := c.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
			RoleName:  aws.String(name),
			PolicyArn: aws.String(arn),
		})
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("detaching policy %s from role %s: %w", arn, name, err)
		}
	}

	_, err := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(name)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting role %s: %w", name, err)
	}
	return nil
}
