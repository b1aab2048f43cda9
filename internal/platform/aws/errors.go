package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// IsNotFound reports whether err means the referenced resource does not
// exist. The EC2 API signals this with per-resource ".NotFound" codes, the
// IAM API with "NoSuchEntity".
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return strings.HasSuffix(code, ".NotFound") ||
		code == "NoSuchEntity" ||
		code == "NatGatewayNotFound"
}

// IsDependencyViolation reports whether err means a dependent resource still
// references the one being deleted. Such deletes succeed on retry once the
// dependent is gone.
func IsDependencyViolation(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "DependencyViolation"
}

// IsDuplicate reports whether err means the mutation was already applied,
// for example authorizing an ingress rule that already exists.
func IsDuplicate(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return strings.HasSuffix(code, ".Duplicate") || code == "EntityAlreadyExists"
}
